package handler

import (
	"context"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"salon-api/internal/salon"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates the account and signs it in.
func (h *Handler) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in salon.RegisterInput
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	u, err := h.svc.Register(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}

	tok, err := h.sessions.Open(ctx, u)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"user": u, "token": tok})
}

func (h *Handler) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in loginRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if in.Email == "" || in.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password required")
	}

	tok, u, err := h.sessions.Login(ctx, in.Email, in.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"user": u, "token": tok})
}

func (h *Handler) Logout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.sessions.Logout(ctx, id.Token); err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{})
}

func (h *Handler) Profile(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	u, err := h.svc.Profile(uid(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"user": u})
}

func (h *Handler) UpdateProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	var in salon.ProfileInput
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	u, err := h.svc.UpdateProfile(ctx, id.User.ID, in)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := h.sessions.Refresh(ctx, id.Claims, u); err != nil {
		log.Printf("refresh session %s: %v", id.Claims.SessionID(), err)
	}
	return encode(map[string]any{"user": u})
}
