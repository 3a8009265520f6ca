package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"salon-api/internal/auth"
	"salon-api/internal/middleware"
	"salon-api/internal/salon"
	"salon-api/internal/session"
	"salon-api/internal/store"
)

type Handler struct {
	svc      *salon.Service
	sessions *session.Manager
}

func New(svc *salon.Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// Rules is the auth policy for SalonService.
func Rules() middleware.Rules {
	return middleware.Rules{
		Open: map[string]bool{
			Method("Register"):             true,
			Method("Login"):                true,
			Method("Catalog"):              true,
			Method("ApprovedTestimonials"): true,
			Method("Subscribe"):            true,
		},
		Optional: map[string]bool{
			Method("BookAppointment"): true,
		},
		Admin: func(full string) bool {
			return strings.HasPrefix(full, "/"+ServiceName+"/Admin")
		},
	}
}

// RateLimited lists the methods that go through the per-IP limiter.
func RateLimited() []string {
	return []string{Method("Register"), Method("Login"), Method("Subscribe")}
}

func identity(ctx context.Context) (middleware.Identity, error) {
	id, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return middleware.Identity{}, status.Error(codes.Unauthenticated, "not signed in")
	}
	return id, nil
}

func uid(ctx context.Context) string {
	id, _ := middleware.IdentityFrom(ctx)
	return id.User.ID
}

// decode copies a Struct request into a typed input through its JSON form.
func decode(req *structpb.Struct, dst any) error {
	if req == nil {
		return nil
	}
	b, err := protojson.Marshal(req)
	if err != nil {
		return status.Error(codes.InvalidArgument, "bad request")
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	return nil
}

// encode turns a JSON-object-shaped value into a Struct response.
func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// toStatus maps domain errors onto gRPC codes. Unknown errors are logged and
// hidden behind Internal.
func toStatus(err error) error {
	switch {
	case errors.Is(err, salon.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, salon.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, "email already registered")
	case errors.Is(err, session.ErrLockedOut):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, session.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, auth.ErrBadToken), errors.Is(err, session.ErrSessionClosed):
		return status.Error(codes.Unauthenticated, "bad token")
	case errors.Is(err, salon.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	log.Printf("internal error: %v", err)
	return status.Error(codes.Internal, "internal error")
}

func Register(s *grpc.Server, h *Handler) {
	s.RegisterService(&serviceDesc, h)
}
