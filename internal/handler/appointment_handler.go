package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"salon-api/internal/dashboard"
	"salon-api/internal/model"
	"salon-api/internal/salon"
	"salon-api/internal/store"
)

type idRequest struct {
	ID string `json:"id"`
}

func (r idRequest) check() error {
	if r.ID == "" {
		return status.Error(codes.InvalidArgument, "id required")
	}
	return nil
}

func (h *Handler) Catalog(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return encode(h.svc.Catalog())
}

// BookAppointment serves both signed-in clients and guests.
func (h *Handler) BookAppointment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in salon.BookInput
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	a, err := h.svc.Book(ctx, uid(ctx), in)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"appointment": a})
}

func (h *Handler) Dashboard(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	sum, err := h.svc.Dashboard(ctx, uid(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(sum)
}

func (h *Handler) ListHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Filter dashboard.HistoryFilter `json:"filter"`
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(map[string]any{"appointments": h.svc.History(uid(ctx), in.Filter)})
}

func (h *Handler) CancelAppointment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := in.check(); err != nil {
		return nil, err
	}
	a, err := h.svc.CancelAppointment(ctx, uid(ctx), in.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"appointment": a})
}

func (h *Handler) AdminListAppointments(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return encode(map[string]any{"appointments": h.svc.AllAppointments()})
}

func (h *Handler) AdminSetAppointmentStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		ID     string       `json:"id"`
		Status model.Status `json:"status"`
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := (idRequest{ID: in.ID}).check(); err != nil {
		return nil, err
	}
	a, err := h.svc.SetAppointmentStatus(ctx, in.ID, in.Status)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"appointment": a})
}

func (h *Handler) AdminTopClients(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Limit *int `json:"limit"`
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	limit := store.DefaultTopClients
	if in.Limit != nil {
		limit = *in.Limit
	}
	return encode(map[string]any{"clients": h.svc.TopClients(limit)})
}
