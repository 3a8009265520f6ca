package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"
)

func (h *Handler) Subscribe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	added, err := h.svc.Subscribe(ctx, in.Email)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"subscribed": true, "new": added})
}

func (h *Handler) AdminListSubscribers(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return encode(map[string]any{"subscribers": h.svc.Subscribers()})
}
