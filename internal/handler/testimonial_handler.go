package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"salon-api/internal/salon"
)

func (h *Handler) ApprovedTestimonials(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return encode(map[string]any{"testimonials": h.svc.ApprovedTestimonials()})
}

func (h *Handler) SubmitTestimonial(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in salon.TestimonialInput
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	t, err := h.svc.SubmitTestimonial(ctx, uid(ctx), in)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"testimonial": t})
}

func (h *Handler) AdminPendingTestimonials(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return encode(map[string]any{"testimonials": h.svc.PendingTestimonials()})
}

func (h *Handler) AdminApproveTestimonial(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := in.check(); err != nil {
		return nil, err
	}
	t, err := h.svc.ApproveTestimonial(ctx, in.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"testimonial": t})
}
