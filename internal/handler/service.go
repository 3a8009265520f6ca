package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "salon.v1.SalonService"

func Method(name string) string { return "/" + ServiceName + "/" + name }

// SalonServer is the server side of salon.v1.SalonService. Every method takes
// and returns a google.protobuf.Struct carrying the JSON body.
type SalonServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Catalog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApprovedTestimonials(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BookAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Dashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitTestimonial(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Profile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdminListAppointments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdminSetAppointmentStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdminPendingTestimonials(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdminApproveTestimonial(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdminTopClients(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Subscribe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdminListSubscribers(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var _ SalonServer = (*Handler)(nil)

type unaryCall func(SalonServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SalonServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Method(name)}
			next := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SalonServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, next)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SalonServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", SalonServer.Register),
		unary("Login", SalonServer.Login),
		unary("Logout", SalonServer.Logout),
		unary("Catalog", SalonServer.Catalog),
		unary("ApprovedTestimonials", SalonServer.ApprovedTestimonials),
		unary("BookAppointment", SalonServer.BookAppointment),
		unary("Dashboard", SalonServer.Dashboard),
		unary("ListHistory", SalonServer.ListHistory),
		unary("CancelAppointment", SalonServer.CancelAppointment),
		unary("SubmitTestimonial", SalonServer.SubmitTestimonial),
		unary("Profile", SalonServer.Profile),
		unary("UpdateProfile", SalonServer.UpdateProfile),
		unary("AdminListAppointments", SalonServer.AdminListAppointments),
		unary("AdminSetAppointmentStatus", SalonServer.AdminSetAppointmentStatus),
		unary("AdminPendingTestimonials", SalonServer.AdminPendingTestimonials),
		unary("AdminApproveTestimonial", SalonServer.AdminApproveTestimonial),
		unary("AdminTopClients", SalonServer.AdminTopClients),
		unary("Subscribe", SalonServer.Subscribe),
		unary("AdminListSubscribers", SalonServer.AdminListSubscribers),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "salon/v1/salon.proto",
}

// Client is a thin caller for SalonService, used by tests and tools.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Method(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
