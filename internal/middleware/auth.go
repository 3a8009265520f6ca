package middleware

import (
	"context"
	"errors"
	"strings"

	"salon-api/internal/auth"
	"salon-api/internal/model"
	"salon-api/internal/session"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity is the signed-in caller attached to the request context.
type Identity struct {
	Claims *auth.Claims
	User   model.User
	Token  string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

type Validator interface {
	Validate(ctx context.Context, raw string) (*auth.Claims, model.User, error)
}

// Rules say which full method names skip auth, which accept anonymous
// callers, and which need the admin role.
type Rules struct {
	Open     map[string]bool
	Optional map[string]bool
	Admin    func(fullMethod string) bool
}

func BearerToken(header string) string {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(raw)
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	// token from Authorization: Bearer <jwt>
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	return BearerToken(vals[0])
}

func Auth(v Validator, rules Rules) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if rules.Open[info.FullMethod] {
			return next(ctx, req)
		}

		raw := tokenFromMetadata(ctx)
		if raw == "" {
			if rules.Optional[info.FullMethod] {
				return next(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "no token")
		}

		claims, u, err := v.Validate(ctx, raw)
		switch {
		case errors.Is(err, session.ErrSessionClosed):
			return nil, status.Error(codes.Unauthenticated, "session closed")
		case err != nil:
			return nil, status.Error(codes.Unauthenticated, "bad token")
		}

		if rules.Admin != nil && rules.Admin(info.FullMethod) && !claims.IsAdmin() {
			return nil, status.Error(codes.PermissionDenied, "admin only")
		}

		ctx = WithIdentity(ctx, Identity{Claims: claims, User: u, Token: raw})
		return next(ctx, req)
	}
}
