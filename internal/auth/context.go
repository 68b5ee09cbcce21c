package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

type contextKey struct{}

type UserContext struct {
	MerchantID string
	BranchID   string
	UserID     string
	Role       string
}

func WithUser(ctx context.Context, u UserContext) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the caller put there by the middleware, falling back
// to incoming gRPC metadata.
func FromContext(ctx context.Context) UserContext {
	if u, ok := ctx.Value(contextKey{}).(UserContext); ok {
		return u
	}
	var u UserContext
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		u.MerchantID = first(md.Get("x-merchant-id"))
		u.BranchID = first(md.Get("x-branch-id"))
		u.UserID = first(md.Get("x-user-id"))
	}
	return u
}

func first(vals []string) string {
	if len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func GetMerchantID(ctx context.Context) string { return FromContext(ctx).MerchantID }

func GetBranchID(ctx context.Context) string { return FromContext(ctx).BranchID }

func GetUserID(ctx context.Context) string { return FromContext(ctx).UserID }
