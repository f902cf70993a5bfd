package service

import "context"

type claimsKey struct{}

type operatorKey struct{}

const (
	actorOperator  = "operator"
	actorAnonymous = "anonymous"
)

// WithUser stores the authenticated caller in ctx.
func WithUser(ctx context.Context, u *UserClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, u)
}

// UserFromContext retrieves the authenticated caller (if any).
func UserFromContext(ctx context.Context) (*UserClaims, bool) {
	u, ok := ctx.Value(claimsKey{}).(*UserClaims)
	return u, ok && u != nil
}

// WithOperator marks ctx as acting on behalf of the server operator
// (CLI or bootstrap secret) rather than a token holder.
func WithOperator(ctx context.Context) context.Context {
	return context.WithValue(ctx, operatorKey{}, true)
}

// actorFrom names the caller for the audit log.
func actorFrom(ctx context.Context) string {
	if u, ok := UserFromContext(ctx); ok {
		return u.Username
	}
	if op, _ := ctx.Value(operatorKey{}).(bool); op {
		return actorOperator
	}
	return actorAnonymous
}
