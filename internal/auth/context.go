package auth

import "context"

type ctxKey string

// ContextUserKey carries the authenticated principal through the request
// context.
const ContextUserKey ctxKey = "sessionUser"

func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, user)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	user, ok := ctx.Value(ContextUserKey).(*User)
	return user, ok && user != nil
}
