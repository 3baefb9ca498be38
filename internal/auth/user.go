package auth

import (
	"context"

	"github.com/google/uuid"
)

type userKeyType struct{}

var userKey userKeyType

// User is the authenticated caller injected into the request context by the
// Authenticator middleware.
type User struct {
	ID       uuid.UUID
	Username string
	Email    string
}

func NewUserContext(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) (User, bool) {
	val := ctx.Value(userKey)
	if val == nil {
		return User{}, false
	}
	return val.(User), true
}

// MustHaveUser returns the caller or panics. Only used behind the
// authentication middleware, where a missing user means broken wiring.
func MustHaveUser(ctx context.Context) User {
	u, ok := UserFromContext(ctx)
	if !ok {
		panic("no user found in context")
	}
	return u
}
