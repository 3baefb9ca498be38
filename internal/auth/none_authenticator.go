package auth

import (
	"net/http"

	"github.com/google/uuid"
)

// NoneAuthenticator injects a fixed local user. Development and tests only.
type NoneAuthenticator struct{}

func NewNoneAuthenticator() (*NoneAuthenticator, error) {
	return &NoneAuthenticator{}, nil
}

func (n *NoneAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := User{
			ID:       uuid.MustParse("00000000-0000-0000-0000-000000000001"),
			Username: "admin",
			Email:    "admin@localhost",
		}

		ctx := NewUserContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
