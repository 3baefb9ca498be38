package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JwtAuthenticator verifies bearer tokens signed with the service's HMAC
// secret and rejects anything else with a 401. Signup and login live outside
// the authenticated router group and never pass through it.
type JwtAuthenticator struct {
	secret []byte
}

func NewJwtAuthenticator(secret string) (*JwtAuthenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt authentication requires a non-empty secret")
	}
	return &JwtAuthenticator{secret: []byte(secret)}, nil
}

func (a *JwtAuthenticator) Authenticate(token string) (User, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	t, err := parser.Parse(token, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return User{}, fmt.Errorf("failed to authenticate token: %w", err)
	}

	if !t.Valid {
		return User{}, errors.New("failed to parse or validate token")
	}

	return a.parseToken(t)
}

func (a *JwtAuthenticator) parseToken(userToken *jwt.Token) (User, error) {
	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		return User{}, errors.New("failed to parse jwt token claims")
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return User{}, fmt.Errorf("token subject is not a user id: %w", err)
	}

	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)

	return User{ID: id, Username: username, Email: email}, nil
}

func (a *JwtAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accessToken := r.Header.Get("Authorization")
		if !strings.HasPrefix(accessToken, "Bearer ") {
			http.Error(w, "No token provided", http.StatusUnauthorized)
			return
		}

		accessToken = strings.TrimPrefix(accessToken, "Bearer ")
		user, err := a.Authenticate(accessToken)
		if err != nil {
			zap.S().Named("auth").Debugw("authentication failed", "error", err)
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}

		ctx := NewUserContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
