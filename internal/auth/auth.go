package auth

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/config"
)

type Authenticator interface {
	Authenticator(next http.Handler) http.Handler
}

const (
	JwtAuthentication  string = "jwt"
	NoneAuthentication string = "none"
)

func NewAuthenticator(authConfig config.Auth) (Authenticator, error) {
	zap.S().Named("auth").Infof("authentication: '%s'", authConfig.AuthenticationType)

	switch authConfig.AuthenticationType {
	case JwtAuthentication:
		return NewJwtAuthenticator(authConfig.JwtSecret)
	default:
		return NewNoneAuthenticator()
	}
}
