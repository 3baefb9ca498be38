package v1

import (
	"net/http"

	"go.uber.org/zap"

	api "github.com/clipforge/clipforge/api/v1"
	"github.com/clipforge/clipforge/internal/auth"
	"github.com/clipforge/clipforge/internal/service"
)

// Signup handles POST /auth/signup.
func (h *ServiceHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req api.SignupRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	user, token, err := h.userSrv.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch err.(type) {
		case *service.ErrDuplicateUser:
			respondError(w, r, http.StatusBadRequest, "User already exists", err.Error())
		default:
			zap.S().Named("auth_handler").Errorw("signup failed", "error", err)
			respondError(w, r, http.StatusInternalServerError, "Error", "failed to create user")
		}
		return
	}

	respond(w, r, http.StatusCreated, "User created successfully", api.AuthData{
		User:  userToApi(user),
		Token: token,
	})
}

// Login handles POST /auth/login.
func (h *ServiceHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	user, token, err := h.userSrv.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch err.(type) {
		case *service.ErrInvalidCredentials:
			respondError(w, r, http.StatusUnauthorized, "Invalid credentials", err.Error())
		default:
			zap.S().Named("auth_handler").Errorw("login failed", "error", err)
			respondError(w, r, http.StatusInternalServerError, "Error", "failed to log in")
		}
		return
	}

	respond(w, r, http.StatusOK, "Login successful", api.AuthData{
		User:  userToApi(user),
		Token: token,
	})
}

// Me handles GET /auth/me.
func (h *ServiceHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustHaveUser(r.Context())

	user, err := h.userSrv.Me(r.Context(), caller.ID)
	if err != nil {
		switch err.(type) {
		case *service.ErrResourceNotFound:
			// The token outlived the account.
			respondError(w, r, http.StatusUnauthorized, "Unauthorized access", "unknown user")
		default:
			zap.S().Named("auth_handler").Errorw("me lookup failed", "error", err)
			respondError(w, r, http.StatusInternalServerError, "Error", "failed to load profile")
		}
		return
	}

	respond(w, r, http.StatusOK, "Success", api.UserData{User: userToApi(user)})
}
