package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clipforge/clipforge/internal/auth"
	"github.com/clipforge/clipforge/internal/store"
	"github.com/clipforge/clipforge/internal/store/model"
)

type UserService struct {
	store  store.Store
	issuer *auth.TokenIssuer
}

func NewUserService(s store.Store, issuer *auth.TokenIssuer) *UserService {
	return &UserService{store: s, issuer: issuer}
}

// Signup creates an account and returns the user together with a signed
// bearer token. A colliding email or username is reported with the field
// that collided.
func (s *UserService) Signup(ctx context.Context, username, email, password string) (*model.User, string, error) {
	if existing, err := s.store.User().GetByEmailOrUsername(ctx, email, username); err == nil {
		field := "username"
		if existing.Email == email {
			field = "email"
		}
		return nil, "", NewErrDuplicateUser(field)
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user, err := s.store.User().Create(ctx, model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			// Raced with a concurrent signup; the unique index decided.
			return nil, "", NewErrDuplicateUser("email")
		}
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the credentials and returns the user with a fresh token.
// Unknown email and wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.store.User().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, "", NewErrInvalidCredentials()
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", NewErrInvalidCredentials()
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Me resolves the authenticated caller's profile.
func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.store.User().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrResourceNotFound(userID, "user")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) issueToken(user *model.User) (string, error) {
	return s.issuer.Issue(auth.User{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}
