package service

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrValidation covers malformed input rejected before any side effect.
type ErrValidation struct {
	error
}

func NewErrInvalidVideoFile(message string) *ErrValidation {
	return &ErrValidation{fmt.Errorf("invalid video file: %s", message)}
}

func NewErrInvalidYouTubeURL(url string) *ErrValidation {
	return &ErrValidation{fmt.Errorf("invalid youtube url: %s", url)}
}

func NewErrValidation(message string) *ErrValidation {
	return &ErrValidation{fmt.Errorf("validation failed: %s", message)}
}

// ErrResourceNotFound also covers resources owned by someone else: a foreign
// job is indistinguishable from an absent one.
type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uuid.UUID, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrJobNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "job")
}

// ErrStorageUnavailable aborts a submission before a Job record exists.
type ErrStorageUnavailable struct {
	error
}

func NewErrStorageUnavailable(err error) *ErrStorageUnavailable {
	return &ErrStorageUnavailable{fmt.Errorf("failed to store video asset: %w", err)}
}

// ErrMetadataUnavailable aborts a YouTube submission when both the primary
// lookup and the degraded fallback failed.
type ErrMetadataUnavailable struct {
	error
}

func NewErrMetadataUnavailable(err error) *ErrMetadataUnavailable {
	return &ErrMetadataUnavailable{fmt.Errorf("failed to resolve video metadata: %w", err)}
}

// ErrDuplicateUser reports a signup collision and names the colliding field.
type ErrDuplicateUser struct {
	error
	Field string
}

func NewErrDuplicateUser(field string) *ErrDuplicateUser {
	return &ErrDuplicateUser{
		error: fmt.Errorf("user already exists: %s already taken", field),
		Field: field,
	}
}

// ErrInvalidCredentials covers both an unknown email and a bad password, so
// login failures do not reveal which one it was.
type ErrInvalidCredentials struct {
	error
}

func NewErrInvalidCredentials() *ErrInvalidCredentials {
	return &ErrInvalidCredentials{fmt.Errorf("invalid credentials")}
}
