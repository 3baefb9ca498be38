package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"primaryKey;"`
	Username     string    `gorm:"not null;uniqueIndex:users_username_idx;type:VARCHAR(64)"`
	Email        string    `gorm:"not null;uniqueIndex:users_email_idx;type:VARCHAR(255)"`
	PasswordHash string    `gorm:"not null;type:VARCHAR(255)"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (u User) String() string {
	// Never leak the password hash through logging.
	val, _ := json.Marshal(struct {
		ID       uuid.UUID `json:"id"`
		Username string    `json:"username"`
		Email    string    `json:"email"`
	}{u.ID, u.Username, u.Email})
	return string(val)
}
