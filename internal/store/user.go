package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clipforge/clipforge/internal/store/model"
)

type User interface {
	Create(ctx context.Context, user model.User) (*model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error)
}

type UserStore struct {
	db *gorm.DB
}

// Make sure we conform to User interface
var _ User = (*UserStore)(nil)

func NewUserStore(db *gorm.DB) User {
	return &UserStore{db: db}
}

func (u *UserStore) Create(ctx context.Context, user model.User) (*model.User, error) {
	if user.ID == (uuid.UUID{}) {
		user.ID = uuid.New()
	}
	result := u.getDB(ctx).Clauses(clause.Returning{}).Create(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &user, nil
}

func (u *UserStore) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	result := u.getDB(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	result := u.getDB(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// GetByEmailOrUsername is used by signup to detect duplicates before insert,
// so the API can tell the caller which of the two fields collided.
func (u *UserStore) GetByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error) {
	var user model.User
	result := u.getDB(ctx).First(&user, "email = ? OR username = ?", email, username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (u *UserStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return u.db
}
