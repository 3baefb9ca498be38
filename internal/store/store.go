package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/store/model"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Job() Job
	User() User
	InitialMigration() error
	Close() error
}

type DataStore struct {
	db   *gorm.DB
	job  Job
	user User
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:   db,
		job:  NewJobStore(db),
		user: NewUserStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Job() Job {
	return s.job
}

func (s *DataStore) User() User {
	return s.user
}

// InitialMigration creates the schema via gorm's automigration. Production
// deployments run the goose migrations instead; this path serves local
// sqlite runs and the test suites.
func (s *DataStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.User{}, &model.Job{})
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
