package store

import (
	"context"
	"math/rand"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type contextKey int

const (
	transactionKey contextKey = iota
)

type Tx struct {
	txID int64
	tx   *gorm.DB
}

func newTransaction(db *gorm.DB) (*Tx, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &Tx{txID: rand.Int63(), tx: tx}, nil
}

func newTransactionContext(ctx context.Context, db *gorm.DB) (context.Context, error) {
	if _, found := ctx.Value(transactionKey).(*Tx); found {
		return ctx, nil
	}
	tx, err := newTransaction(db)
	if err != nil {
		return ctx, err
	}
	return context.WithValue(ctx, transactionKey, tx), nil
}

// Commit commits the transaction carried by ctx, if any.
func Commit(ctx context.Context) (context.Context, error) {
	tx, ok := ctx.Value(transactionKey).(*Tx)
	if !ok {
		return ctx, nil
	}
	newCtx := context.WithValue(ctx, transactionKey, nil)
	return newCtx, tx.Commit()
}

// Rollback rolls back the transaction carried by ctx, if any.
func Rollback(ctx context.Context) (context.Context, error) {
	tx, ok := ctx.Value(transactionKey).(*Tx)
	if !ok {
		return ctx, nil
	}
	newCtx := context.WithValue(ctx, transactionKey, nil)
	return newCtx, tx.Rollback()
}

// FromContext returns the gorm handle of the transaction carried by ctx, or
// nil when ctx carries none.
func FromContext(ctx context.Context) *gorm.DB {
	if tx, found := ctx.Value(transactionKey).(*Tx); found && tx != nil {
		return tx.tx
	}
	return nil
}

func (t *Tx) Commit() error {
	if err := t.tx.Commit().Error; err != nil {
		zap.S().Named("store").Errorw("failed to commit transaction", "tx_id", t.txID, "error", err)
		return err
	}
	return nil
}

func (t *Tx) Rollback() error {
	if err := t.tx.Rollback().Error; err != nil {
		zap.S().Named("store").Errorw("failed to rollback transaction", "tx_id", t.txID, "error", err)
		return err
	}
	return nil
}
