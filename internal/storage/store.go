// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned by UpdateExpense when the stored
	// version no longer matches the version the caller read.
	ErrVersionConflict = errors.New("version conflict")
)

// UserRepository stores the user directory.
// The primary account holder is never stored here.
type UserRepository interface {
	// GetUser retrieves a user by ID. Returns ErrNotFound if absent.
	GetUser(ctx context.Context, id string) (*models.User, error)

	// PutUser inserts or replaces a user.
	PutUser(ctx context.Context, user *models.User) error

	// DeleteUser removes a user. Deleting a missing user is not an error.
	DeleteUser(ctx context.Context, id string) error

	// ListUsers returns every user ordered by CreatedAt, then Name.
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// ExpenseRepository stores expense records together with their participants.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, memory)
// without changing the ledger.
type ExpenseRepository interface {
	// GetExpense retrieves an expense by ID. Returns ErrNotFound if absent.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)

	// CreateExpense persists a new expense with all of its participants.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// UpdateExpense overwrites the settlement state of an existing expense.
	// The write only succeeds if the stored version equals expectedVersion;
	// otherwise ErrVersionConflict is returned. Returns ErrNotFound if the
	// expense is gone.
	UpdateExpense(ctx context.Context, expense *models.Expense, expectedVersion int64) error

	// DeleteExpense removes an expense and reports whether it existed.
	DeleteExpense(ctx context.Context, id string) (bool, error)

	// ListExpenses returns every expense ordered by Date descending, then
	// CreatedAt descending.
	ListExpenses(ctx context.Context) ([]*models.Expense, error)
}

// Store bundles both repositories behind a single backend.
type Store interface {
	UserRepository
	ExpenseRepository

	// Close releases any resources held by the store.
	Close() error
}
