// Package memory provides an in-memory implementation of storage.Store,
// used for tests and for running the server without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store keeps users and expenses in maps guarded by a single RWMutex.
// Records are copied on the way in and out so callers never share state
// with the store.
type Store struct {
	mu       sync.RWMutex
	users    map[string]models.User
	expenses map[string]*models.Expense
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[string]models.User),
		expenses: make(map[string]*models.Expense),
	}
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &user, nil
}

func (s *Store) PutUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = *user
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].Name < users[j].Name
	})
	return users, nil
}

func (s *Store) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expense, ok := s.expenses[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return expense.Clone(), nil
}

func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expenses[expense.ID] = expense.Clone()
	return nil
}

func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.expenses[expense.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if current.Version != expectedVersion {
		return storage.ErrVersionConflict
	}
	s.expenses[expense.ID] = expense.Clone()
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.expenses[id]
	delete(s.expenses, id)
	return ok, nil
}

func (s *Store) ListExpenses(ctx context.Context) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expenses := make([]*models.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		expenses = append(expenses, e.Clone())
	}
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].Date.After(expenses[j].Date)
		}
		return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
	})
	return expenses, nil
}
