package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// SettleParticipantShare marks userID's share of an expense as paid and
// returns the updated expense. Settling an already settled share returns
// the expense unchanged without writing.
//
// The write is conditional on the version that was read. If another writer
// got in between, ErrConcurrentModification is returned and nothing is
// changed; callers may retry.
func (l *Ledger) SettleParticipantShare(ctx context.Context, expenseID, userID string) (*models.Expense, error) {
	unlock := l.locks.lock(expenseID)
	defer unlock()

	expense, err := l.getExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	p, _ := expense.Participant(userID)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrParticipantNotFound, userID)
	}
	if p.IsSettled {
		return expense, nil
	}

	readVersion := expense.Version
	p.IsSettled = true
	expense.RecomputeSettled()
	expense.Version = readVersion + 1
	expense.UpdatedAt = l.now()

	err = l.expenses.UpdateExpense(ctx, expense, readVersion)
	switch {
	case errors.Is(err, storage.ErrVersionConflict):
		return nil, fmt.Errorf("%w: %s", ErrConcurrentModification, expenseID)
	case errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("%w: %s", ErrExpenseNotFound, expenseID)
	case err != nil:
		return nil, fmt.Errorf("failed to settle share: %w", err)
	}

	l.publish(ctx, events.Event{
		Type:       events.ExpenseSettled,
		ExpenseID:  expenseID,
		UserID:     userID,
		Version:    expense.Version,
		OccurredAt: expense.UpdatedAt,
	})
	return expense, nil
}

// keyedMutex hands out one mutex per key. Entries are dropped once no
// goroutine holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
