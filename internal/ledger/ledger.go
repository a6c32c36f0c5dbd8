// Package ledger holds the shared-expense domain: the user directory, the
// expense ledger with settlement tracking, and the balance resolver.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ledger records expenses and tracks who has settled their share.
type Ledger struct {
	expenses  storage.ExpenseRepository
	directory *Directory
	publisher events.Publisher
	now       Clock
	locks     *keyedMutex
}

// NewLedger creates a Ledger. A nil publisher discards events and a nil
// clock means SystemClock.
func NewLedger(expenses storage.ExpenseRepository, directory *Directory, publisher events.Publisher, clock Clock) *Ledger {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Ledger{
		expenses:  expenses,
		directory: directory,
		publisher: publisher,
		now:       clock,
		locks:     newKeyedMutex(),
	}
}

// ParticipantInput is one participant of a new expense. Share is required
// for custom splits and ignored for equal splits.
type ParticipantInput struct {
	UserID string
	Share  *decimal.Decimal
}

// CreateExpenseInput describes a new expense.
type CreateExpenseInput struct {
	Title       string
	TotalAmount decimal.Decimal
	// Date defaults to the current time when zero.
	Date         time.Time
	PaidByID     string
	SplitMethod  models.SplitMethod
	Participants []ParticipantInput

	// PersonalRecordHint is forwarded on the expense.created event for the
	// primary holder's own transaction records. The ledger does not store it.
	PersonalRecordHint string
}

// CreateExpense validates input, computes shares and stores the expense.
// The payer's own share, if any, starts settled.
func (l *Ledger) CreateExpense(ctx context.Context, in CreateExpenseInput) (*models.Expense, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	if _, err := l.directory.Resolve(ctx, in.PaidByID); err != nil {
		return nil, err
	}
	ids := make([]string, len(in.Participants))
	custom := make(map[string]decimal.Decimal, len(in.Participants))
	for i, p := range in.Participants {
		if _, err := l.directory.Resolve(ctx, p.UserID); err != nil {
			return nil, err
		}
		ids[i] = p.UserID
		if p.Share != nil {
			custom[p.UserID] = *p.Share
		}
	}

	shares, err := calculator.CalculateShares(in.TotalAmount, in.SplitMethod, ids, in.PaidByID, custom)
	if err != nil {
		return nil, err
	}

	now := l.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}

	expense := &models.Expense{
		ID:           uuid.NewString(),
		Title:        title,
		Date:         date,
		TotalAmount:  calculator.RoundMoney(in.TotalAmount),
		PaidByID:     in.PaidByID,
		SplitMethod:  in.SplitMethod,
		Participants: make([]models.Participant, len(shares)),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i, s := range shares {
		expense.Participants[i] = models.Participant{
			UserID:      s.UserID,
			ShareAmount: s.Amount,
			IsSettled:   s.UserID == in.PaidByID,
		}
	}
	expense.RecomputeSettled()

	if err := l.expenses.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	l.publish(ctx, events.Event{
		Type:               events.ExpenseCreated,
		ExpenseID:          expense.ID,
		Version:            expense.Version,
		PersonalRecordHint: in.PersonalRecordHint,
		OccurredAt:         now,
	})
	return expense, nil
}

// GetExpense returns one hydrated expense. An expense whose payer or
// participants can no longer be resolved is reported as not found, the
// same as ListExpenses hides it.
func (l *Ledger) GetExpense(ctx context.Context, id string) (*models.HydratedExpense, error) {
	expense, err := l.getExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := l.directory.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	h, missing := snap.hydrate(expense)
	if h == nil {
		slog.Warn("Expense references unknown user", "expense_id", id, "user_id", missing)
		return nil, fmt.Errorf("%w: %s", ErrExpenseNotFound, id)
	}
	return h, nil
}

// ListExpenses returns hydrated expenses, newest first by date. Records
// that reference users no longer in the directory are skipped. limit <= 0
// returns everything; otherwise at most limit records are returned.
func (l *Ledger) ListExpenses(ctx context.Context, limit int) ([]*models.HydratedExpense, error) {
	snap, err := l.directory.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := l.expenses.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	result := make([]*models.HydratedExpense, 0, len(expenses))
	for _, e := range expenses {
		if limit > 0 && len(result) == limit {
			break
		}
		h, missing := snap.hydrate(e)
		if h == nil {
			slog.Warn("Skipping expense with unknown user", "expense_id", e.ID, "user_id", missing)
			continue
		}
		result = append(result, h)
	}
	return result, nil
}

// DeleteExpense removes an expense. Deleting a missing expense succeeds.
func (l *Ledger) DeleteExpense(ctx context.Context, id string) error {
	existed, err := l.expenses.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if existed {
		l.publish(ctx, events.Event{
			Type:       events.ExpenseDeleted,
			ExpenseID:  id,
			OccurredAt: l.now(),
		})
	}
	return nil
}

func (l *Ledger) getExpense(ctx context.Context, id string) (*models.Expense, error) {
	expense, err := l.expenses.GetExpense(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrExpenseNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// publish never fails the caller; the ledger write has already happened.
func (l *Ledger) publish(ctx context.Context, event events.Event) {
	if err := l.publisher.Publish(ctx, event); err != nil {
		slog.Error("Failed to publish event",
			"type", event.Type,
			"expense_id", event.ExpenseID,
			"error", err)
	}
}
