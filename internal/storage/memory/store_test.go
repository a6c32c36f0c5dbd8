package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newExpense(id string, date time.Time) *models.Expense {
	return &models.Expense{
		ID:          id,
		Title:       "Groceries",
		Date:        date,
		TotalAmount: decimal.NewFromInt(40),
		PaidByID:    models.PrimaryUserID,
		SplitMethod: models.SplitEqually,
		Participants: []models.Participant{
			{UserID: models.PrimaryUserID, ShareAmount: decimal.NewFromInt(20), IsSettled: true},
			{UserID: "bob", ShareAmount: decimal.NewFromInt(20)},
		},
		Version:   1,
		CreatedAt: date,
		UpdatedAt: date,
	}
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.PutUser(ctx, &models.User{ID: "2", Name: "Zed", CreatedAt: base}))
	require.NoError(t, s.PutUser(ctx, &models.User{ID: "1", Name: "Amy", CreatedAt: base}))
	require.NoError(t, s.PutUser(ctx, &models.User{ID: "0", Name: "Old", CreatedAt: base.Add(-time.Hour)}))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"Old", "Amy", "Zed"}, []string{users[0].Name, users[1].Name, users[2].Name})

	require.NoError(t, s.DeleteUser(ctx, "1"))
	require.NoError(t, s.DeleteUser(ctx, "1"), "deleting twice is not an error")

	_, err = s.GetUser(ctx, "1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_ExpenseIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()
	exp := newExpense("e1", time.Now())
	require.NoError(t, s.CreateExpense(ctx, exp))

	exp.Participants[1].IsSettled = true

	got, err := s.GetExpense(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, got.Participants[1].IsSettled, "store must not alias caller slices")
}

func TestStore_UpdateExpenseVersionCheck(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateExpense(ctx, newExpense("e1", time.Now())))

	update, err := s.GetExpense(ctx, "e1")
	require.NoError(t, err)
	update.Participants[1].IsSettled = true
	update.Version = 2

	require.NoError(t, s.UpdateExpense(ctx, update, 1))
	assert.ErrorIs(t, s.UpdateExpense(ctx, update, 1), storage.ErrVersionConflict)
	assert.ErrorIs(t, s.UpdateExpense(ctx, newExpense("missing", time.Now()), 1), storage.ErrNotFound)
}

func TestStore_ListAndDeleteExpenses(t *testing.T) {
	ctx := context.Background()
	s := New()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	older := newExpense("older", day.AddDate(0, 0, -1))
	first := newExpense("first", day)
	second := newExpense("second", day)
	second.CreatedAt = day.Add(time.Minute)
	for _, e := range []*models.Expense{older, first, second} {
		require.NoError(t, s.CreateExpense(ctx, e))
	}

	list, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "second", list[0].ID)
	assert.Equal(t, "first", list[1].ID)
	assert.Equal(t, "older", list[2].ID)

	existed, err := s.DeleteExpense(ctx, "first")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.DeleteExpense(ctx, "first")
	require.NoError(t, err)
	assert.False(t, existed)
}
