package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// UpdateExpense writes the settlement state of an expense: each
// participant's IsSettled flag, IsFullySettled, Version and UpdatedAt.
// Amounts are immutable and are never rewritten.
//
// The expenses row is only updated while its version still equals
// expectedVersion, so a concurrent writer that got there first turns this
// call into storage.ErrVersionConflict.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense, expectedVersion int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET is_fully_settled = ?, version = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		expense.IsFullySettled, expense.Version, toMillis(expense.UpdatedAt),
		expense.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM expenses WHERE id = ?", expense.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check expense existence: %w", err)
		}
		return fmt.Errorf("expense %s at version %d: %w", expense.ID, expectedVersion, storage.ErrVersionConflict)
	}

	for _, p := range expense.Participants {
		_, err = tx.ExecContext(ctx,
			"UPDATE expense_participants SET is_settled = ? WHERE expense_id = ? AND user_id = ?",
			p.IsSettled, expense.ID, p.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to update participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
