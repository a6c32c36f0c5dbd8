package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = `id, title, date, total_amount, paid_by_id, split_method,
	is_fully_settled, version, created_at, updated_at`

// CreateExpense persists a new expense and its participants in one transaction.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		expense.ID, expense.Title, expense.Date, expense.TotalAmount, expense.PaidByID,
		string(expense.SplitMethod), expense.IsFullySettled, expense.Version,
		expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	batch := &pgx.Batch{}
	for i, p := range expense.Participants {
		batch.Queue(`
			INSERT INTO expense_participants (expense_id, position, user_id, share_amount, is_settled)
			VALUES ($1, $2, $3, $4, $5)
		`, expense.ID, i, p.UserID, p.ShareAmount, p.IsSettled)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert participants: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its participants.
func (s *Store) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	expense, err := scanExpense(s.pool.QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	participants, err := s.loadParticipants(ctx, `
		SELECT expense_id, user_id, share_amount, is_settled FROM expense_participants
		WHERE expense_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	expense.Participants = participants[id]
	return expense, nil
}

// ListExpenses returns all expenses, newest first.
func (s *Store) ListExpenses(ctx context.Context) ([]*models.Expense, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	participants, err := s.loadParticipants(ctx, `
		SELECT expense_id, user_id, share_amount, is_settled FROM expense_participants
		ORDER BY expense_id, position
	`)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.Participants = participants[e.ID]
	}
	return expenses, nil
}

// UpdateExpense writes settlement state guarded by the version column.
func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense, expectedVersion int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE expenses SET is_fully_settled = $1, version = $2, updated_at = $3
		WHERE id = $4 AND version = $5
	`, expense.IsFullySettled, expense.Version, expense.UpdatedAt, expense.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM expenses WHERE id = $1)`, expense.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check expense existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
		}
		return fmt.Errorf("expense %s at version %d: %w", expense.ID, expectedVersion, storage.ErrVersionConflict)
	}

	for _, p := range expense.Participants {
		if _, err := tx.Exec(ctx, `
			UPDATE expense_participants SET is_settled = $1 WHERE expense_id = $2 AND user_id = $3
		`, p.IsSettled, expense.ID, p.UserID); err != nil {
			return fmt.Errorf("failed to update participant: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense and reports whether it existed.
func (s *Store) DeleteExpense(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) loadParticipants(ctx context.Context, query string, args ...any) (map[string][]models.Participant, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]models.Participant)
	for rows.Next() {
		var (
			expenseID string
			p         models.Participant
		)
		if err := rows.Scan(&expenseID, &p.UserID, &p.ShareAmount, &p.IsSettled); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		result[expenseID] = append(result[expenseID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return result, nil
}

func scanExpense(row pgx.Row) (*models.Expense, error) {
	var (
		e      models.Expense
		method string
	)
	err := row.Scan(&e.ID, &e.Title, &e.Date, &e.TotalAmount, &e.PaidByID, &method,
		&e.IsFullySettled, &e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.SplitMethod = models.SplitMethod(method)
	return &e, nil
}
