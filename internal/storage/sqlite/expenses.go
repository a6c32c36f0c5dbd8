package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = `id, title, date, total_amount, paid_by_id, split_method,
	is_fully_settled, version, created_at, updated_at`

// CreateExpense persists a new expense and its participants in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID,
		expense.Title,
		toMillis(expense.Date),
		expense.TotalAmount.StringFixed(calculator.MinorUnitPlaces),
		expense.PaidByID,
		string(expense.SplitMethod),
		expense.IsFullySettled,
		expense.Version,
		toMillis(expense.CreatedAt),
		toMillis(expense.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, p := range expense.Participants {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_participants (expense_id, position, user_id, share_amount, is_settled)
			 VALUES (?, ?, ?, ?, ?)`,
			expense.ID, i, p.UserID, p.ShareAmount.StringFixed(calculator.MinorUnitPlaces), p.IsSettled,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including its participants.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, expenseID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	participants, err := s.loadParticipants(ctx,
		`SELECT expense_id, user_id, share_amount, is_settled FROM expense_participants
		 WHERE expense_id = ? ORDER BY position`, expenseID)
	if err != nil {
		return nil, err
	}
	expense.Participants = participants[expense.ID]

	return expense, nil
}

// ListExpenses returns all expenses, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses ORDER BY date DESC, created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := []*models.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	// Participants for every expense in one query, grouped in memory.
	participants, err := s.loadParticipants(ctx,
		`SELECT expense_id, user_id, share_amount, is_settled FROM expense_participants
		 ORDER BY expense_id, position`)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.Participants = participants[e.ID]
	}

	return expenses, nil
}

// DeleteExpense removes an expense; participants go with it via ON DELETE CASCADE.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) loadParticipants(ctx context.Context, query string, args ...any) (map[string][]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
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

func scanExpense(row rowScanner) (*models.Expense, error) {
	var (
		e                          models.Expense
		method                     string
		date, createdAt, updatedAt int64
	)
	err := row.Scan(&e.ID, &e.Title, &date, &e.TotalAmount, &e.PaidByID, &method,
		&e.IsFullySettled, &e.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.SplitMethod = models.SplitMethod(method)
	e.Date = fromMillis(date)
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return &e, nil
}
