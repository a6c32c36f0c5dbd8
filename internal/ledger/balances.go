package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Resolver derives who owes whom from the current ledger state. It never
// writes.
type Resolver struct {
	expenses  storage.ExpenseRepository
	directory *Directory
}

func NewResolver(expenses storage.ExpenseRepository, directory *Directory) *Resolver {
	return &Resolver{expenses: expenses, directory: directory}
}

// ResolveBalances returns one balance per user, the primary account holder
// first, then directory order. Expenses that reference users no longer in
// the directory are left out so the net amounts always sum to zero.
func (r *Resolver) ResolveBalances(ctx context.Context) ([]models.UserBalance, error) {
	snap, err := r.directory.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := r.expenses.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	members := make([]calculator.Member, len(snap.ordered))
	for i, u := range snap.ordered {
		members[i] = calculator.Member{ID: u.ID, Name: u.Name}
	}

	input := make([]calculator.ExpenseForBalance, 0, len(expenses))
	for _, e := range expenses {
		if e.IsFullySettled {
			continue
		}
		if h, missing := snap.hydrate(e); h == nil {
			slog.Warn("Excluding expense with unknown user from balances", "expense_id", e.ID, "user_id", missing)
			continue
		}
		input = append(input, calculator.ExpenseForBalance{
			PaidByID:       e.PaidByID,
			IsFullySettled: e.IsFullySettled,
			Participants:   e.Participants,
		})
	}

	return calculator.ResolveBalances(members, input), nil
}

// SimplifyDebts resolves balances and reduces them to a short list of
// transfers that would settle everyone.
func (r *Resolver) SimplifyDebts(ctx context.Context) ([]models.Transfer, error) {
	balances, err := r.ResolveBalances(ctx)
	if err != nil {
		return nil, err
	}
	return calculator.SimplifyDebts(balances), nil
}
