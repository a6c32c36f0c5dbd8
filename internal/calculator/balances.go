package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// ExpenseForBalance represents an expense with the minimal information needed
// for balance calculations.
type ExpenseForBalance struct {
	PaidByID       string
	IsFullySettled bool
	Participants   []models.Participant
}

// Member is one user the resolver reports on, in output order.
type Member struct {
	ID   string
	Name string
}

// ResolveBalances computes, for each member, a net amount and the
// counterparties they owe or are owed by, across all unsettled expenses.
//
// Algorithm:
//   - For each expense that is not fully settled, every unsettled participant
//     owes the payer their share: payer += share, participant -= share.
//   - Each such share is also an edge participant -> payer.
//   - Edges are consolidated per (debtor, creditor) pair; pairs at or below
//     Tolerance are dropped.
//
// Netting is per expense. Chains such as A owes B owes C are not collapsed;
// use SimplifyDebts on the result for that.
//
// Expenses touching users outside members must be filtered by the caller;
// they are ignored here so the returned net amounts always sum to zero.
func ResolveBalances(members []Member, expenses []ExpenseForBalance) []models.UserBalance {
	index := make(map[string]int, len(members))
	for i, m := range members {
		index[m.ID] = i
	}

	net := make([]decimal.Decimal, len(members))
	for i := range net {
		net[i] = decimal.Zero
	}

	// debts[debtor][creditor] = amount
	debts := make(map[string]map[string]decimal.Decimal)

	for _, exp := range expenses {
		if exp.IsFullySettled {
			continue
		}
		payer, ok := index[exp.PaidByID]
		if !ok {
			continue
		}
		for _, p := range exp.Participants {
			if p.IsSettled || p.UserID == exp.PaidByID {
				continue
			}
			debtor, ok := index[p.UserID]
			if !ok {
				continue
			}
			net[payer] = net[payer].Add(p.ShareAmount)
			net[debtor] = net[debtor].Sub(p.ShareAmount)

			if _, exists := debts[p.UserID]; !exists {
				debts[p.UserID] = make(map[string]decimal.Decimal)
			}
			debts[p.UserID][exp.PaidByID] = debts[p.UserID][exp.PaidByID].Add(p.ShareAmount)
		}
	}

	balances := make([]models.UserBalance, len(members))
	for i, m := range members {
		balances[i] = models.UserBalance{
			UserID:    m.ID,
			UserName:  m.Name,
			NetAmount: RoundMoney(net[i]),
			Owes:      []models.Debt{},
			OwedBy:    []models.Debt{},
		}
	}

	// Walk members in order so Owes/OwedBy come out deterministically.
	for i, debtor := range members {
		creditors := debts[debtor.ID]
		for j, creditor := range members {
			amount, ok := creditors[creditor.ID]
			if !ok || !amount.GreaterThan(Tolerance) {
				continue
			}
			amount = RoundMoney(amount)
			balances[i].Owes = append(balances[i].Owes, models.Debt{
				UserID:   creditor.ID,
				UserName: creditor.Name,
				Amount:   amount,
			})
			balances[j].OwedBy = append(balances[j].OwedBy, models.Debt{
				UserID:   debtor.ID,
				UserName: debtor.Name,
				Amount:   amount,
			})
		}
	}

	return balances
}
