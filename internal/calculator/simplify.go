package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

type position struct {
	userID string
	amount decimal.Decimal
}

// SimplifyDebts reduces the pairwise debts behind balances to a short list
// of transfers that settle every net amount.
//
// It is a post-processing step over ResolveBalances output and does not
// touch the ledger. Creditors and debtors are matched greedily, largest
// amounts first; ties are broken by user ID so results are stable.
func SimplifyDebts(balances []models.UserBalance) []models.Transfer {
	var creditors, debtors []position
	for _, b := range balances {
		switch {
		case b.NetAmount.GreaterThan(Tolerance):
			creditors = append(creditors, position{userID: b.UserID, amount: b.NetAmount})
		case b.NetAmount.LessThan(Tolerance.Neg()):
			debtors = append(debtors, position{userID: b.UserID, amount: b.NetAmount.Neg()})
		}
	}
	sortPositions(creditors)
	sortPositions(debtors)

	transfers := []models.Transfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := decimal.Min(debtor.amount, creditor.amount)
		if amount.GreaterThan(Tolerance) {
			transfers = append(transfers, models.Transfer{
				FromUserID: debtor.userID,
				ToUserID:   creditor.userID,
				Amount:     RoundMoney(amount),
			})
		}

		debtor.amount = debtor.amount.Sub(amount)
		creditor.amount = creditor.amount.Sub(amount)

		if !debtor.amount.GreaterThan(Tolerance) {
			i++
		}
		if !creditor.amount.GreaterThan(Tolerance) {
			j++
		}
	}

	return transfers
}

func sortPositions(ps []position) {
	sort.Slice(ps, func(a, b int) bool {
		if c := ps[a].amount.Cmp(ps[b].amount); c != 0 {
			return c > 0
		}
		return ps[a].userID < ps[b].userID
	})
}
