package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// TestLedgerInvariants drives a random sequence of creates, settles and
// deletes and checks the record and balance invariants after every step.
func TestLedgerInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t)
		ctx := context.Background()

		users := []string{models.PrimaryUserID}
		for _, name := range []string{"A", "B", "C", "D"} {
			u, err := f.directory.AddUser(ctx, name)
			if err != nil {
				rt.Fatalf("AddUser: %v", err)
			}
			users = append(users, u.ID)
		}

		var created []string
		steps := rapid.IntRange(1, 25).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch op := rapid.IntRange(0, 2).Draw(rt, "op"); {
			case op == 0 || len(created) == 0:
				n := rapid.IntRange(1, len(users)).Draw(rt, "participants")
				perm := rapid.Permutation(users).Draw(rt, "perm")
				in := CreateExpenseInput{
					Title:       "random",
					TotalAmount: decimal.New(rapid.Int64Range(1, 1_000_000).Draw(rt, "cents"), -2),
					PaidByID:    rapid.SampledFrom(users).Draw(rt, "payer"),
					SplitMethod: models.SplitEqually,
				}
				for _, id := range perm[:n] {
					in.Participants = append(in.Participants, ParticipantInput{UserID: id})
				}
				exp, err := f.ledger.CreateExpense(ctx, in)
				if err != nil {
					rt.Fatalf("CreateExpense: %v", err)
				}
				sum := decimal.Zero
				for _, p := range exp.Participants {
					sum = sum.Add(p.ShareAmount)
				}
				if sum.Sub(exp.TotalAmount).Abs().GreaterThan(calculator.Tolerance) {
					rt.Fatalf("shares sum to %s, total %s", sum, exp.TotalAmount)
				}
				created = append(created, exp.ID)

			case op == 1:
				id := rapid.SampledFrom(created).Draw(rt, "expense")
				user := rapid.SampledFrom(users).Draw(rt, "settler")
				before, err := f.store.GetExpense(ctx, id)
				if err != nil {
					continue // deleted earlier
				}
				after, err := f.ledger.SettleParticipantShare(ctx, id, user)
				if err != nil {
					if p, _ := before.Participant(user); p != nil {
						rt.Fatalf("settle of participant failed: %v", err)
					}
					continue
				}
				for i, p := range before.Participants {
					if p.IsSettled && !after.Participants[i].IsSettled {
						rt.Fatalf("participant %s went from settled to unsettled", p.UserID)
					}
				}

			default:
				id := rapid.SampledFrom(created).Draw(rt, "delete")
				if err := f.ledger.DeleteExpense(ctx, id); err != nil {
					rt.Fatalf("DeleteExpense: %v", err)
				}
			}

			all, err := f.store.ListExpenses(ctx)
			if err != nil {
				rt.Fatalf("ListExpenses: %v", err)
			}
			for _, e := range all {
				allSettled := true
				for _, p := range e.Participants {
					allSettled = allSettled && p.IsSettled
				}
				if e.IsFullySettled != allSettled {
					rt.Fatalf("expense %s: IsFullySettled=%v but participants say %v", e.ID, e.IsFullySettled, allSettled)
				}
			}

			balances, err := f.resolver.ResolveBalances(ctx)
			if err != nil {
				rt.Fatalf("ResolveBalances: %v", err)
			}
			net := decimal.Zero
			for _, b := range balances {
				net = net.Add(b.NetAmount)
			}
			if !net.IsZero() {
				rt.Fatalf("net amounts sum to %s", net)
			}
		}
	})
}
