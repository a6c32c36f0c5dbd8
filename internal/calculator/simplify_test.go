package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

func TestSimplifyDebts_CollapsesChain(t *testing.T) {
	// A owes B 10, B owes C 10: one transfer A -> C settles everything.
	balances := []models.UserBalance{
		{UserID: "A", NetAmount: dec("-10")},
		{UserID: "B", NetAmount: decimal.Zero},
		{UserID: "C", NetAmount: dec("10")},
	}

	transfers := SimplifyDebts(balances)
	require.Len(t, transfers, 1)
	assert.Equal(t, "A", transfers[0].FromUserID)
	assert.Equal(t, "C", transfers[0].ToUserID)
	assert.True(t, transfers[0].Amount.Equal(dec("10")))
}

func TestSimplifyDebts_SettlesEveryNetAmount(t *testing.T) {
	balances := []models.UserBalance{
		{UserID: "A", NetAmount: dec("600")},
		{UserID: "B", NetAmount: dec("-300")},
		{UserID: "C", NetAmount: dec("-250")},
		{UserID: "D", NetAmount: dec("-50")},
	}

	transfers := SimplifyDebts(balances)
	require.Len(t, transfers, 3)

	net := map[string]decimal.Decimal{}
	for _, tr := range transfers {
		net[tr.FromUserID] = net[tr.FromUserID].Add(tr.Amount)
		net[tr.ToUserID] = net[tr.ToUserID].Sub(tr.Amount)
	}
	for _, b := range balances {
		assert.True(t, net[b.UserID].Add(b.NetAmount).IsZero(), "%s left unsettled", b.UserID)
	}
	assert.Equal(t, "B", transfers[0].FromUserID, "largest debtor pays first")
}

func TestSimplifyDebts_NothingOwed(t *testing.T) {
	transfers := SimplifyDebts([]models.UserBalance{
		{UserID: "A", NetAmount: decimal.Zero},
		{UserID: "B", NetAmount: dec("0.01")},
	})
	assert.Empty(t, transfers)
}
