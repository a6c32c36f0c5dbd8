package models

import "github.com/shopspring/decimal"

// UserBalance is one user's position across all unsettled expenses.
type UserBalance struct {
	UserID   string
	UserName string

	// NetAmount is positive when the user is owed money and negative when
	// the user owes money. Rounded to two fractional digits.
	NetAmount decimal.Decimal

	// Owes lists the counterparties this user owes, one entry per creditor.
	Owes []Debt

	// OwedBy lists the counterparties that owe this user. It is the inverse
	// of every other user's Owes entries that point at this user.
	OwedBy []Debt
}

// Debt is a consolidated amount between this user and one counterparty.
type Debt struct {
	UserID   string
	UserName string
	Amount   decimal.Decimal
}

// Transfer is one payment suggested by debt simplification.
type Transfer struct {
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
}
