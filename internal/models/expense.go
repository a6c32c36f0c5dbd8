package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitMethod is the rule used to divide an expense among its participants.
type SplitMethod string

const (
	// SplitEqually gives every participant the same share; one participant
	// absorbs the rounding remainder.
	SplitEqually SplitMethod = "equally"

	// SplitCustom uses caller-supplied shares that must sum to the total.
	SplitCustom SplitMethod = "custom"
)

// Valid reports whether m is a known split method.
func (m SplitMethod) Valid() bool {
	return m == SplitEqually || m == SplitCustom
}

// Expense represents one shared expense paid by a single user on behalf of
// a group of participants.
//
// TotalAmount, SplitMethod and every Participant.ShareAmount are fixed at
// creation. Only Participant.IsSettled (and the derived IsFullySettled) may
// change afterwards.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Title is the human-readable name for the expense (e.g., "Dinner").
	Title string

	// Date is when the expense happened. Listings are ordered by it.
	Date time.Time

	// TotalAmount is the positive amount paid, with two fractional digits.
	TotalAmount decimal.Decimal

	// PaidByID is the user ID of the payer, or PrimaryUserID.
	PaidByID string

	// SplitMethod records how shares were computed.
	SplitMethod SplitMethod

	// Participants is the ordered list of shares. Never empty.
	Participants []Participant

	// IsFullySettled is true iff every participant is settled.
	IsFullySettled bool

	// Version is incremented on every persisted update and is used for
	// optimistic concurrency control on settlement writes.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Participant is one user's share of an expense.
type Participant struct {
	UserID      string
	ShareAmount decimal.Decimal
	IsSettled   bool
}

// Participant returns the entry for userID and its index, or -1 if the user
// does not take part in the expense.
func (e *Expense) Participant(userID string) (*Participant, int) {
	for i := range e.Participants {
		if e.Participants[i].UserID == userID {
			return &e.Participants[i], i
		}
	}
	return nil, -1
}

// RecomputeSettled derives IsFullySettled from the participant list and
// returns the new value.
func (e *Expense) RecomputeSettled() bool {
	settled := len(e.Participants) > 0
	for _, p := range e.Participants {
		if !p.IsSettled {
			settled = false
			break
		}
	}
	e.IsFullySettled = settled
	return settled
}

// Clone returns a deep copy of the expense.
func (e *Expense) Clone() *Expense {
	c := *e
	c.Participants = make([]Participant, len(e.Participants))
	copy(c.Participants, e.Participants)
	return &c
}

// HydratedExpense is an expense with its payer and participants resolved
// against the user directory.
type HydratedExpense struct {
	Expense
	PaidBy       User
	Participants []HydratedParticipant
}

// HydratedParticipant is a Participant with its resolved User.
type HydratedParticipant struct {
	Participant
	User User
}
