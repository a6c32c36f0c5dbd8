// Package events publishes ledger change notifications to downstream
// consumers such as the personal transaction store.
package events

import (
	"context"
	"time"
)

// Type names a ledger change. It doubles as the AMQP routing key.
type Type string

const (
	ExpenseCreated Type = "expense.created"
	ExpenseSettled Type = "expense.settled"
	ExpenseDeleted Type = "expense.deleted"
)

// Event is the message body published for every ledger change.
type Event struct {
	Type      Type   `json:"type"`
	ExpenseID string `json:"expense_id"`

	// UserID is the participant that settled, for ExpenseSettled.
	UserID string `json:"user_id,omitempty"`

	// Version is the expense version after the change.
	Version int64 `json:"version,omitempty"`

	// PersonalRecordHint is passed through from CreateExpense so a consumer
	// can write the matching entry in the primary holder's own records.
	PersonalRecordHint string `json:"personal_record_hint,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
