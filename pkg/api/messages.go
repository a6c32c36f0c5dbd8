package api

import "time"

// Amounts travel as decimal strings with two fractional digits ("12.50").

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type AddUserRequest struct {
	Name string `json:"name" validate:"required"`
}

type AddUserResponse struct {
	User User `json:"user"`
}

type DeleteUserRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type ListUsersResponse struct {
	Users []User `json:"users"`
}

type ParticipantInput struct {
	UserID string `json:"user_id" validate:"required"`
	// Share is required for custom splits.
	Share *string `json:"share,omitempty" validate:"omitempty,numeric"`
}

type CreateExpenseRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	TotalAmount string `json:"total_amount" validate:"required,numeric"`
	// Date defaults to now.
	Date         *time.Time         `json:"date,omitempty"`
	PaidByID     string             `json:"paid_by_id" validate:"required"`
	SplitMethod  string             `json:"split_method" validate:"required"`
	Participants []ParticipantInput `json:"participants" validate:"dive"`

	PersonalRecordHint string `json:"personal_record_hint,omitempty" validate:"max=500"`
}

// Participant is one share of an expense. UserName is filled on reads.
type Participant struct {
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name,omitempty"`
	ShareAmount string `json:"share_amount"`
	IsSettled   bool   `json:"is_settled"`
}

// Expense is the wire form of a ledger record. PaidByName and participant
// names are filled on reads.
type Expense struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Date           time.Time     `json:"date"`
	TotalAmount    string        `json:"total_amount"`
	PaidByID       string        `json:"paid_by_id"`
	PaidByName     string        `json:"paid_by_name,omitempty"`
	SplitMethod    string        `json:"split_method"`
	Participants   []Participant `json:"participants"`
	IsFullySettled bool          `json:"is_fully_settled"`
	Version        int64         `json:"version"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type GetExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type ListExpensesRequest struct {
	// Limit <= 0 returns every expense.
	Limit int `json:"limit,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type SettleParticipantShareRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
}

type SettleParticipantShareResponse struct {
	Expense Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type DeleteExpenseResponse struct {
	Success bool `json:"success"`
}

type Debt struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Amount   string `json:"amount"`
}

type UserBalance struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	NetAmount string `json:"net_amount"`
	Owes      []Debt `json:"owes"`
	OwedBy    []Debt `json:"owed_by"`
}

type ResolveBalancesResponse struct {
	Balances []UserBalance `json:"balances"`
}

type Transfer struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     string `json:"amount"`
}

type SimplifyDebtsResponse struct {
	Transfers []Transfer `json:"transfers"`
}
