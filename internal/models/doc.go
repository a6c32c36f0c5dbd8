// Package models defines the core domain models for the shared-expense ledger.
//
// # Models
//
//   - User: a participant who can pay for or owe a share of an expense
//   - Expense: one shared financial event with its per-participant shares
//   - Participant: one user's share of an expense and whether it is settled
//   - UserBalance / Debt: the output of balance resolution
//   - Transfer: one step of an optional debt simplification pass
//
// # Design Principles
//
//  1. **Ids, not pointers**: expenses reference users by ID; hydration into
//     full User values happens at read time in the ledger package.
//  2. **Decimal money**: all amounts are decimal.Decimal with two fractional
//     digits; float64 never appears in a persisted amount.
//  3. **Primary holder**: PrimaryUserID is always a valid payer or participant
//     and is never stored in the user directory.
package models
