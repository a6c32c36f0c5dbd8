// Package service exposes the ledger over Connect RPC.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/ledgerconnect"
)

// Ensure LedgerService implements the Connect handler interface
var _ ledgerconnect.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the Connect LedgerService.
type LedgerService struct {
	directory *ledger.Directory
	ledger    *ledger.Ledger
	resolver  *ledger.Resolver
	validate  *validator.Validate
}

// NewLedgerService creates a new LedgerService over the domain components.
func NewLedgerService(directory *ledger.Directory, l *ledger.Ledger, resolver *ledger.Resolver) *LedgerService {
	return &LedgerService{
		directory: directory,
		ledger:    l,
		resolver:  resolver,
		validate:  validator.New(),
	}
}

// AddUser adds a user to the directory.
func (s *LedgerService) AddUser(ctx context.Context, req *connect.Request[api.AddUserRequest]) (*connect.Response[api.AddUserResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, toConnectError("AddUser", err)
	}

	user, err := s.directory.AddUser(ctx, req.Msg.Name)
	if err != nil {
		return nil, toConnectError("AddUser", err)
	}
	slog.Info("User added", "user_id", user.ID, "by", middleware.GetUserID(ctx), "role", middleware.GetRole(ctx))

	return connect.NewResponse(&api.AddUserResponse{User: toAPIUser(*user)}), nil
}

// DeleteUser removes a user from the directory. Unknown ids succeed.
func (s *LedgerService) DeleteUser(ctx context.Context, req *connect.Request[api.DeleteUserRequest]) (*connect.Response[emptypb.Empty], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, toConnectError("DeleteUser", err)
	}

	if err := s.directory.DeleteUser(ctx, req.Msg.UserID); err != nil {
		return nil, toConnectError("DeleteUser", err)
	}
	slog.Info("User deleted", "user_id", req.Msg.UserID, "by", middleware.GetUserID(ctx), "role", middleware.GetRole(ctx))

	return connect.NewResponse(&emptypb.Empty{}), nil
}

// ListUsers returns the directory in creation order.
func (s *LedgerService) ListUsers(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.ListUsersResponse], error) {
	users, err := s.directory.ListUsers(ctx)
	if err != nil {
		return nil, toConnectError("ListUsers", err)
	}

	resp := &api.ListUsersResponse{Users: make([]api.User, len(users))}
	for i, u := range users {
		resp.Users[i] = toAPIUser(*u)
	}
	return connect.NewResponse(resp), nil
}

// CreateExpense records a new shared expense.
func (s *LedgerService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, toConnectError("CreateExpense", err)
	}

	total, err := decimal.NewFromString(req.Msg.TotalAmount)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("total_amount: %w", err))
	}

	in := ledger.CreateExpenseInput{
		Title:              req.Msg.Title,
		TotalAmount:        total,
		PaidByID:           req.Msg.PaidByID,
		SplitMethod:        models.SplitMethod(req.Msg.SplitMethod),
		Participants:       make([]ledger.ParticipantInput, len(req.Msg.Participants)),
		PersonalRecordHint: req.Msg.PersonalRecordHint,
	}
	if req.Msg.Date != nil {
		in.Date = req.Msg.Date.UTC()
	}
	for i, p := range req.Msg.Participants {
		in.Participants[i] = ledger.ParticipantInput{UserID: p.UserID}
		if p.Share != nil {
			share, err := decimal.NewFromString(*p.Share)
			if err != nil {
				return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("share for %s: %w", p.UserID, err))
			}
			in.Participants[i].Share = &share
		}
	}

	expense, err := s.ledger.CreateExpense(ctx, in)
	if err != nil {
		return nil, toConnectError("CreateExpense", err)
	}
	slog.Info("Expense created",
		"expense_id", expense.ID,
		"total", expense.TotalAmount.StringFixed(2),
		"participants", len(expense.Participants),
	)

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// GetExpense returns a single hydrated expense.
func (s *LedgerService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, toConnectError("GetExpense", err)
	}

	expense, err := s.ledger.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError("GetExpense", err)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIHydratedExpense(expense)}), nil
}

// ListExpenses returns expenses newest first.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	expenses, err := s.ledger.ListExpenses(ctx, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError("ListExpenses", err)
	}

	resp := &api.ListExpensesResponse{Expenses: make([]api.Expense, len(expenses))}
	for i, e := range expenses {
		resp.Expenses[i] = toAPIHydratedExpense(e)
	}
	return connect.NewResponse(resp), nil
}

// SettleParticipantShare marks one participant's share as paid.
func (s *LedgerService) SettleParticipantShare(ctx context.Context, req *connect.Request[api.SettleParticipantShareRequest]) (*connect.Response[api.SettleParticipantShareResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, toConnectError("SettleParticipantShare", err)
	}

	expense, err := s.ledger.SettleParticipantShare(ctx, req.Msg.ExpenseID, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError("SettleParticipantShare", err)
	}
	slog.Debug("Share settled",
		"expense_id", expense.ID,
		"user_id", req.Msg.UserID,
		"fully_settled", expense.IsFullySettled,
	)

	return connect.NewResponse(&api.SettleParticipantShareResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense. Unknown ids succeed.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, toConnectError("DeleteExpense", err)
	}

	if err := s.ledger.DeleteExpense(ctx, req.Msg.ExpenseID); err != nil {
		return nil, toConnectError("DeleteExpense", err)
	}
	return connect.NewResponse(&api.DeleteExpenseResponse{Success: true}), nil
}

// ResolveBalances reports what every user owes and is owed.
func (s *LedgerService) ResolveBalances(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.ResolveBalancesResponse], error) {
	balances, err := s.resolver.ResolveBalances(ctx)
	if err != nil {
		return nil, toConnectError("ResolveBalances", err)
	}

	resp := &api.ResolveBalancesResponse{Balances: make([]api.UserBalance, len(balances))}
	for i, b := range balances {
		resp.Balances[i] = toAPIBalance(b)
	}
	return connect.NewResponse(resp), nil
}

// SimplifyDebts suggests a short list of transfers that settles everyone.
func (s *LedgerService) SimplifyDebts(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.SimplifyDebtsResponse], error) {
	transfers, err := s.resolver.SimplifyDebts(ctx)
	if err != nil {
		return nil, toConnectError("SimplifyDebts", err)
	}

	resp := &api.SimplifyDebtsResponse{Transfers: make([]api.Transfer, len(transfers))}
	for i, t := range transfers {
		resp.Transfers[i] = api.Transfer{
			FromUserID: t.FromUserID,
			ToUserID:   t.ToUserID,
			Amount:     money(t.Amount),
		}
	}
	return connect.NewResponse(resp), nil
}
