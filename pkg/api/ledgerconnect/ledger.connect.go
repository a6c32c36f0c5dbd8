// Package ledgerconnect wires splitledger.v1.LedgerService to Connect:
// procedure names, the server-side handler and a typed client.
package ledgerconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/splitledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "splitledger.v1.LedgerService"

// Procedure names, usable with req.Spec().Procedure in interceptors.
const (
	LedgerServiceAddUserProcedure                = "/splitledger.v1.LedgerService/AddUser"
	LedgerServiceDeleteUserProcedure             = "/splitledger.v1.LedgerService/DeleteUser"
	LedgerServiceListUsersProcedure              = "/splitledger.v1.LedgerService/ListUsers"
	LedgerServiceCreateExpenseProcedure          = "/splitledger.v1.LedgerService/CreateExpense"
	LedgerServiceGetExpenseProcedure             = "/splitledger.v1.LedgerService/GetExpense"
	LedgerServiceListExpensesProcedure           = "/splitledger.v1.LedgerService/ListExpenses"
	LedgerServiceSettleParticipantShareProcedure = "/splitledger.v1.LedgerService/SettleParticipantShare"
	LedgerServiceDeleteExpenseProcedure          = "/splitledger.v1.LedgerService/DeleteExpense"
	LedgerServiceResolveBalancesProcedure        = "/splitledger.v1.LedgerService/ResolveBalances"
	LedgerServiceSimplifyDebtsProcedure          = "/splitledger.v1.LedgerService/SimplifyDebts"
)

// LedgerServiceHandler is implemented by the server.
type LedgerServiceHandler interface {
	AddUser(context.Context, *connect.Request[api.AddUserRequest]) (*connect.Response[api.AddUserResponse], error)
	DeleteUser(context.Context, *connect.Request[api.DeleteUserRequest]) (*connect.Response[emptypb.Empty], error)
	ListUsers(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.ListUsersResponse], error)
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	SettleParticipantShare(context.Context, *connect.Request[api.SettleParticipantShareRequest]) (*connect.Response[api.SettleParticipantShareResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ResolveBalances(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.ResolveBalancesResponse], error)
	SimplifyDebts(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.SimplifyDebtsResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself. The JSON codec is always installed.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)

	handlers := map[string]http.Handler{
		LedgerServiceAddUserProcedure:                connect.NewUnaryHandler(LedgerServiceAddUserProcedure, svc.AddUser, opts...),
		LedgerServiceDeleteUserProcedure:             connect.NewUnaryHandler(LedgerServiceDeleteUserProcedure, svc.DeleteUser, opts...),
		LedgerServiceListUsersProcedure:              connect.NewUnaryHandler(LedgerServiceListUsersProcedure, svc.ListUsers, opts...),
		LedgerServiceCreateExpenseProcedure:          connect.NewUnaryHandler(LedgerServiceCreateExpenseProcedure, svc.CreateExpense, opts...),
		LedgerServiceGetExpenseProcedure:             connect.NewUnaryHandler(LedgerServiceGetExpenseProcedure, svc.GetExpense, opts...),
		LedgerServiceListExpensesProcedure:           connect.NewUnaryHandler(LedgerServiceListExpensesProcedure, svc.ListExpenses, opts...),
		LedgerServiceSettleParticipantShareProcedure: connect.NewUnaryHandler(LedgerServiceSettleParticipantShareProcedure, svc.SettleParticipantShare, opts...),
		LedgerServiceDeleteExpenseProcedure:          connect.NewUnaryHandler(LedgerServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...),
		LedgerServiceResolveBalancesProcedure:        connect.NewUnaryHandler(LedgerServiceResolveBalancesProcedure, svc.ResolveBalances, opts...),
		LedgerServiceSimplifyDebtsProcedure:          connect.NewUnaryHandler(LedgerServiceSimplifyDebtsProcedure, svc.SimplifyDebts, opts...),
	}

	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// LedgerServiceClient is a typed client for LedgerService.
type LedgerServiceClient struct {
	addUser                *connect.Client[api.AddUserRequest, api.AddUserResponse]
	deleteUser             *connect.Client[api.DeleteUserRequest, emptypb.Empty]
	listUsers              *connect.Client[emptypb.Empty, api.ListUsersResponse]
	createExpense          *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	getExpense             *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	listExpenses           *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	settleParticipantShare *connect.Client[api.SettleParticipantShareRequest, api.SettleParticipantShareResponse]
	deleteExpense          *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	resolveBalances        *connect.Client[emptypb.Empty, api.ResolveBalancesResponse]
	simplifyDebts          *connect.Client[emptypb.Empty, api.SimplifyDebtsResponse]
}

// NewLedgerServiceClient constructs a client for the service at baseURL
// (for example, http://localhost:8080). The JSON codec is always installed.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
	return &LedgerServiceClient{
		addUser:                connect.NewClient[api.AddUserRequest, api.AddUserResponse](httpClient, baseURL+LedgerServiceAddUserProcedure, opts...),
		deleteUser:             connect.NewClient[api.DeleteUserRequest, emptypb.Empty](httpClient, baseURL+LedgerServiceDeleteUserProcedure, opts...),
		listUsers:              connect.NewClient[emptypb.Empty, api.ListUsersResponse](httpClient, baseURL+LedgerServiceListUsersProcedure, opts...),
		createExpense:          connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+LedgerServiceCreateExpenseProcedure, opts...),
		getExpense:             connect.NewClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL+LedgerServiceGetExpenseProcedure, opts...),
		listExpenses:           connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+LedgerServiceListExpensesProcedure, opts...),
		settleParticipantShare: connect.NewClient[api.SettleParticipantShareRequest, api.SettleParticipantShareResponse](httpClient, baseURL+LedgerServiceSettleParticipantShareProcedure, opts...),
		deleteExpense:          connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+LedgerServiceDeleteExpenseProcedure, opts...),
		resolveBalances:        connect.NewClient[emptypb.Empty, api.ResolveBalancesResponse](httpClient, baseURL+LedgerServiceResolveBalancesProcedure, opts...),
		simplifyDebts:          connect.NewClient[emptypb.Empty, api.SimplifyDebtsResponse](httpClient, baseURL+LedgerServiceSimplifyDebtsProcedure, opts...),
	}
}

func (c *LedgerServiceClient) AddUser(ctx context.Context, req *connect.Request[api.AddUserRequest]) (*connect.Response[api.AddUserResponse], error) {
	return c.addUser.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteUser(ctx context.Context, req *connect.Request[api.DeleteUserRequest]) (*connect.Response[emptypb.Empty], error) {
	return c.deleteUser.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListUsers(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SettleParticipantShare(ctx context.Context, req *connect.Request[api.SettleParticipantShareRequest]) (*connect.Response[api.SettleParticipantShareResponse], error) {
	return c.settleParticipantShare.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ResolveBalances(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.ResolveBalancesResponse], error) {
	return c.resolveBalances.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SimplifyDebts(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.SimplifyDebtsResponse], error) {
	return c.simplifyDebts.CallUnary(ctx, req)
}
