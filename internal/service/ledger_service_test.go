package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/ledgerconnect"
)

// testAuthInterceptor returns a Connect interceptor that sets a test user ID in the context.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			ctx = context.WithValue(ctx, middleware.UserIDKey, "tester")
			return next(ctx, req)
		}
	}
}

// setupTestServer creates a test server backed by a SQLite file in a temp dir.
func setupTestServer(t *testing.T) (*ledgerconnect.LedgerServiceClient, func()) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	directory := ledger.NewDirectory(store, "You", ledger.SystemClock)
	svc := NewLedgerService(
		directory,
		ledger.NewLedger(store, directory, events.Nop{}, ledger.SystemClock),
		ledger.NewResolver(store, directory),
	)
	path, handler := ledgerconnect.NewLedgerServiceHandler(svc, connect.WithInterceptors(testAuthInterceptor()))

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	client := ledgerconnect.NewLedgerServiceClient(http.DefaultClient, server.URL)

	cleanup := func() {
		server.Close()
		store.Close()
	}
	return client, cleanup
}

func addUser(t *testing.T, client *ledgerconnect.LedgerServiceClient, name string) string {
	t.Helper()
	resp, err := client.AddUser(context.Background(), connect.NewRequest(&api.AddUserRequest{Name: name}))
	if err != nil {
		t.Fatalf("AddUser(%q) failed: %v", name, err)
	}
	return resp.Msg.User.ID
}

func equalExpense(title, total, payer string, participants ...string) *api.CreateExpenseRequest {
	req := &api.CreateExpenseRequest{
		Title:       title,
		TotalAmount: total,
		PaidByID:    payer,
		SplitMethod: string(models.SplitEqually),
	}
	for _, p := range participants {
		req.Participants = append(req.Participants, api.ParticipantInput{UserID: p})
	}
	return req
}

func strPtr(s string) *string { return &s }

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}

func TestUsers_AddListDelete(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	bob := addUser(t, client, "  Bob  ")
	addUser(t, client, "Carol")

	list, err := client.ListUsers(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(list.Msg.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(list.Msg.Users))
	}
	if list.Msg.Users[0].Name != "Bob" {
		t.Errorf("expected trimmed name Bob, got %q", list.Msg.Users[0].Name)
	}

	if _, err := client.DeleteUser(ctx, connect.NewRequest(&api.DeleteUserRequest{UserID: bob})); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	// Deleting again is not an error.
	if _, err := client.DeleteUser(ctx, connect.NewRequest(&api.DeleteUserRequest{UserID: bob})); err != nil {
		t.Fatalf("second DeleteUser failed: %v", err)
	}

	list, err = client.ListUsers(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(list.Msg.Users) != 1 || list.Msg.Users[0].Name != "Carol" {
		t.Errorf("expected only Carol after delete, got %+v", list.Msg.Users)
	}
}

func TestAddUser_InvalidName(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	for _, name := range []string{"", "   "} {
		_, err := client.AddUser(context.Background(), connect.NewRequest(&api.AddUserRequest{Name: name}))
		assertCode(t, err, connect.CodeInvalidArgument)
	}
}

func TestDeleteUser_Primary(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	_, err := client.DeleteUser(context.Background(), connect.NewRequest(&api.DeleteUserRequest{UserID: models.PrimaryUserID}))
	assertCode(t, err, connect.CodeFailedPrecondition)
}

func TestCreateExpense_EqualSplit(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	bob := addUser(t, client, "Bob")
	carol := addUser(t, client, "Carol")

	resp, err := client.CreateExpense(ctx, connect.NewRequest(
		equalExpense("Dinner", "100", models.PrimaryUserID, models.PrimaryUserID, bob, carol)))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	e := resp.Msg.Expense
	if e.TotalAmount != "100.00" {
		t.Errorf("expected total 100.00, got %s", e.TotalAmount)
	}
	if e.Version != 1 {
		t.Errorf("expected version 1, got %d", e.Version)
	}
	want := map[string]struct {
		share   string
		settled bool
	}{
		models.PrimaryUserID: {"33.34", true},
		bob:                  {"33.33", false},
		carol:                {"33.33", false},
	}
	for _, p := range e.Participants {
		w, ok := want[p.UserID]
		if !ok {
			t.Errorf("unexpected participant %s", p.UserID)
			continue
		}
		if p.ShareAmount != w.share || p.IsSettled != w.settled {
			t.Errorf("participant %s: got (%s, %v), want (%s, %v)", p.UserID, p.ShareAmount, p.IsSettled, w.share, w.settled)
		}
	}
	if e.IsFullySettled {
		t.Error("expected expense not to be fully settled")
	}

	got, err := client.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: e.ID}))
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.Msg.Expense.PaidByName != "You" {
		t.Errorf("expected payer name You, got %q", got.Msg.Expense.PaidByName)
	}
	if got.Msg.Expense.Participants[1].UserName != "Bob" {
		t.Errorf("expected participant name Bob, got %q", got.Msg.Expense.Participants[1].UserName)
	}
}

func TestCreateExpense_CustomSplitMismatch(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	bob := addUser(t, client, "Bob")
	req := &api.CreateExpenseRequest{
		Title:       "Groceries",
		TotalAmount: "100",
		PaidByID:    models.PrimaryUserID,
		SplitMethod: string(models.SplitCustom),
		Participants: []api.ParticipantInput{
			{UserID: models.PrimaryUserID, Share: strPtr("40")},
			{UserID: bob, Share: strPtr("50")},
		},
	}

	_, err := client.CreateExpense(context.Background(), connect.NewRequest(req))
	assertCode(t, err, connect.CodeInvalidArgument)

	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected *connect.Error, got %T", err)
	}
	if got := connectErr.Meta().Get(ShareRemainderHeader); got != "10.00" {
		t.Errorf("expected remainder 10.00, got %q", got)
	}
}

func TestCreateExpense_Invalid(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	bob := addUser(t, client, "Bob")

	tests := []struct {
		name string
		req  *api.CreateExpenseRequest
	}{
		{"missing title", equalExpense("", "10", bob, bob)},
		{"non-numeric total", equalExpense("Taxi", "ten", bob, bob)},
		{"zero total", equalExpense("Taxi", "0", bob, bob)},
		{"negative total", equalExpense("Taxi", "-5", bob, bob)},
		{"sub-cent total", equalExpense("Taxi", "0.004", bob, bob)},
		{"no participants", equalExpense("Taxi", "10", bob)},
		{"unknown payer", equalExpense("Taxi", "10", "nobody", bob)},
		{"unknown participant", equalExpense("Taxi", "10", bob, bob, "nobody")},
		{"duplicate participant", equalExpense("Taxi", "10", bob, bob, bob)},
		{"unknown method", &api.CreateExpenseRequest{
			Title: "Taxi", TotalAmount: "10", PaidByID: bob, SplitMethod: "by-weight",
			Participants: []api.ParticipantInput{{UserID: bob}},
		}},
		{"custom without share", &api.CreateExpenseRequest{
			Title: "Taxi", TotalAmount: "10", PaidByID: bob, SplitMethod: string(models.SplitCustom),
			Participants: []api.ParticipantInput{{UserID: bob}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateExpense(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestGetExpense_NotFound(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	_, err := client.GetExpense(context.Background(), connect.NewRequest(&api.GetExpenseRequest{ExpenseID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestSettleParticipantShare(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	bob := addUser(t, client, "Bob")
	created, err := client.CreateExpense(ctx, connect.NewRequest(
		equalExpense("Cab", "30", models.PrimaryUserID, models.PrimaryUserID, bob)))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	id := created.Msg.Expense.ID

	resp, err := client.SettleParticipantShare(ctx, connect.NewRequest(&api.SettleParticipantShareRequest{ExpenseID: id, UserID: bob}))
	if err != nil {
		t.Fatalf("SettleParticipantShare failed: %v", err)
	}
	if !resp.Msg.Expense.IsFullySettled {
		t.Error("expected expense to be fully settled")
	}
	if resp.Msg.Expense.Version != 2 {
		t.Errorf("expected version 2, got %d", resp.Msg.Expense.Version)
	}

	// Settling twice returns the same record without a new version.
	again, err := client.SettleParticipantShare(ctx, connect.NewRequest(&api.SettleParticipantShareRequest{ExpenseID: id, UserID: bob}))
	if err != nil {
		t.Fatalf("second SettleParticipantShare failed: %v", err)
	}
	if again.Msg.Expense.Version != 2 {
		t.Errorf("expected version to stay 2, got %d", again.Msg.Expense.Version)
	}

	_, err = client.SettleParticipantShare(ctx, connect.NewRequest(&api.SettleParticipantShareRequest{ExpenseID: id, UserID: "stranger"}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = client.SettleParticipantShare(ctx, connect.NewRequest(&api.SettleParticipantShareRequest{ExpenseID: "missing", UserID: bob}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestListExpenses_OrderAndLimit(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"Old", "Newest", "Middle"} {
		req := equalExpense(title, "10", models.PrimaryUserID, models.PrimaryUserID)
		date := base.AddDate(0, 0, []int{0, 2, 1}[i])
		req.Date = &date
		if _, err := client.CreateExpense(ctx, connect.NewRequest(req)); err != nil {
			t.Fatalf("CreateExpense(%s) failed: %v", title, err)
		}
	}

	resp, err := client.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	var titles []string
	for _, e := range resp.Msg.Expenses {
		titles = append(titles, e.Title)
	}
	if len(titles) != 3 || titles[0] != "Newest" || titles[1] != "Middle" || titles[2] != "Old" {
		t.Errorf("expected [Newest Middle Old], got %v", titles)
	}

	limited, err := client.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{Limit: 2}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(limited.Msg.Expenses) != 2 {
		t.Errorf("expected 2 expenses, got %d", len(limited.Msg.Expenses))
	}
}

func TestDeleteExpense(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	created, err := client.CreateExpense(ctx, connect.NewRequest(
		equalExpense("Snacks", "5", models.PrimaryUserID, models.PrimaryUserID)))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	id := created.Msg.Expense.ID

	for i := 0; i < 2; i++ {
		resp, err := client.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseID: id}))
		if err != nil {
			t.Fatalf("DeleteExpense #%d failed: %v", i+1, err)
		}
		if !resp.Msg.Success {
			t.Errorf("DeleteExpense #%d: expected success", i+1)
		}
	}

	_, err = client.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: id}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestBalancesAndSimplify(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	bob := addUser(t, client, "Bob")
	carol := addUser(t, client, "Carol")

	// Bob owes primary 30, Carol owes Bob 30: simplifies to Carol -> primary.
	if _, err := client.CreateExpense(ctx, connect.NewRequest(
		equalExpense("Tickets", "60", models.PrimaryUserID, models.PrimaryUserID, bob))); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if _, err := client.CreateExpense(ctx, connect.NewRequest(
		equalExpense("Lunch", "60", bob, bob, carol))); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	balances, err := client.ResolveBalances(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		t.Fatalf("ResolveBalances failed: %v", err)
	}
	got := balances.Msg.Balances
	if len(got) != 3 {
		t.Fatalf("expected 3 balances, got %d", len(got))
	}
	if got[0].UserID != models.PrimaryUserID || got[0].UserName != "You" {
		t.Errorf("expected primary first, got %s (%s)", got[0].UserID, got[0].UserName)
	}
	wantNet := map[string]string{models.PrimaryUserID: "30.00", bob: "0.00", carol: "-30.00"}
	for _, b := range got {
		if b.NetAmount != wantNet[b.UserID] {
			t.Errorf("%s: expected net %s, got %s", b.UserName, wantNet[b.UserID], b.NetAmount)
		}
	}
	if len(got[1].Owes) != 1 || got[1].Owes[0].UserID != models.PrimaryUserID || got[1].Owes[0].Amount != "30.00" {
		t.Errorf("expected Bob to owe primary 30.00, got %+v", got[1].Owes)
	}
	if len(got[1].OwedBy) != 1 || got[1].OwedBy[0].UserID != carol {
		t.Errorf("expected Bob to be owed by Carol, got %+v", got[1].OwedBy)
	}

	simplified, err := client.SimplifyDebts(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		t.Fatalf("SimplifyDebts failed: %v", err)
	}
	transfers := simplified.Msg.Transfers
	if len(transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %+v", transfers)
	}
	if transfers[0].FromUserID != carol || transfers[0].ToUserID != models.PrimaryUserID || transfers[0].Amount != "30.00" {
		t.Errorf("expected Carol -> primary 30.00, got %+v", transfers[0])
	}
}
