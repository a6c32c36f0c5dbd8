package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/memory"
)

// stepClock advances one second on every reading so records get distinct,
// ordered timestamps.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Type
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store     *memory.Store
	directory *Directory
	ledger    *Ledger
	resolver  *Resolver
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	clock := &stepClock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	pub := &recordingPublisher{}
	dir := NewDirectory(store, "You", clock.Now)
	return &fixture{
		store:     store,
		directory: dir,
		ledger:    NewLedger(store, dir, pub, clock.Now),
		resolver:  NewResolver(store, dir),
		publisher: pub,
	}
}

func (f *fixture) addUser(t *testing.T, name string) string {
	t.Helper()
	u, err := f.directory.AddUser(context.Background(), name)
	require.NoError(t, err)
	return u.ID
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func equalInput(title, total, payer string, participants ...string) CreateExpenseInput {
	in := CreateExpenseInput{
		Title:       title,
		TotalAmount: dec(total),
		PaidByID:    payer,
		SplitMethod: models.SplitEqually,
	}
	for _, id := range participants {
		in.Participants = append(in.Participants, ParticipantInput{UserID: id})
	}
	return in
}

func balanceOf(t *testing.T, balances []models.UserBalance, id string) models.UserBalance {
	t.Helper()
	for _, b := range balances {
		if b.UserID == id {
			return b
		}
	}
	t.Fatalf("no balance for %s", id)
	return models.UserBalance{}
}
