package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const maxNameLength = 100

// Directory manages the users that can pay for or take part in expenses.
// The primary account holder is not stored but always resolves.
type Directory struct {
	users       storage.UserRepository
	primaryName string
	now         Clock
}

// NewDirectory creates a Directory over users. primaryName is the display
// name reported for the primary account holder. A nil clock means SystemClock.
func NewDirectory(users storage.UserRepository, primaryName string, clock Clock) *Directory {
	if clock == nil {
		clock = SystemClock
	}
	return &Directory{users: users, primaryName: primaryName, now: clock}
}

// Primary returns the synthetic record for the primary account holder.
func (d *Directory) Primary() models.User {
	return models.User{ID: models.PrimaryUserID, Name: d.primaryName}
}

// AddUser creates a user with a fresh ID. The name is trimmed and must be
// 1 to 100 characters long.
func (d *Directory) AddUser(ctx context.Context, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxNameLength {
		return nil, ErrInvalidName
	}

	now := d.now()
	user := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.users.PutUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to add user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user from the directory. Removing an unknown user is
// a no-op. Expenses that reference the user are kept but become
// unresolvable, so reads skip them.
func (d *Directory) DeleteUser(ctx context.Context, id string) error {
	if id == models.PrimaryUserID {
		return ErrReservedUser
	}
	if err := d.users.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ListUsers returns the stored users ordered by creation time, then name.
// The primary account holder is not included.
func (d *Directory) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := d.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Resolve looks up a single user. Unknown ids yield *UnknownUserError.
func (d *Directory) Resolve(ctx context.Context, id string) (*models.User, error) {
	if id == models.PrimaryUserID {
		p := d.Primary()
		return &p, nil
	}
	user, err := d.users.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &UnknownUserError{UserID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %s: %w", id, err)
	}
	return user, nil
}

// snapshot is a point-in-time view of every resolvable user, used for bulk
// reads so each record does not cost a lookup per user.
type snapshot struct {
	ordered []models.User
	byID    map[string]models.User
}

func (d *Directory) snapshot(ctx context.Context) (*snapshot, error) {
	users, err := d.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	s := &snapshot{
		ordered: make([]models.User, 0, len(users)+1),
		byID:    make(map[string]models.User, len(users)+1),
	}
	s.add(d.Primary())
	for _, u := range users {
		s.add(*u)
	}
	return s, nil
}

func (s *snapshot) add(u models.User) {
	s.ordered = append(s.ordered, u)
	s.byID[u.ID] = u
}

// hydrate resolves the payer and every participant of e. It returns the id
// of the first user that cannot be resolved when hydration fails.
func (s *snapshot) hydrate(e *models.Expense) (*models.HydratedExpense, string) {
	payer, ok := s.byID[e.PaidByID]
	if !ok {
		return nil, e.PaidByID
	}
	h := &models.HydratedExpense{
		Expense:      *e,
		PaidBy:       payer,
		Participants: make([]models.HydratedParticipant, len(e.Participants)),
	}
	for i, p := range e.Participants {
		u, ok := s.byID[p.UserID]
		if !ok {
			return nil, p.UserID
		}
		h.Participants[i] = models.HydratedParticipant{Participant: p, User: u}
	}
	return h, ""
}
