package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MinorUnitPlaces is the number of fractional digits of the currency.
const MinorUnitPlaces = 2

// Tolerance is the largest accepted difference between the sum of shares
// and the expense total: one minor currency unit.
var Tolerance = decimal.New(1, -MinorUnitPlaces)

var (
	ErrEmptyParticipants    = errors.New("at least one participant is required")
	ErrNonPositiveTotal     = errors.New("total amount must be positive")
	ErrShareMismatch        = errors.New("shares do not sum to the total amount")
	ErrDuplicateParticipant = errors.New("participant listed more than once")
	ErrUnknownSplitMethod   = errors.New("unknown split method")
	ErrMissingShare         = errors.New("custom split requires a share for every participant")
	ErrNegativeShare        = errors.New("share amount cannot be negative")
)

// ShareMismatchError reports a custom split whose shares do not add up to
// the total. Remainder is Total - Sum: positive when shares fall short.
type ShareMismatchError struct {
	Total     decimal.Decimal
	Sum       decimal.Decimal
	Remainder decimal.Decimal
}

func (e *ShareMismatchError) Error() string {
	return fmt.Sprintf("%s: total %s, shares sum to %s, remainder %s",
		ErrShareMismatch, e.Total.StringFixed(MinorUnitPlaces),
		e.Sum.StringFixed(MinorUnitPlaces), e.Remainder.StringFixed(MinorUnitPlaces))
}

// Is makes errors.Is(err, ErrShareMismatch) match.
func (e *ShareMismatchError) Is(target error) bool {
	return target == ErrShareMismatch
}

// Share is one participant's computed portion of a total.
type Share struct {
	UserID string
	Amount decimal.Decimal
}

// RoundMoney rounds d to the currency's minor unit.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnitPlaces)
}

// CalculateShares splits total among participantIDs according to method.
//
// For an equal split every participant receives total/n rounded to the
// minor unit, except one designated participant who absorbs the rounding
// remainder so the shares sum exactly to total. The designated participant
// is payerID when it is among the participants, otherwise the first one.
//
// For a custom split, custom must carry a share for every participant and
// the shares must sum to total within Tolerance.
//
// Shares are returned in participant order.
func CalculateShares(total decimal.Decimal, method models.SplitMethod, participantIDs []string, payerID string, custom map[string]decimal.Decimal) ([]Share, error) {
	if len(participantIDs) == 0 {
		return nil, ErrEmptyParticipants
	}
	// Round first: a sub-cent total would otherwise be stored as zero.
	total = RoundMoney(total)
	if !total.IsPositive() {
		return nil, ErrNonPositiveTotal
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitMethod, method)
	}
	seen := make(map[string]struct{}, len(participantIDs))
	for _, id := range participantIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, id)
		}
		seen[id] = struct{}{}
	}

	if method == models.SplitCustom {
		return customShares(total, participantIDs, custom)
	}
	return equalShares(total, participantIDs, payerID), nil
}

func equalShares(total decimal.Decimal, participantIDs []string, payerID string) []Share {
	n := int64(len(participantIDs))
	base := total.DivRound(decimal.NewFromInt(n), MinorUnitPlaces)

	absorber := 0
	for i, id := range participantIDs {
		if id == payerID {
			absorber = i
			break
		}
	}

	shares := make([]Share, len(participantIDs))
	for i, id := range participantIDs {
		shares[i] = Share{UserID: id, Amount: base}
	}
	// Whatever n*base misses (or overshoots) lands on the absorber.
	remainder := total.Sub(base.Mul(decimal.NewFromInt(n)))
	shares[absorber].Amount = base.Add(remainder)
	return shares
}

func customShares(total decimal.Decimal, participantIDs []string, custom map[string]decimal.Decimal) ([]Share, error) {
	shares := make([]Share, len(participantIDs))
	sum := decimal.Zero
	for i, id := range participantIDs {
		amount, ok := custom[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingShare, id)
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("%w: %s", ErrNegativeShare, id)
		}
		amount = RoundMoney(amount)
		shares[i] = Share{UserID: id, Amount: amount}
		sum = sum.Add(amount)
	}

	remainder := total.Sub(sum)
	if remainder.Abs().GreaterThan(Tolerance) {
		return nil, &ShareMismatchError{Total: total, Sum: sum, Remainder: remainder}
	}
	return shares, nil
}

// SumShares returns the sum of all share amounts.
func SumShares(shares []Share) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	return sum
}
