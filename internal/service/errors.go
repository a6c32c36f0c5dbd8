package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/go-playground/validator"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
)

// ShareRemainderHeader carries Total - Sum(shares) on a rejected custom split.
const ShareRemainderHeader = "Share-Remainder"

var invalidArgument = []error{
	calculator.ErrEmptyParticipants,
	calculator.ErrNonPositiveTotal,
	calculator.ErrShareMismatch,
	calculator.ErrDuplicateParticipant,
	calculator.ErrUnknownSplitMethod,
	calculator.ErrMissingShare,
	calculator.ErrNegativeShare,
	ledger.ErrUnknownUser,
	ledger.ErrInvalidName,
	ledger.ErrInvalidTitle,
}

// toConnectError maps domain errors onto Connect codes. Anything unknown is
// logged and reported as Internal.
func toConnectError(op string, err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	for _, target := range invalidArgument {
		if errors.Is(err, target) {
			connectErr := connect.NewError(connect.CodeInvalidArgument, err)
			var mismatch *calculator.ShareMismatchError
			if errors.As(err, &mismatch) {
				connectErr.Meta().Set(ShareRemainderHeader, money(mismatch.Remainder))
			}
			return connectErr
		}
	}

	switch {
	case errors.Is(err, ledger.ErrExpenseNotFound), errors.Is(err, ledger.ErrParticipantNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ledger.ErrConcurrentModification):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, ledger.ErrReservedUser):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	}

	slog.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, err)
}
