package escrow

import (
	"errors"
	"fmt"

	"github.com/mmynk/escrowd/internal/authority"
	"github.com/mmynk/escrowd/internal/ledger"
	"github.com/mmynk/escrowd/internal/storage"
)

// Kind classifies an instruction failure.
type Kind uint8

const (
	KindInternal Kind = iota
	KindAuthorization
	KindValidation
	KindState
	KindFunds
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindFunds:
		return "funds"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

var (
	// Authorization
	ErrInvalidMerchant = errors.New("the merchant account provided does not match the payment session's merchant ID")
	ErrUnauthorized    = ledger.ErrUnauthorized
	ErrCustodyAccount  = errors.New("custody accounts are funded only by deposit")
	ErrDerivedOwner    = errors.New("accounts of program-derived owners are opened only by the engine")

	// Validation
	ErrInvalidMint     = ledger.ErrInvalidMint
	ErrInvalidAmount   = errors.New("amount must be greater than zero and fit in a signed 64-bit integer")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidArgument = errors.New("invalid argument")

	// State
	ErrInvalidPaymentSessionState = errors.New("the payment session is not in a state that allows this operation")
	ErrPayoutAlreadyRecorded      = errors.New("an external payout is already recorded for this session")

	// Funds
	ErrInsufficientEscrowFunds = ledger.ErrInsufficientFunds

	// Not found / conflict
	ErrSessionNotFound = errors.New("payment session not found")
	ErrAccountNotFound = errors.New("token account not found")
	ErrSessionExists   = errors.New("payment session already exists")
	ErrAccountExists   = errors.New("token account already exists")
)

// Error is returned by every engine operation that fails.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindInternal if err did not come from the engine.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// fail wraps err with its operation and classification.
func fail(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Op: op, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidMerchant),
		errors.Is(err, ledger.ErrUnauthorized),
		errors.Is(err, ErrCustodyAccount),
		errors.Is(err, ErrDerivedOwner):
		return KindAuthorization
	case errors.Is(err, ledger.ErrInvalidMint),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSameAccount),
		errors.Is(err, ErrFieldTooLong),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, authority.ErrZeroID),
		errors.Is(err, authority.ErrZeroProgram):
		return KindValidation
	case errors.Is(err, ErrInvalidPaymentSessionState), errors.Is(err, ErrPayoutAlreadyRecorded):
		return KindState
	case errors.Is(err, ledger.ErrInsufficientFunds), errors.Is(err, ledger.ErrBalanceOverflow):
		return KindFunds
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrAccountNotFound), errors.Is(err, storage.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrSessionExists), errors.Is(err, ErrAccountExists), errors.Is(err, storage.ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}
