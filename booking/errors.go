package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when a stage change is refused. The
	// session is left exactly as it was.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrPaymentPending is returned for any booking mutation attempted while a
	// payment is outstanding.
	ErrPaymentPending = fmt.Errorf("%w: payment in progress", ErrInvalidTransition)

	// ErrEmptySelection is returned when seats are committed with none chosen.
	ErrEmptySelection = fmt.Errorf("%w: no seats selected", ErrInvalidTransition)

	// ErrUnknownShowtime is returned when a film or session is not in the
	// catalog.
	ErrUnknownShowtime = errors.New("unknown showtime")
)

// SettlementError reports a payment the processor did not settle. The session
// stays in StagePaying so the user can retry.
type SettlementError struct {
	Err error
}

func (e *SettlementError) Error() string {
	if e == nil || e.Err == nil {
		return "settlement failed"
	}
	return fmt.Sprintf("settlement failed: %s", e.Err.Error())
}

func (e *SettlementError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsSettlementFailure reports whether err came from a failed payment.
func IsSettlementFailure(err error) bool {
	var settlementErr *SettlementError
	return errors.As(err, &settlementErr)
}

func invalidTransition(from Stage, format string, args ...any) error {
	return fmt.Errorf("%w from %s: %s", ErrInvalidTransition, from, fmt.Sprintf(format, args...))
}
