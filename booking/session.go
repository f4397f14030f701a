package booking

import (
	"github.com/shopspring/decimal"
	"gosterim-cli/model"
)

// Stage is the active phase of a booking session.
type Stage int

const (
	StageSelectingMovie Stage = iota
	StageSelectingSeats
	StagePaying
	StageTicketIssued
)

func (s Stage) String() string {
	switch s {
	case StageSelectingMovie:
		return "selecting movie"
	case StageSelectingSeats:
		return "selecting seats"
	case StagePaying:
		return "paying"
	case StageTicketIssued:
		return "ticket issued"
	default:
		return "unknown stage"
	}
}

// Session is one user's booking flow. Every method returns a new Session and
// leaves the receiver untouched, so a refused transition needs no rollback.
type Session struct {
	stage      Stage
	booking    model.Booking
	processing bool
}

// NewSession starts a session in StageSelectingMovie with an empty booking.
func NewSession() Session {
	return Session{stage: StageSelectingMovie, booking: emptyBooking()}
}

func emptyBooking() model.Booking {
	return model.Booking{Seats: []model.SelectedSeat{}, TotalPrice: decimal.Zero}
}

func (s Session) Stage() Stage { return s.stage }

// Booking returns a copy of the accumulated booking record.
func (s Session) Booking() model.Booking { return s.booking.Clone() }

// Processing reports whether a payment is outstanding.
func (s Session) Processing() bool { return s.processing }

// SelectShowtime records the chosen showtime and enters StageSelectingSeats.
func (s Session) SelectShowtime(showtime model.Showtime) (Session, error) {
	if s.stage != StageSelectingMovie {
		return s, invalidTransition(s.stage, "a showtime can only be chosen while selecting a movie")
	}
	if showtime.Price.IsNegative() {
		return s, invalidTransition(s.stage, "showtime price is negative")
	}
	next := s.withBooking()
	movie := showtime
	next.booking.Movie = &movie
	next.booking.Seats = []model.SelectedSeat{}
	next.booking.TotalPrice = decimal.Zero
	next.booking.Settlement = nil
	next.stage = StageSelectingSeats
	return next, nil
}

// CommitSeats stores the selection and its total and enters StagePaying. The
// total must equal the sum of the seat prices.
func (s Session) CommitSeats(seats []model.SelectedSeat, total decimal.Decimal) (Session, error) {
	if s.stage != StageSelectingSeats {
		return s, invalidTransition(s.stage, "seats can only be committed while selecting seats")
	}
	if s.booking.Movie == nil {
		return s, invalidTransition(s.stage, "no movie selected")
	}
	if len(seats) == 0 {
		return s, ErrEmptySelection
	}
	seen := make(map[string]bool, len(seats))
	sum := decimal.Zero
	for _, seat := range seats {
		if seat.Id == "" {
			return s, invalidTransition(s.stage, "seat without identifier")
		}
		if seen[seat.Id] {
			return s, invalidTransition(s.stage, "seat %s selected twice", seat.Id)
		}
		seen[seat.Id] = true
		sum = sum.Add(seat.Price)
	}
	if !sum.Equal(total) {
		return s, invalidTransition(s.stage, "total %s does not match seat prices %s", total.StringFixed(2), sum.StringFixed(2))
	}

	next := s.withBooking()
	next.booking.Seats = append([]model.SelectedSeat(nil), seats...)
	next.booking.TotalPrice = sum
	next.stage = StagePaying
	return next, nil
}

// BeginPayment marks a payment as outstanding. Until it is settled or failed
// every other mutation is refused with ErrPaymentPending.
func (s Session) BeginPayment() (Session, error) {
	if s.stage != StagePaying {
		return s, invalidTransition(s.stage, "payment can only start while paying")
	}
	if s.processing {
		return s, ErrPaymentPending
	}
	if len(s.booking.Seats) == 0 {
		return s, ErrEmptySelection
	}
	next := s
	next.processing = true
	return next, nil
}

// CompletePayment stores the settlement of the outstanding payment and issues
// the ticket.
func (s Session) CompletePayment(settlement model.Settlement) (Session, error) {
	if s.stage != StagePaying {
		return s, invalidTransition(s.stage, "no payment to complete")
	}
	if !s.processing {
		return s, invalidTransition(s.stage, "no payment outstanding")
	}
	if settlement.IsZero() {
		return s, invalidTransition(s.stage, "settlement is incomplete")
	}
	next := s.withBooking()
	next.booking.Settlement = &settlement
	next.processing = false
	next.stage = StageTicketIssued
	return next, nil
}

// FailPayment clears the processing flag after a rejected payment. The stage
// and booking are unchanged and the returned error is a *SettlementError.
// Without an outstanding payment it is refused like any other transition.
func (s Session) FailPayment(cause error) (Session, error) {
	if s.stage != StagePaying || !s.processing {
		return s, invalidTransition(s.stage, "no payment outstanding")
	}
	next := s
	next.processing = false
	return next, &SettlementError{Err: cause}
}

// Back returns to the previous stage and discards data that belongs to the
// stages after it.
func (s Session) Back() (Session, error) {
	if s.processing {
		return s, ErrPaymentPending
	}
	next := s.withBooking()
	switch s.stage {
	case StageSelectingSeats:
		next.booking = emptyBooking()
		next.stage = StageSelectingMovie
	case StagePaying:
		next.booking.Seats = []model.SelectedSeat{}
		next.booking.TotalPrice = decimal.Zero
		next.booking.Settlement = nil
		next.stage = StageSelectingSeats
	default:
		return s, invalidTransition(s.stage, "no previous stage")
	}
	return next, nil
}

// Reset discards the issued booking and starts over.
func (s Session) Reset() (Session, error) {
	if s.processing {
		return s, ErrPaymentPending
	}
	if s.stage != StageTicketIssued {
		return s, invalidTransition(s.stage, "reset is only available after the ticket is issued")
	}
	return NewSession(), nil
}

func (s Session) withBooking() Session {
	next := s
	next.booking = s.booking.Clone()
	return next
}
