package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Showtime is the canonical (film, session) selection handed to the booking
// session. It is immutable once selected.
type Showtime struct {
	FilmId      int             `json:"filmId"`
	Title       string          `json:"title"`
	Poster      string          `json:"poster"`
	Genre       string          `json:"genre,omitempty"`
	Rating      string          `json:"rating,omitempty"`
	SessionId   int             `json:"sessionId"`
	SessionTime string          `json:"sessionTime"`
	Price       decimal.Decimal `json:"price"`
}

// Seat is one position in the seat grid. The flags are fixed when the grid is
// generated; selection is held separately.
type Seat struct {
	Id          string          `json:"id"`
	Row         string          `json:"row"`
	Number      int             `json:"number"`
	Price       decimal.Decimal `json:"price"`
	Available   bool            `json:"isAvailable"`
	Recommended bool            `json:"isRecommended"`
}

// Selected projects a seat into its selection record.
func (s Seat) Selected() SelectedSeat {
	return SelectedSeat{Id: s.Id, Row: s.Row, Number: s.Number, Price: s.Price}
}

type SelectedSeat struct {
	Id     string          `json:"id"`
	Row    string          `json:"row"`
	Number int             `json:"number"`
	Price  decimal.Decimal `json:"price"`
}

// Settlement is the result of a successful payment.
type Settlement struct {
	CardSuffix    string    `json:"cardNumber"`
	TransactionId string    `json:"transactionId"`
	Timestamp     time.Time `json:"timestamp"`
}

// IsZero reports whether any settlement field is missing.
func (s Settlement) IsZero() bool {
	return s.CardSuffix == "" || s.TransactionId == "" || s.Timestamp.IsZero()
}

// Booking accumulates the user's choices across stages.
type Booking struct {
	Movie      *Showtime       `json:"movie"`
	Seats      []SelectedSeat  `json:"seats"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Settlement *Settlement     `json:"paymentData"`
}

// SeatIds returns the identifiers of the booked seats in selection order.
func (b Booking) SeatIds() []string {
	ids := make([]string, 0, len(b.Seats))
	for _, seat := range b.Seats {
		ids = append(ids, seat.Id)
	}
	return ids
}

// Clone returns a copy that shares no mutable state with b.
func (b Booking) Clone() Booking {
	out := Booking{TotalPrice: b.TotalPrice}
	if b.Movie != nil {
		movie := *b.Movie
		out.Movie = &movie
	}
	if b.Seats != nil {
		out.Seats = append([]SelectedSeat(nil), b.Seats...)
	}
	if b.Settlement != nil {
		settlement := *b.Settlement
		out.Settlement = &settlement
	}
	return out
}
