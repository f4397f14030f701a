// Package ticket turns an issued booking into its shareable forms: the
// JSON payload, a QR image and a printable receipt.
package ticket

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"
	"gosterim-cli/model"
	"gosterim-cli/store"
)

const qrImageSize = 256

// ErrNotIssued is returned for bookings without a settlement.
var ErrNotIssued = errors.New("ticket not issued")

// Data is the content encoded in the ticket QR.
type Data struct {
	Movie         string      `json:"movie"`
	Session       string      `json:"session"`
	Seats         string      `json:"seats"`
	Total         json.Number `json:"total"`
	TransactionID string      `json:"transactionId"`
}

// FromBooking extracts the ticket data of an issued booking.
func FromBooking(b model.Booking) (Data, error) {
	if b.Movie == nil || b.Settlement == nil || b.Settlement.IsZero() {
		return Data{}, ErrNotIssued
	}
	return Data{
		Movie:         b.Movie.Title,
		Session:       b.Movie.SessionTime,
		Seats:         strings.Join(b.SeatIds(), ", "),
		Total:         json.Number(b.TotalPrice.String()),
		TransactionID: b.Settlement.TransactionId,
	}, nil
}

// FromRecent rebuilds ticket data from a history entry.
func FromRecent(r store.RecentTicket) (Data, error) {
	if strings.TrimSpace(r.TransactionID) == "" {
		return Data{}, ErrNotIssued
	}
	total := r.Total
	if total == "" {
		total = "0"
	}
	return Data{
		Movie:         r.Movie,
		Session:       r.Session,
		Seats:         strings.Join(r.Seats, ", "),
		Total:         json.Number(total),
		TransactionID: r.TransactionID,
	}, nil
}

// Payload is the JSON text encoded in the QR image.
func (d Data) Payload() ([]byte, error) {
	return json.Marshal(d)
}

// Recent summarizes an issued booking for the ticket history.
func Recent(b model.Booking) (store.RecentTicket, error) {
	if b.Movie == nil || b.Settlement == nil || b.Settlement.IsZero() {
		return store.RecentTicket{}, ErrNotIssued
	}
	return store.RecentTicket{
		TransactionID: b.Settlement.TransactionId,
		Movie:         b.Movie.Title,
		Session:       b.Movie.SessionTime,
		Seats:         b.SeatIds(),
		Total:         b.TotalPrice.StringFixed(2),
		CardSuffix:    b.Settlement.CardSuffix,
		IssuedAt:      b.Settlement.Timestamp,
	}, nil
}

// WritePNG encodes the ticket payload as a QR image in dir and returns the
// file path. An empty dir uses the default ticket directory.
func WritePNG(dir string, d Data) (string, error) {
	payload, err := d.Payload()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(dir) == "" {
		dir, err = store.TicketDir()
		if err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("ticket-%s.png", d.TransactionID))
	if err := qrcode.WriteFile(string(payload), qrcode.Medium, qrImageSize, path); err != nil {
		return "", fmt.Errorf("write ticket image: %w", err)
	}
	return path, nil
}

// DisplayTime renders a session time the way the ticket shows it,
// e.g. "Today, 1545".
func DisplayTime(sessionTime string) string {
	return "Today, " + strings.Replace(sessionTime, ":", "", 1)
}
