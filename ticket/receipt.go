package ticket

import (
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"gosterim-cli/model"
	"gosterim-cli/store"
)

// Receipt prints an issued booking as a table.
func Receipt(w io.Writer, b model.Booking) error {
	if b.Movie == nil || b.Settlement == nil || b.Settlement.IsZero() {
		return ErrNotIssued
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Gosterim ticket")
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"Movie", b.Movie.Title},
		{"Session", DisplayTime(b.Movie.SessionTime)},
		{"Seats", strings.Join(b.SeatIds(), ", ")},
		{"Total", "$" + b.TotalPrice.StringFixed(2)},
		{"Card", "**** " + b.Settlement.CardSuffix},
		{"Transaction", b.Settlement.TransactionId},
		{"Paid at", b.Settlement.Timestamp.Format(time.RFC3339)},
	})
	t.Render()
	return nil
}

// History prints recent tickets, newest first.
func History(w io.Writer, tickets []store.RecentTicket) {
	rowConfigAutoMerge := table.RowConfig{AutoMerge: true}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Issued", "Movie", "Session", "Seats", "Total", "Transaction"}, rowConfigAutoMerge)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, AutoMerge: true, WidthMax: 24},
	})
	for _, r := range tickets {
		t.AppendRow(table.Row{
			r.IssuedAt.Local().Format(time.DateTime),
			r.Movie,
			r.Session,
			strings.Join(r.Seats, ", "),
			"$" + r.Total,
			r.TransactionID,
		}, rowConfigAutoMerge)
	}
	t.Render()
}
