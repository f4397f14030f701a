package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gosterim-cli/booking"
	"gosterim-cli/ticket"
)

var (
	seatStyleAvailable   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	seatStyleRecommended = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	seatStyleSelected    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Bold(true)
	seatStyleUnavailable = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	seatStyleCursor      = lipgloss.NewStyle().Reverse(true)
	panelStyle           = lipgloss.NewStyle().Padding(1, 3).Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("63"))
	labelStyle           = lipgloss.NewStyle().Faint(true).Width(12)
)

func (m appModel) filmPanel() string {
	poster := m.poster.Current()
	if poster == "" {
		poster = booking.FallbackPoster
	}
	if poster == booking.FallbackPoster {
		poster += " " + hint("(fallback)")
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(m.film.Title),
		detailLine("Genre", m.film.Genre),
		detailLine("Rating", m.film.Rating),
		detailLine("Poster", poster),
	}
	return strings.Join(lines, "\n")
}

func detailLine(label string, value string) string {
	if value == "" {
		value = "-"
	}
	return labelStyle.Render(label) + value
}

func (m appModel) cursorSeatID() string {
	layout := m.seats.Layout()
	if len(layout.Rows) == 0 {
		return ""
	}
	return booking.SeatID(layout.Rows[m.cursorRow], m.cursorCol+1)
}

func (m *appModel) moveCursor(key string) {
	layout := m.seats.Layout()
	switch key {
	case "up", "k":
		m.cursorRow--
	case "down", "j":
		m.cursorRow++
	case "left", "h":
		m.cursorCol--
	case "right", "l":
		m.cursorCol++
	}
	m.cursorRow = clamp(m.cursorRow, 0, len(layout.Rows)-1)
	m.cursorCol = clamp(m.cursorCol, 0, layout.SeatsPerRow-1)
}

func clamp(v int, lo int, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

func (m appModel) renderSeatMap() string {
	if m.seats == nil {
		return "No seat map data."
	}
	layout := m.seats.Layout()
	cellWidth := 2
	if m.showSeatNumbers {
		cellWidth = 3
	}
	rowWidth := 2
	gridWidth := layout.SeatsPerRow*(cellWidth+1) - 1

	var b strings.Builder
	screenStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("214"))
	screenBorderStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Background(lipgloss.Color("236"))
	screenBar := screenBarBlock(gridWidth, "SCREEN")

	b.WriteString(strings.Repeat(" ", rowWidth+1))
	b.WriteString(screenBorderStyle.Render(screenBar.top))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", rowWidth+1))
	b.WriteString(screenStyle.Render(screenBar.mid))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", rowWidth+1))
	b.WriteString(screenBorderStyle.Render(screenBar.bot))
	b.WriteString("\n\n")

	cursor := m.cursorSeatID()
	seats := m.seats.Seats()
	for r, row := range layout.Rows {
		b.WriteString(fmt.Sprintf("%*s ", rowWidth, row))
		for c := 0; c < layout.SeatsPerRow; c++ {
			seat := seats[r*layout.SeatsPerRow+c]
			status := m.seats.Status(seat)
			text := seatToken(status)
			if m.showSeatNumbers && status != booking.SeatUnavailable {
				text = fmt.Sprintf("%d", seat.Number)
			}
			rendered := padCell(text, cellWidth)
			switch status {
			case booking.SeatSelected:
				rendered = seatStyleSelected.Render(rendered)
			case booking.SeatRecommended:
				rendered = seatStyleRecommended.Render(rendered)
			case booking.SeatUnavailable:
				rendered = seatStyleUnavailable.Render(rendered)
			default:
				rendered = seatStyleAvailable.Render(rendered)
			}
			if seat.Id == cursor {
				rendered = seatStyleCursor.Render(rendered)
			}
			b.WriteString(rendered)
			if c < layout.SeatsPerRow-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString(fmt.Sprintf(" %-*s\n", rowWidth, row))
	}

	legend := "Legend: [] available • ** recommended • ## selected • XX sold"
	filter := "off"
	if m.seats.RecommendedActive() {
		filter = "on"
	}
	selected := m.seats.Selection()
	ids := make([]string, 0, len(selected))
	for _, seat := range selected {
		ids = append(ids, seat.Id)
	}
	summary := fmt.Sprintf("Seat %s • Recommended %s • Selected: %s • Total: %s", cursor, filter, joinOrDash(ids), formatPrice(m.seats.Total()))
	return b.String() + "\n" + hint(legend) + "\n" + summary
}

func seatToken(status booking.SeatStatus) string {
	switch status {
	case booking.SeatSelected:
		return "##"
	case booking.SeatRecommended:
		return "**"
	case booking.SeatUnavailable:
		return "XX"
	default:
		return "[]"
	}
}

func (m appModel) paymentView() string {
	current := m.session.Booking()
	summary := []string{lipgloss.NewStyle().Bold(true).Render("Order summary")}
	if current.Movie != nil {
		summary = append(summary,
			detailLine("Movie", current.Movie.Title),
			detailLine("Session", ticket.DisplayTime(current.Movie.SessionTime)),
		)
	}
	summary = append(summary,
		detailLine("Seats", strings.Join(current.SeatIds(), ", ")),
		detailLine("Total", formatPrice(current.TotalPrice)),
	)

	form := []string{lipgloss.NewStyle().Bold(true).Render("Card details"), m.form.view(), ""}
	switch {
	case m.session.Processing():
		form = append(form, fmt.Sprintf("%s Processing payment...", m.spinner.View()))
	case m.form.valid():
		form = append(form, lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("Press enter to pay "+formatPrice(current.TotalPrice)))
	default:
		form = append(form, hint("Fill in the card details to pay"))
	}
	if m.paymentErr != nil {
		form = append(form, "", lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.paymentErr.Error()))
	}

	left := panelStyle.Render(strings.Join(summary, "\n") + "\n\n" + strings.Join(form, "\n"))
	right := panelStyle.Render(hint("Your ticket") + "\n\n" + renderMatrix(m.preview))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (m appModel) ticketView() string {
	issued := m.session.Booking()
	if issued.Movie == nil || issued.Settlement == nil {
		return "No ticket issued."
	}
	details := []string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")).Render("Payment confirmed"),
		"",
		lipgloss.NewStyle().Bold(true).Render(issued.Movie.Title),
		detailLine("Session", ticket.DisplayTime(issued.Movie.SessionTime)),
		detailLine("Seats", strings.Join(issued.SeatIds(), ", ")),
		detailLine("Total", formatPrice(issued.TotalPrice)),
		detailLine("Card", "**** "+issued.Settlement.CardSuffix),
		detailLine("Transaction", issued.Settlement.TransactionId),
		detailLine("Paid at", issued.Settlement.Timestamp.Local().Format(time.DateTime)),
	}
	if m.exported != "" {
		details = append(details, "", hint("Saved: "+m.exported))
	}
	code := renderMatrix(booking.TicketCode(issued))
	return lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(code), " ", panelStyle.Render(strings.Join(details, "\n")))
}

// renderMatrix draws two columns per cell so the pattern stays square.
func renderMatrix(matrix booking.Matrix) string {
	var b strings.Builder
	for r, row := range matrix {
		for _, dark := range row {
			if dark {
				b.WriteString("██")
			} else {
				b.WriteString("  ")
			}
		}
		if r < len(matrix)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

func padCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if text == "" {
		return strings.Repeat(" ", width)
	}
	if len(text) >= width {
		return text[:width]
	}
	padding := width - len(text)
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

type screenBlock struct {
	top string
	mid string
	bot string
}

func screenBarBlock(width int, label string) screenBlock {
	if width < len(label)+4 {
		width = len(label) + 4
	}
	if width < 10 {
		width = 10
	}

	border := "╭" + strings.Repeat("─", width-2) + "╮"
	bottom := "╰" + strings.Repeat("─", width-2) + "╯"

	labelText := " " + label + " "
	padding := width - len(labelText) - 2
	left := padding / 2
	right := padding - left
	mid := "│" + strings.Repeat(" ", left) + labelText + strings.Repeat(" ", right) + "│"
	return screenBlock{top: border, mid: mid, bot: bottom}
}

func formatPrice(price decimal.Decimal) string {
	return "$" + price.StringFixed(2)
}
