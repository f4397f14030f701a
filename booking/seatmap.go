package booking

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gosterim-cli/model"
)

// Block is a rectangle of the grid: row indices are zero-based, seat numbers
// one-based, both bounds inclusive.
type Block struct {
	FirstRow  int
	LastRow   int
	FirstSeat int
	LastSeat  int
}

func (b Block) Contains(rowIndex int, number int) bool {
	return rowIndex >= b.FirstRow && rowIndex <= b.LastRow && number >= b.FirstSeat && number <= b.LastSeat
}

// Layout is the data that fully determines a seat grid.
type Layout struct {
	Rows        []string
	SeatsPerRow int
	Sold        []string
	Recommended Block
}

// DefaultLayout is the auditorium every showtime plays in: ten rows of
// twelve seats, the middle of rows D..G recommended.
var DefaultLayout = Layout{
	Rows:        []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"},
	SeatsPerRow: 12,
	Sold:        []string{"A1", "A2", "A11", "A12", "B3", "B8", "C6", "H2", "H10", "J5"},
	Recommended: Block{FirstRow: 3, LastRow: 6, FirstSeat: 4, LastSeat: 9},
}

// SeatID builds the identifier of a seat, e.g. "C7".
func SeatID(row string, number int) string {
	return fmt.Sprintf("%s%d", row, number)
}

// GenerateSeats lays out the grid row by row. The result depends only on the
// layout and the price.
func GenerateSeats(layout Layout, price decimal.Decimal) []model.Seat {
	sold := make(map[string]bool, len(layout.Sold))
	for _, id := range layout.Sold {
		sold[id] = true
	}
	seats := make([]model.Seat, 0, len(layout.Rows)*layout.SeatsPerRow)
	for rowIndex, row := range layout.Rows {
		for number := 1; number <= layout.SeatsPerRow; number++ {
			id := SeatID(row, number)
			seats = append(seats, model.Seat{
				Id:          id,
				Row:         row,
				Number:      number,
				Price:       price,
				Available:   !sold[id],
				Recommended: layout.Recommended.Contains(rowIndex, number),
			})
		}
	}
	return seats
}

// SeatStatus is the display state of a seat, derived on demand.
type SeatStatus int

const (
	SeatAvailable SeatStatus = iota
	SeatRecommended
	SeatSelected
	SeatUnavailable
)

func (s SeatStatus) String() string {
	switch s {
	case SeatAvailable:
		return "available"
	case SeatRecommended:
		return "recommended"
	case SeatSelected:
		return "selected"
	case SeatUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// SeatMap holds the generated grid of one seat-selection stage and the seats
// the user currently holds.
type SeatMap struct {
	layout      Layout
	seats       []model.Seat
	index       map[string]int
	selected    []model.SelectedSeat
	recommended bool
}

// NewSeatMap generates the grid for a showtime price.
func NewSeatMap(layout Layout, price decimal.Decimal) *SeatMap {
	seats := GenerateSeats(layout, price)
	index := make(map[string]int, len(seats))
	for i, seat := range seats {
		index[seat.Id] = i
	}
	return &SeatMap{layout: layout, seats: seats, index: index}
}

func (m *SeatMap) Layout() Layout { return m.layout }

// Seats returns the grid in row-major order.
func (m *SeatMap) Seats() []model.Seat {
	return append([]model.Seat(nil), m.seats...)
}

// Seat looks up a seat by identifier.
func (m *SeatMap) Seat(id string) (model.Seat, bool) {
	i, ok := m.index[id]
	if !ok {
		return model.Seat{}, false
	}
	return m.seats[i], true
}

// Toggle flips the selection of an available seat. It reports whether the
// selection changed; unknown and unavailable seats are ignored.
func (m *SeatMap) Toggle(id string) bool {
	seat, ok := m.Seat(id)
	if !ok || !seat.Available {
		return false
	}
	for i, selected := range m.selected {
		if selected.Id == id {
			m.selected = append(m.selected[:i:i], m.selected[i+1:]...)
			return true
		}
	}
	m.selected = append(m.selected, seat.Selected())
	return true
}

// ApplyRecommended overwrites the selection: enabling selects exactly the
// recommended available seats, disabling clears everything.
func (m *SeatMap) ApplyRecommended(enabled bool) {
	m.recommended = enabled
	m.selected = nil
	if !enabled {
		return
	}
	for _, seat := range m.seats {
		if seat.Recommended && seat.Available {
			m.selected = append(m.selected, seat.Selected())
		}
	}
}

// RecommendedActive reports whether the recommended filter is engaged.
func (m *SeatMap) RecommendedActive() bool { return m.recommended }

// IsSelected reports whether id is in the current selection.
func (m *SeatMap) IsSelected(id string) bool {
	for _, selected := range m.selected {
		if selected.Id == id {
			return true
		}
	}
	return false
}

// Selection returns the held seats in the order they were picked.
func (m *SeatMap) Selection() []model.SelectedSeat {
	return append([]model.SelectedSeat(nil), m.selected...)
}

// Total sums the prices of the held seats.
func (m *SeatMap) Total() decimal.Decimal {
	total := decimal.Zero
	for _, seat := range m.selected {
		total = total.Add(seat.Price)
	}
	return total
}

// Commit hands the selection and its total forward. It fails with
// ErrEmptySelection when nothing is held.
func (m *SeatMap) Commit() ([]model.SelectedSeat, decimal.Decimal, error) {
	if len(m.selected) == 0 {
		return nil, decimal.Zero, ErrEmptySelection
	}
	return m.Selection(), m.Total(), nil
}

// Status derives the display state: unavailable, then selected, then
// recommended (only while the filter is on), then available.
func (m *SeatMap) Status(seat model.Seat) SeatStatus {
	switch {
	case !seat.Available:
		return SeatUnavailable
	case m.IsSelected(seat.Id):
		return SeatSelected
	case seat.Recommended && m.recommended:
		return SeatRecommended
	default:
		return SeatAvailable
	}
}
