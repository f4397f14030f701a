package booking

import (
	"strings"

	"gosterim-cli/model"
)

const (
	// CodeSize is the edge length of the ticket code matrix.
	CodeSize = 25
	// PreviewSize is the edge length of the payment-stage preview.
	PreviewSize = 16

	locatorSize    = 7
	timingLine     = 6
	payloadModulus = 100
	payloadCutoff  = 45
)

// Matrix is a square grid of dark (true) and light (false) cells.
type Matrix [][]bool

func newMatrix(size int) Matrix {
	m := make(Matrix, size)
	for i := range m {
		m[i] = make([]bool, size)
	}
	return m
}

func (m Matrix) Size() int { return len(m) }

// String renders the matrix with '#' for dark cells, one line per row.
func (m Matrix) String() string {
	var b strings.Builder
	for _, row := range m {
		for _, dark := range row {
			if dark {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// TicketCode derives the final ticket pattern. It is a pure function of the
// booked film id: the same booking always yields the same matrix.
func TicketCode(b model.Booking) Matrix {
	filmID := 0
	if b.Movie != nil {
		filmID = b.Movie.FilmId
	}
	return ticketCodeFor(filmID)
}

func ticketCodeFor(filmID int) Matrix {
	// only the residue matters to the payload hash; reducing first keeps
	// large ids from overflowing it
	filmID %= payloadModulus
	if filmID < 0 {
		filmID += payloadModulus
	}
	m := newMatrix(CodeSize)
	for row := 0; row < CodeSize; row++ {
		for col := 0; col < CodeSize; col++ {
			m[row][col] = codeCell(row, col, filmID)
		}
	}
	return m
}

func codeCell(row int, col int, filmID int) bool {
	if lr, lc, ok := locatorLocal(row, col); ok {
		ring := lr == 0 || lr == locatorSize-1 || lc == 0 || lc == locatorSize-1
		core := lr >= 2 && lr <= 4 && lc >= 2 && lc <= 4
		return ring || core
	}
	if row == timingLine || col == timingLine {
		return (row+col)%2 == 0
	}
	hash := (row*31 + col*17 + filmID) % payloadModulus
	return hash > payloadCutoff
}

// locatorLocal maps a cell inside one of the three corner locators to its
// zone-local coordinates.
func locatorLocal(row int, col int) (int, int, bool) {
	far := CodeSize - locatorSize
	switch {
	case row < locatorSize && col < locatorSize:
		return row, col, true
	case row < locatorSize && col >= far:
		return row, col - far, true
	case row >= far && col < locatorSize:
		return row - far, col, true
	default:
		return 0, 0, false
	}
}

// Preview builds the decorative pattern shown while paying. It draws from
// random on every call and must not be used as the ticket code.
func Preview(random func() float64) Matrix {
	m := newMatrix(PreviewSize)
	for i := 0; i < PreviewSize*PreviewSize; i++ {
		edge := i%PreviewSize < 7 || i%PreviewSize > 8
		var dark bool
		switch {
		case i < 49:
			dark = edge
		case i < 112:
			dark = random() > 0.4
		case i < 144:
			dark = edge
		case i < 207:
			dark = random() > 0.4
		default:
			dark = edge
		}
		m[i/PreviewSize][i%PreviewSize] = dark
	}
	return m
}
