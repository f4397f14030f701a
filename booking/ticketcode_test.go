package booking

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gosterim-cli/model"
)

func bookingForFilm(id int) model.Booking {
	return model.Booking{Movie: &model.Showtime{FilmId: id, Title: "Film"}}
}

func TestTicketCode_IsPure(t *testing.T) {
	b := bookingForFilm(3)
	first := TicketCode(b)
	second := TicketCode(b)

	if first.Size() != CodeSize {
		t.Fatalf("expected size %d, got %d", CodeSize, first.Size())
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("ticket code is not reproducible (-first +second):\n%s", diff)
	}
}

func TestTicketCode_Locators(t *testing.T) {
	m := TicketCode(bookingForFilm(1))
	far := CodeSize - locatorSize

	for _, origin := range [][2]int{{0, 0}, {0, far}, {far, 0}} {
		for lr := 0; lr < locatorSize; lr++ {
			for lc := 0; lc < locatorSize; lc++ {
				ring := lr == 0 || lr == 6 || lc == 0 || lc == 6
				core := lr >= 2 && lr <= 4 && lc >= 2 && lc <= 4
				if got := m[origin[0]+lr][origin[1]+lc]; got != (ring || core) {
					t.Fatalf("locator at %v local (%d,%d): expected %v, got %v", origin, lr, lc, ring || core, got)
				}
			}
		}
	}
}

func TestTicketCode_Timing(t *testing.T) {
	m := TicketCode(bookingForFilm(1))
	for i := locatorSize; i < CodeSize-locatorSize; i++ {
		if got, want := m[6][i], (6+i)%2 == 0; got != want {
			t.Fatalf("timing row at col %d: expected %v, got %v", i, want, got)
		}
		if got, want := m[i][6], (i+6)%2 == 0; got != want {
			t.Fatalf("timing col at row %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestTicketCode_PayloadDependsOnFilm(t *testing.T) {
	// (7,7): 7*31 + 7*17 = 336
	if TicketCode(bookingForFilm(1))[7][7] {
		t.Fatal("expected (7,7) clear for film 1")
	}
	if !TicketCode(bookingForFilm(10))[7][7] {
		t.Fatal("expected (7,7) set for film 10")
	}
	if !TicketCode(model.Booking{})[24][24] {
		t.Fatal("expected (24,24) set without a movie")
	}
}

func TestPreview_UsesRandomOnlyInNoiseBands(t *testing.T) {
	calls := 0
	dark := Preview(func() float64 { calls++; return 1 })
	light := Preview(func() float64 { return 0 })

	if dark.Size() != PreviewSize {
		t.Fatalf("expected size %d, got %d", PreviewSize, dark.Size())
	}
	if calls != 126 {
		t.Fatalf("expected 126 random draws, got %d", calls)
	}
	for i := 0; i < PreviewSize*PreviewSize; i++ {
		noise := (i >= 49 && i < 112) || (i >= 144 && i < 207)
		r, c := i/PreviewSize, i%PreviewSize
		if noise && (dark[r][c] != true || light[r][c] != false) {
			t.Fatalf("cell %d should follow random source", i)
		}
		if !noise && dark[r][c] != light[r][c] {
			t.Fatalf("cell %d should not depend on random source", i)
		}
	}
}

func TestTicketCode_LargeFilmIDs(t *testing.T) {
	// math.MaxInt64 ends in 07
	if diff := cmp.Diff(TicketCode(bookingForFilm(7)), TicketCode(bookingForFilm(math.MaxInt64))); diff != "" {
		t.Fatalf("expected the payload of film 7 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(TicketCode(bookingForFilm(42)), TicketCode(bookingForFilm(142))); diff != "" {
		t.Fatalf("expected ids equal mod 100 to share a code (-want +got):\n%s", diff)
	}
}
