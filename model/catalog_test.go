package model

import (
	"encoding/json"
	"testing"
)

func TestFlexID_Unmarshal(t *testing.T) {
	var films []CatalogFilm
	payload := `[{"id": 3, "title": "A", "sessions": [{"id": "7", "time": "12:00", "price": 12}]},
		{"id": "film-b", "title": "B"},
		{"id": null, "title": "C"},
		{"id": -4, "title": "D"}]`
	if err := json.Unmarshal([]byte(payload), &films); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if films[0].Id != 3 || films[0].Sessions[0].Id != 7 {
		t.Fatalf("unexpected numeric ids: %+v", films[0])
	}
	if films[1].Id != ParseFlexID("film-b") || films[1].Id < 0 {
		t.Fatalf("unexpected hashed id: %d", films[1].Id)
	}
	if films[2].Id != 0 {
		t.Fatalf("expected null id to be 0, got %d", films[2].Id)
	}
	if films[3].Id != 4 {
		t.Fatalf("expected absolute id 4, got %d", films[3].Id)
	}
}

func TestFlexID_UnmarshalEdgeNumbers(t *testing.T) {
	var films []CatalogFilm
	payload := `[{"id": 3.0, "title": "A"},
		{"id": 3.5, "title": "B"},
		{"id": -9223372036854775808, "title": "C"},
		{"id": 1e30, "title": "D"}]`
	if err := json.Unmarshal([]byte(payload), &films); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if films[0].Id != 3 {
		t.Fatalf("expected integral float to be 3, got %d", films[0].Id)
	}
	if films[1].Id != ParseFlexID("3.5") {
		t.Fatalf("expected fractional id to be hashed, got %d", films[1].Id)
	}
	for _, film := range films[1:] {
		if film.Id < 0 {
			t.Fatalf("expected non-negative id for %s, got %d", film.Title, film.Id)
		}
	}
}

func TestFlexID_RejectsNonScalar(t *testing.T) {
	var id FlexID
	if err := json.Unmarshal([]byte(`true`), &id); err == nil {
		t.Fatal("expected error for boolean id")
	}
}

func TestParseFlexID_Stable(t *testing.T) {
	if ParseFlexID("42") != 42 {
		t.Fatalf("expected 42, got %d", ParseFlexID("42"))
	}
	if ParseFlexID("dune") != ParseFlexID(" dune ") {
		t.Fatal("expected surrounding spaces to be ignored")
	}
	if ParseFlexID("dune") == ParseFlexID("batman") {
		t.Fatal("expected distinct ids for distinct names")
	}
}

func TestBooking_CloneIsDeep(t *testing.T) {
	b := Booking{
		Movie: &Showtime{FilmId: 1, Title: "Oppenheimer"},
		Seats: []SelectedSeat{{Id: "A3"}},
	}
	c := b.Clone()
	c.Movie.Title = "changed"
	c.Seats[0].Id = "Z9"

	if b.Movie.Title != "Oppenheimer" || b.Seats[0].Id != "A3" {
		t.Fatalf("clone shares state with original: %+v", b)
	}
	if got := b.SeatIds(); len(got) != 1 || got[0] != "A3" {
		t.Fatalf("unexpected seat ids %v", got)
	}
}
