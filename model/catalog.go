package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
)

// CatalogFilm is the raw shape served by a catalog provider. Fields are
// optional; normalization into Showtime happens in the booking package.
type CatalogFilm struct {
	Id        FlexID           `json:"id"`
	Title     string           `json:"title"`
	PosterUrl string           `json:"posterUrl"`
	Poster    string           `json:"poster"`
	Genre     string           `json:"genre"`
	Rating    string           `json:"rating"`
	Sessions  []CatalogSession `json:"sessions"`
}

type CatalogSession struct {
	Id    FlexID  `json:"id"`
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

// FlexID accepts either a JSON number or a JSON string. Non-numeric strings
// are folded into a stable non-negative number.
type FlexID int

func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*id = ParseFlexID(raw)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = numericID(num)
	return nil
}

// numericID keeps integral ids (including integral floats such as 3.0) as
// their absolute value. Anything else is hashed like a string id.
func numericID(num json.Number) FlexID {
	raw := num.String()
	n, err := num.Int64()
	if err != nil {
		f, ferr := num.Float64()
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
			return ParseFlexID(raw)
		}
		n = int64(f)
	}
	if n == math.MinInt64 {
		return ParseFlexID(raw)
	}
	if n < 0 {
		n = -n
	}
	return FlexID(n)
}

// ParseFlexID converts a textual identifier into a FlexID.
func ParseFlexID(raw string) FlexID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
		return FlexID(n)
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(raw))
	return FlexID(h.Sum32() & 0x7fffffff)
}
