package models

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Reading is one sensor sample sent by the microcontroller
type Reading struct {
	Movimento int `gorm:"column:movimento"`
	Fumo      int `gorm:"column:fumo"`
}

// ParseReading parses a "<movement>,<smoke>" payload. Each field is trimmed
// of surrounding whitespace and must be a base-10 integer.
func ParseReading(body []byte) (Reading, error) {
	if !utf8.Valid(body) {
		return Reading{}, fmt.Errorf("payload is not valid UTF-8")
	}

	fields := strings.Split(string(body), ",")
	if len(fields) != 2 {
		return Reading{}, fmt.Errorf("expected 2 comma-separated values, got %d", len(fields))
	}

	movimento, err := parseField(fields[0])
	if err != nil {
		return Reading{}, err
	}
	fumo, err := parseField(fields[1])
	if err != nil {
		return Reading{}, err
	}

	return Reading{Movimento: movimento, Fumo: fumo}, nil
}

func parseField(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value: %q", s)
	}
	return n, nil
}

// View converts the reading to its response shape
func (r Reading) View() ReadingView {
	return ReadingView{Movimento: r.Movimento, Fumo: r.Fumo}
}

// String renders the reading in wire form
func (r Reading) String() string {
	return fmt.Sprintf("%d,%d", r.Movimento, r.Fumo)
}
