package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Cents is a fixed-point currency amount with two decimal places,
// stored as an integer number of cents. It marshals to a plain JSON
// number with exactly two fractional digits ("12.50") so the wire
// format matches what spreadsheet-style clients expect, and it never
// accumulates binary floating point error.
type Cents int64

// MarshalJSON implements json.Marshaler.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler. It accepts a JSON number
// ("12.5", "12.50", "12") or the same value quoted as a string.
// Fractional digits beyond the second are rejected rather than rounded:
// a client sending sub-cent precision has a bug worth surfacing.
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}

	parsed, err := ParseCents(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// String formats the amount as a decimal with two fractional digits.
func (c Cents) String() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// ParseCents parses a decimal string ("12", "12.5", "-0.07") into Cents.
func ParseCents(s string) (Cents, error) {
	neg := strings.HasPrefix(s, "-")
	if neg || strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	var cents int64
	switch len(frac) {
	case 0:
	case 1:
		cents, err = strconv.ParseInt(frac, 10, 64)
		cents *= 10
	case 2:
		cents, err = strconv.ParseInt(frac, 10, 64)
	default:
		return 0, fmt.Errorf("invalid amount %q: more than two decimal places", s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	total := units*100 + cents
	if neg {
		total = -total
	}
	return Cents(total), nil
}
