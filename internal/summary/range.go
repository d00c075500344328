package summary

import (
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// ParseRange builds a Range from YYYY-MM-DD bounds. An empty bound stays
// open.
func ParseRange(from, to string) (Range, error) {
	var r Range
	var err error
	if r.From, err = parseBound(from); err != nil {
		return Range{}, fmt.Errorf("ParseRange: from: %w", err)
	}
	if r.To, err = parseBound(to); err != nil {
		return Range{}, fmt.Errorf("ParseRange: to: %w", err)
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return Range{}, fmt.Errorf("ParseRange: %s is before %s", r.To, r.From)
	}
	return r, nil
}

func parseBound(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, nil
	}
	return civil.ParseDate(s)
}

type rangeJSON struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// MarshalJSON omits open bounds.
func (r Range) MarshalJSON() ([]byte, error) {
	var out rangeJSON
	if !r.From.IsZero() {
		out.From = r.From.String()
	}
	if !r.To.IsZero() {
		out.To = r.To.String()
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the MarshalJSON form.
func (r *Range) UnmarshalJSON(b []byte) error {
	var in rangeJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	parsed, err := ParseRange(in.From, in.To)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
