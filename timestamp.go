package spaceweather

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// DateTimeLayout is the layout the SWS API uses for full timestamps and
	// expects for start/end bounds.
	DateTimeLayout = "2006-01-02 15:04:05"

	// DateLayout is the date-only layout used by outlook, watch and warning
	// periods. Values in this layout resolve to midnight UTC.
	DateLayout = time.DateOnly
)

// Timestamp is a point in time reported by the service, or the explicit
// absent value when the field was missing from the response element.
// The zero value is absent.
type Timestamp struct {
	t       time.Time
	present bool
}

// NewTimestamp returns a present Timestamp for t, normalized to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t.UTC(), present: true}
}

// Present reports whether the field carried a value.
func (ts Timestamp) Present() bool { return ts.present }

// Time returns the parsed time, or the zero time when absent.
func (ts Timestamp) Time() time.Time { return ts.t }

// Get returns the parsed time and whether it was present.
func (ts Timestamp) Get() (time.Time, bool) { return ts.t, ts.present }

func (ts Timestamp) String() string {
	if !ts.present {
		return "<absent>"
	}
	return ts.t.Format(DateTimeLayout)
}

// Equal reports whether both timestamps are absent, or both present and at
// the same instant.
func (ts Timestamp) Equal(other Timestamp) bool {
	if ts.present != other.present {
		return false
	}
	return !ts.present || ts.t.Equal(other.t)
}

// MarshalJSON encodes a present timestamp as RFC 3339 and an absent one as null.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.present {
		return []byte("null"), nil
	}
	return json.Marshal(ts.t.Format(time.RFC3339))
}

// UnmarshalJSON accepts RFC 3339, either SWS layout, or null.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*ts = Timestamp{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		*ts = NewTimestamp(t)
		return nil
	}
	parsed, err := parseTimestamp("timestamp", s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// parseTimestamp applies the two-layout policy to a raw field value.
// A nil value means the key was missing (or null) and yields an absent
// Timestamp. A present value that matches neither layout is an error.
func parseTimestamp(field string, value *string) (Timestamp, error) {
	if value == nil {
		return Timestamp{}, nil
	}
	if t, err := time.ParseInLocation(DateTimeLayout, *value, time.UTC); err == nil {
		return Timestamp{t: t, present: true}, nil
	}
	if t, err := time.ParseInLocation(DateLayout, *value, time.UTC); err == nil {
		return Timestamp{t: t, present: true}, nil
	}
	return Timestamp{}, fmt.Errorf("%w: field %q has unparsable time %q", ErrMalformedResponse, field, *value)
}
