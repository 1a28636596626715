package spaceweather

import (
	"fmt"
	"time"
)

// AustralianRegion is the location the A and Dst index endpoints always use,
// and the K index default.
const AustralianRegion = "Australian region"

// Bound is one end of a historical query window. The zero Bound means
// "no bound" and is sent as an empty string.
type Bound struct {
	formatted string
	at        time.Time
	isTime    bool
}

// At bounds the window at t. The value is sent in UTC using DateTimeLayout.
func At(t time.Time) Bound {
	return Bound{at: t, isTime: true}
}

// Formatted bounds the window with a pre-formatted "YYYY-MM-DD HH:mm:ss"
// string. The string is validated when the request is built.
func Formatted(s string) Bound {
	return Bound{formatted: s}
}

// IsZero reports whether b leaves that end of the window open.
func (b Bound) IsZero() bool {
	return !b.isTime && b.formatted == ""
}

// format renders the bound for the request body, rejecting strings that do
// not match DateTimeLayout exactly.
func (b Bound) format(name string) (string, error) {
	if b.isTime {
		return b.at.UTC().Format(DateTimeLayout), nil
	}
	if b.formatted == "" {
		return "", nil
	}
	t, err := time.Parse(DateTimeLayout, b.formatted)
	if err != nil || t.Format(DateTimeLayout) != b.formatted {
		return "", fmt.Errorf("%w: %s %q must be in the form YYYY-MM-DD HH:mm:ss", ErrMalformedTimeRange, name, b.formatted)
	}
	return b.formatted, nil
}

// TimeRange selects historical index values. The zero TimeRange asks for
// the most recent value.
type TimeRange struct {
	Start Bound
	End   Bound
}

// Validate checks both bounds without sending anything. The Get methods
// perform the same check, so calling it is only useful to fail early.
func (r TimeRange) Validate() error {
	if _, err := r.Start.format("start"); err != nil {
		return err
	}
	_, err := r.End.format("end")
	return err
}

// Between is shorthand for a closed window between two instants.
func Between(start, end time.Time) TimeRange {
	return TimeRange{Start: At(start), End: At(end)}
}

// Wire request bodies.

type requestBody struct {
	APIKey  string          `json:"api_key"`
	Options *requestOptions `json:"options,omitempty"`
}

type requestOptions struct {
	Location string `json:"location"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

// probeBody is the key verification request; it only scopes the location.
type probeBody struct {
	APIKey  string       `json:"api_key"`
	Options probeOptions `json:"options"`
}

type probeOptions struct {
	Location string `json:"location"`
}

// indexRequest builds the body for an index endpoint. Validation happens
// here so a malformed range never reaches the network.
func indexRequest(apiKey, location string, r TimeRange) (requestBody, error) {
	start, err := r.Start.format("start")
	if err != nil {
		return requestBody{}, err
	}
	end, err := r.End.format("end")
	if err != nil {
		return requestBody{}, err
	}
	return requestBody{
		APIKey: apiKey,
		Options: &requestOptions{
			Location: location,
			Start:    start,
			End:      end,
		},
	}, nil
}
