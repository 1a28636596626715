package spaceweather

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind identifies a record type and the endpoint that serves it.
type Kind string

const (
	KindAuroraOutlook Kind = "aurora-outlook"
	KindAuroraWatch   Kind = "aurora-watch"
	KindAuroraAlert   Kind = "aurora-alert"
	KindMagAlert      Kind = "mag-alert"
	KindMagWarning    Kind = "mag-warning"
	KindAIndex        Kind = "a-index"
	KindKIndex        Kind = "k-index"
	KindDstIndex      Kind = "dst-index"
)

// Kinds lists every supported record kind.
var Kinds = []Kind{
	KindAuroraOutlook, KindAuroraWatch, KindAuroraAlert,
	KindMagAlert, KindMagWarning,
	KindAIndex, KindKIndex, KindDstIndex,
}

// Endpoint returns the API path for the kind, e.g. "get-k-index".
func (k Kind) Endpoint() string { return "get-" + string(k) }

// nested reports whether the service wraps the record list one level
// deeper, as {"data": [[...]]}.
func (k Kind) nested() bool { return k == KindAIndex || k == KindDstIndex }

// Raw SWS element shapes. Timestamps are pointers so a missing key can be
// told apart from a present but unparsable value.

type rawAurora struct {
	IssueTime   *string `json:"issue_time"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	StartTime   *string `json:"start_time"`
	ValidUntil  *string `json:"valid_until"`
	Cause       string  `json:"cause"`
	KAus        *int    `json:"k_aus"`
	LatBand     string  `json:"lat_band"`
	Comments    string  `json:"comments"`
	Description string  `json:"description"`
}

type rawMagAlert struct {
	StartTime   *string `json:"start_time"`
	ValidUntil  *string `json:"valid_until"`
	GScale      int     `json:"g_scale"`
	Description string  `json:"description"`
}

type rawActivity struct {
	Date     *string `json:"date"`
	Forecast string  `json:"forecast"`
}

type rawMagWarning struct {
	IssueTime *string       `json:"issue_time"`
	StartDate *string       `json:"start_date"`
	EndDate   *string       `json:"end_date"`
	Cause     string        `json:"cause"`
	Activity  []rawActivity `json:"activity"`
	Comments  string        `json:"comments"`
}

type rawIndex struct {
	Index        int     `json:"index"`
	ValidTime    *string `json:"valid_time"`
	AnalysisTime *string `json:"analysis_time"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// timeFields parses several timestamp fields in order, stopping at the
// first malformed one.
type timeFields struct {
	err error
}

func (f *timeFields) parse(field string, value *string) Timestamp {
	if f.err != nil {
		return Timestamp{}
	}
	ts, err := parseTimestamp(field, value)
	if err != nil {
		f.err = err
	}
	return ts
}

// elements extracts the record list from a response payload. An absent data
// field, or one holding null, false, 0, "", {} or [], yields no elements and
// no error.
func elements(kind Kind, payload []byte) ([]json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: decode %s envelope: %v", ErrMalformedResponse, kind, err)
	}
	if isEmptyJSON(env.Data) {
		return nil, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(env.Data, &list); err != nil {
		return nil, fmt.Errorf("%w: %s data is not a list: %v", ErrMalformedResponse, kind, err)
	}
	if !kind.nested() || len(list) == 0 {
		return list, nil
	}

	if isEmptyJSON(list[0]) {
		return nil, nil
	}
	var inner []json.RawMessage
	if err := json.Unmarshal(list[0], &inner); err != nil {
		return nil, fmt.Errorf("%w: %s data[0] is not a list: %v", ErrMalformedResponse, kind, err)
	}
	return inner, nil
}

// isEmptyJSON reports whether raw is missing or a falsy JSON value. Lists are
// left to the caller, which treats a zero-length list as empty.
func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return true
	}
	if trimmed[0] == '[' {
		return bytes.Equal(bytes.Join(bytes.Fields(trimmed), nil), []byte("[]"))
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	case map[string]any:
		return len(x) == 0
	}
	return false
}

// decodeRecords maps every element of the payload through build.
func decodeRecords[R any, T any](kind Kind, payload []byte, build func(R) (T, error)) ([]T, error) {
	elems, err := elements(kind, payload)
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(elems))
	for i, elem := range elems {
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
			return nil, fmt.Errorf("%w: %s element %d is null", ErrMalformedResponse, kind, i)
		}
		var raw R
		if err := json.Unmarshal(elem, &raw); err != nil {
			return nil, fmt.Errorf("%w: %s element %d: %v", ErrMalformedResponse, kind, i, err)
		}
		rec, err := build(raw)
		if err != nil {
			return nil, fmt.Errorf("%s element %d: %w", kind, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// DecodeAuroraOutlooks maps a get-aurora-outlook response body.
func DecodeAuroraOutlooks(payload []byte) ([]AuroraOutlook, error) {
	return decodeRecords(KindAuroraOutlook, payload, func(r rawAurora) (AuroraOutlook, error) {
		var f timeFields
		out := AuroraOutlook{
			IssueTime: f.parse("issue_time", r.IssueTime),
			StartDate: f.parse("start_date", r.StartDate),
			EndDate:   f.parse("end_date", r.EndDate),
			Cause:     Cause(r.Cause),
			KAus:      r.KAus,
			LatBand:   LatBand(r.LatBand),
			Comments:  r.Comments,
		}
		return out, f.err
	})
}

// DecodeAuroraWatches maps a get-aurora-watch response body.
func DecodeAuroraWatches(payload []byte) ([]AuroraWatch, error) {
	return decodeRecords(KindAuroraWatch, payload, func(r rawAurora) (AuroraWatch, error) {
		var f timeFields
		out := AuroraWatch{
			IssueTime: f.parse("issue_time", r.IssueTime),
			StartDate: f.parse("start_date", r.StartDate),
			EndDate:   f.parse("end_date", r.EndDate),
			Cause:     Cause(r.Cause),
			KAus:      r.KAus,
			LatBand:   LatBand(r.LatBand),
			Comments:  r.Comments,
		}
		return out, f.err
	})
}

// DecodeAuroraAlerts maps a get-aurora-alert response body.
func DecodeAuroraAlerts(payload []byte) ([]AuroraAlert, error) {
	return decodeRecords(KindAuroraAlert, payload, func(r rawAurora) (AuroraAlert, error) {
		var f timeFields
		out := AuroraAlert{
			StartTime:   f.parse("start_time", r.StartTime),
			ValidUntil:  f.parse("valid_until", r.ValidUntil),
			LatBand:     LatBand(r.LatBand),
			Description: r.Description,
		}
		if r.KAus == nil {
			return out, fmt.Errorf("%w: field \"k_aus\" is missing", ErrMalformedResponse)
		}
		out.KAus = *r.KAus
		return out, f.err
	})
}

// DecodeMagAlerts maps a get-mag-alert response body.
func DecodeMagAlerts(payload []byte) ([]MagAlert, error) {
	return decodeRecords(KindMagAlert, payload, func(r rawMagAlert) (MagAlert, error) {
		var f timeFields
		out := MagAlert{
			StartTime:   f.parse("start_time", r.StartTime),
			ValidUntil:  f.parse("valid_until", r.ValidUntil),
			GScale:      r.GScale,
			Description: MagAlertLevel(r.Description),
		}
		return out, f.err
	})
}

// DecodeMagWarnings maps a get-mag-warning response body.
func DecodeMagWarnings(payload []byte) ([]MagWarning, error) {
	return decodeRecords(KindMagWarning, payload, func(r rawMagWarning) (MagWarning, error) {
		var f timeFields
		out := MagWarning{
			IssueTime: f.parse("issue_time", r.IssueTime),
			StartDate: f.parse("start_date", r.StartDate),
			EndDate:   f.parse("end_date", r.EndDate),
			Cause:     Cause(r.Cause),
			Activity:  make([]ActivityForecast, 0, len(r.Activity)),
			Comments:  r.Comments,
		}
		for _, day := range r.Activity {
			out.Activity = append(out.Activity, ActivityForecast{
				Date:     f.parse("activity.date", day.Date),
				Forecast: day.Forecast,
			})
		}
		return out, f.err
	})
}

// DecodeAIndices maps a get-a-index response body ({"data": [[...]]}).
func DecodeAIndices(payload []byte) ([]AIndex, error) {
	return decodeRecords(KindAIndex, payload, func(r rawIndex) (AIndex, error) {
		var f timeFields
		out := AIndex{
			ValidTime: f.parse("valid_time", r.ValidTime),
			Index:     r.Index,
		}
		return out, f.err
	})
}

// DecodeKIndices maps a get-k-index response body.
func DecodeKIndices(payload []byte) ([]KIndex, error) {
	return decodeRecords(KindKIndex, payload, func(r rawIndex) (KIndex, error) {
		var f timeFields
		out := KIndex{
			ValidTime:    f.parse("valid_time", r.ValidTime),
			AnalysisTime: f.parse("analysis_time", r.AnalysisTime),
			Index:        r.Index,
		}
		return out, f.err
	})
}

// DecodeDstIndices maps a get-dst-index response body ({"data": [[...]]}).
func DecodeDstIndices(payload []byte) ([]DstIndex, error) {
	return decodeRecords(KindDstIndex, payload, func(r rawIndex) (DstIndex, error) {
		var f timeFields
		out := DstIndex{
			ValidTime: f.parse("valid_time", r.ValidTime),
			Index:     r.Index,
		}
		return out, f.err
	})
}
