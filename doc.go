// Package spaceweather is a client for the Australian Bureau of Meteorology
// Space Weather Services (SWS) data API.
//
// # Usage
//
//	client, err := spaceweather.New(ctx, os.Getenv("SWS_API_KEY"))
//	if errors.Is(err, spaceweather.ErrInvalidCredential) {
//		// key rejected with HTTP 403
//	}
//	kIndex, err := client.GetKIndex(ctx, client.Since(24*time.Hour), "Hobart")
//
// New verifies the key with one request to the K index endpoint, so it
// blocks and may fail. Every Get method then performs exactly one POST,
// bounded by [RequestTimeout]. Nothing is cached or retried.
//
// # API Conventions
//
// Requests are JSON bodies of the form
//
//	{"api_key": "...", "options": {"location": "...", "start": "...", "end": "..."}}
//
// where options only appear on the index endpoints. start and end are
// "YYYY-MM-DD HH:mm:ss" in UTC, or empty for an open bound. The A and Dst
// index endpoints are always queried for the Australian region; the K
// index accepts an observing site and defaults to the Australian region.
//
// Responses carry their records under "data". An absent or empty data field
// is the service's way of saying there is no current alert, warning or
// reading, and decodes to an empty slice. The A and Dst index endpoints
// nest the list one level deeper:
//
//	{"data": [[{"index": 5, "valid_time": "2021-12-04 00:00:00"}]]}
//
// Time format:
//
//	Full timestamps use "2006-01-02 15:04:05". Outlook, watch and warning
//	periods may be date-only, "2006-01-02", which resolves to midnight UTC.
//	Each field is tried in that order. A missing field becomes an absent
//	[Timestamp]; a present field matching neither layout fails the whole
//	call with [ErrMalformedResponse].
//
// Scales:
//
//	K index:  0-9, 3-hourly, per observing site or regional average
//	A index:  0-400, daily, Australian region
//	Dst:      signed, unbounded (typically -2000 to 300)
//	G scale:  NOAA geomagnetic storm scale, G1 (minor) to G5 (extreme)
//
// # Errors
//
// Use errors.Is with [ErrInvalidCredential], [ErrRequestFailed],
// [ErrMalformedTimeRange] and [ErrMalformedResponse]; use errors.As with
// [*RequestError] for the status code and decoded error body.
package spaceweather
