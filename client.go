package spaceweather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultBaseURL is the production SWS data API.
	DefaultBaseURL = "https://sws-data.sws.bom.gov.au/api/v1/"

	// RequestTimeout bounds every call, including the key probe.
	RequestTimeout = 15 * time.Second

	contentType = "application/json; charset=UTF-8"
)

// Client calls the SWS data API with a verified API key. It holds no
// per-call state and is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *Metrics
	clock      clockwork.Clock
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/") + "/"
	}
}

// WithHTTPClient replaces the transport. RequestTimeout still applies per call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger for request tracing. Requests log at Debug.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics reports request counts, durations and decoded records.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClock swaps the time source used for timing and Since.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New verifies apiKey against the K index endpoint and returns a client
// bound to it. It blocks for one round trip. A 403 from the service yields
// ErrInvalidCredential; any other failure wraps ErrRequestFailed.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: RequestTimeout},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:      clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidCredential)
	}
	if err := c.verifyKey(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) verifyKey(ctx context.Context) error {
	body := probeBody{
		APIKey:  c.apiKey,
		Options: probeOptions{Location: AustralianRegion},
	}
	_, err := c.post(ctx, KindKIndex.Endpoint(), body)
	if err == nil {
		c.logger.Debug("sws api key verified")
		return nil
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: HTTP 403 from %s", ErrInvalidCredential, reqErr.Endpoint)
	}
	return fmt.Errorf("verify api key: %w", err)
}

// post sends one JSON request and returns the raw response body on HTTP 200.
func (c *Client) post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observeRequest(endpoint, "error", c.clock.Since(start))
		c.logger.Warn("sws request failed", "endpoint", endpoint, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrRequestFailed, endpoint, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	elapsed := c.clock.Since(start)
	if err != nil {
		c.metrics.observeRequest(endpoint, "error", elapsed)
		return nil, fmt.Errorf("%w: %s: read body: %w", ErrRequestFailed, endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.observeRequest(endpoint, "error", elapsed)
		c.logger.Warn("sws request rejected", "endpoint", endpoint, "status", resp.StatusCode)
		return nil, &RequestError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       decodeErrorBody(payload),
		}
	}

	c.metrics.observeRequest(endpoint, "success", elapsed)
	c.logger.Debug("sws request", "endpoint", endpoint, "status", resp.StatusCode, "duration", elapsed)
	return payload, nil
}

// decodeErrorBody returns the JSON error payload when it decodes, the
// trimmed text otherwise, and nil for an empty body.
func decodeErrorBody(payload []byte) any {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err == nil {
		return v
	}
	return string(trimmed)
}

// fetch performs one call and maps the response into records.
func fetch[T any](ctx context.Context, c *Client, kind Kind, body any, decode func([]byte) ([]T, error)) ([]T, error) {
	payload, err := c.post(ctx, kind.Endpoint(), body)
	if err != nil {
		return nil, err
	}
	records, err := decode(payload)
	if err != nil {
		c.logger.Warn("sws response rejected", "endpoint", kind.Endpoint(), "error", err)
		return nil, err
	}
	c.metrics.observeRecords(kind.Endpoint(), len(records))
	return records, nil
}

func (c *Client) keyOnly() requestBody {
	return requestBody{APIKey: c.apiKey}
}

// GetAuroraOutlook returns any aurora outlook current for the Australian
// region. Outlooks warn of likely auroral activity 3-7 days hence.
func (c *Client) GetAuroraOutlook(ctx context.Context) ([]AuroraOutlook, error) {
	return fetch(ctx, c, KindAuroraOutlook, c.keyOnly(), DecodeAuroraOutlooks)
}

// GetAuroraWatch returns any aurora watch current for the Australian
// region. Watches warn of likely auroral activity in the next 48 hours.
func (c *Client) GetAuroraWatch(ctx context.Context) ([]AuroraWatch, error) {
	return fetch(ctx, c, KindAuroraWatch, c.keyOnly(), DecodeAuroraWatches)
}

// GetAuroraAlert returns any aurora alert current for the Australian region.
func (c *Client) GetAuroraAlert(ctx context.Context) ([]AuroraAlert, error) {
	return fetch(ctx, c, KindAuroraAlert, c.keyOnly(), DecodeAuroraAlerts)
}

// GetMagAlert returns any magnetic alert current for the Australian region.
func (c *Client) GetMagAlert(ctx context.Context) ([]MagAlert, error) {
	return fetch(ctx, c, KindMagAlert, c.keyOnly(), DecodeMagAlerts)
}

// GetMagWarning returns any geophysical warning active for the Australian region.
func (c *Client) GetMagWarning(ctx context.Context) ([]MagWarning, error) {
	return fetch(ctx, c, KindMagWarning, c.keyOnly(), DecodeMagWarnings)
}

// GetAIndex returns the most recent A index for the Australian region, or
// historical values within r.
func (c *Client) GetAIndex(ctx context.Context, r TimeRange) ([]AIndex, error) {
	body, err := indexRequest(c.apiKey, AustralianRegion, r)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, c, KindAIndex, body, DecodeAIndices)
}

// GetKIndex returns the most recent K index for location, or historical
// values within r. An empty location means the Australian region.
func (c *Client) GetKIndex(ctx context.Context, r TimeRange, location string) ([]KIndex, error) {
	if location == "" {
		location = AustralianRegion
	}
	body, err := indexRequest(c.apiKey, location, r)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, c, KindKIndex, body, DecodeKIndices)
}

// GetDstIndex returns the most recent Dst index, or historical values within r.
func (c *Client) GetDstIndex(ctx context.Context, r TimeRange) ([]DstIndex, error) {
	body, err := indexRequest(c.apiKey, AustralianRegion, r)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, c, KindDstIndex, body, DecodeDstIndices)
}

// Since returns an open-ended range starting d before now.
func (c *Client) Since(d time.Duration) TimeRange {
	return TimeRange{Start: At(c.clock.Now().Add(-d))}
}
