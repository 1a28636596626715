package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type swsStub struct {
	mu     sync.Mutex
	bodies map[string][]string
	status int
	data   map[string]string
}

func newSWSStub(t *testing.T) (*swsStub, *httptest.Server) {
	t.Helper()
	stub := &swsStub{bodies: map[string][]string{}, status: http.StatusOK, data: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		endpoint := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

		stub.mu.Lock()
		stub.bodies[endpoint] = append(stub.bodies[endpoint], string(raw))
		status, body := stub.status, stub.data[endpoint]
		stub.mu.Unlock()

		if body == "" {
			body = `{"data":[]}`
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("SWS_API_KEY", "test-key")
	t.Setenv("SWS_BASE_URL", srv.URL)
	t.Setenv("LOG_LEVEL", "error")
	return stub, srv
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_UnknownKind(t *testing.T) {
	code, _, stderr := runCLI(t, "-kind", "solar-wind")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown -kind "solar-wind"`)
	assert.Contains(t, stderr, "k-index")
}

func TestRun_BadFlag(t *testing.T) {
	code, _, _ := runCLI(t, "-bogus")
	assert.Equal(t, 2, code)
}

func TestRun_MissingAPIKey(t *testing.T) {
	t.Setenv("SWS_API_KEY", "")
	code, _, stderr := runCLI(t, "-kind", "mag-alert")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "SWS_API_KEY is required")
}

func TestRun_KIndexWithLocation(t *testing.T) {
	stub, _ := newSWSStub(t)
	stub.data["get-k-index"] = `{"data":[{"index":3,"valid_time":"2024-05-10 09:00:00","analysis_time":"2024-05-10 11:45:00"}]}`

	code, stdout, stderr := runCLI(t, "-kind", "k-index", "-location", "Hobart", "-start", "2024-05-10 00:00:00")
	require.Equal(t, 0, code, stderr)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.InDelta(t, 3, records[0]["index"], 0)
	assert.Equal(t, "2024-05-10T09:00:00Z", records[0]["valid_time"])

	// The first request is the key probe, the second the query.
	require.Len(t, stub.bodies["get-k-index"], 2)
	assert.JSONEq(t,
		`{"api_key":"test-key","options":{"location":"Hobart","start":"2024-05-10 00:00:00","end":""}}`,
		stub.bodies["get-k-index"][1])
}

func TestRun_EmptyResultPrintsEmptyList(t *testing.T) {
	newSWSStub(t)

	code, stdout, _ := runCLI(t, "-kind", "aurora-alert")
	require.Equal(t, 0, code)
	assert.JSONEq(t, `[]`, stdout)
}

func TestRun_InvalidKey(t *testing.T) {
	stub, _ := newSWSStub(t)
	stub.status = http.StatusForbidden

	code, _, stderr := runCLI(t, "-kind", "mag-warning")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid SWS API key")
}

func TestRun_MalformedStartFailsBeforeConnecting(t *testing.T) {
	for _, start := range []string{"2024", "2024-05-10", "2024-05-10 00:00:00.5"} {
		t.Run(start, func(t *testing.T) {
			stub, _ := newSWSStub(t)

			code, _, stderr := runCLI(t, "-kind", "a-index", "-start", start)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr, "malformed time range")
			assert.Empty(t, stub.bodies["get-k-index"], "key probe should not be sent")
			assert.Empty(t, stub.bodies["get-a-index"])
		})
	}
}
