//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/spaceweather"
	"github.com/couchcryptid/spaceweather/internal/adapter/kafka"
	"github.com/couchcryptid/spaceweather/internal/config"
	"github.com/couchcryptid/spaceweather/internal/observability"
	"github.com/couchcryptid/spaceweather/internal/poller"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "test-bulletins"

// stormSource serves a fixed set of bulletins and empty indices.
type stormSource struct {
	magAlerts []spaceweather.MagAlert
	warnings  []spaceweather.MagWarning
}

func (s *stormSource) GetAuroraOutlook(context.Context) ([]spaceweather.AuroraOutlook, error) {
	return nil, nil
}

func (s *stormSource) GetAuroraWatch(context.Context) ([]spaceweather.AuroraWatch, error) {
	return nil, nil
}

func (s *stormSource) GetAuroraAlert(context.Context) ([]spaceweather.AuroraAlert, error) {
	return nil, nil
}

func (s *stormSource) GetMagAlert(context.Context) ([]spaceweather.MagAlert, error) {
	return s.magAlerts, nil
}

func (s *stormSource) GetMagWarning(context.Context) ([]spaceweather.MagWarning, error) {
	return s.warnings, nil
}

func (s *stormSource) GetAIndex(context.Context, spaceweather.TimeRange) ([]spaceweather.AIndex, error) {
	return nil, nil
}

func (s *stormSource) GetKIndex(context.Context, spaceweather.TimeRange, string) ([]spaceweather.KIndex, error) {
	return nil, nil
}

func (s *stormSource) GetDstIndex(context.Context, spaceweather.TimeRange) ([]spaceweather.DstIndex, error) {
	return nil, nil
}

func readBulletin(ctx context.Context, t *testing.T, consumer *kafkago.Reader) (poller.Bulletin, map[string]string, string) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from bulletin topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var b poller.Bulletin
	require.NoError(t, json.Unmarshal(msg.Value, &b), "unmarshal bulletin")
	return b, headers, string(msg.Key)
}

// TestPollerPublishesToKafka wires the poller to the Kafka writer and checks
// that each new bulletin is published exactly once across polls.
func TestPollerPublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	src := &stormSource{
		magAlerts: []spaceweather.MagAlert{{
			StartTime:   spaceweather.NewTimestamp(time.Date(2024, 5, 10, 17, 0, 0, 0, time.UTC)),
			GScale:      4,
			Description: spaceweather.MagAlertSevere,
		}},
	}
	p := poller.New(src, writer, discardLogger(), observability.NewMetricsForTesting(), poller.Options{})

	require.NoError(t, p.Poll(ctx))
	require.NoError(t, p.Poll(ctx))

	src.warnings = []spaceweather.MagWarning{{
		IssueTime: spaceweather.NewTimestamp(time.Date(2024, 5, 9, 23, 0, 0, 0, time.UTC)),
		Cause:     spaceweather.CauseCoronalMassEjection,
		Activity: []spaceweather.ActivityForecast{
			{Date: spaceweather.NewTimestamp(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)), Forecast: "Major storm"},
		},
	}}
	require.NoError(t, p.Poll(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	alert, headers, key := readBulletin(ctx, t, consumer)
	assert.Equal(t, spaceweather.KindMagAlert, alert.Kind)
	assert.Equal(t, alert.ID, key)
	assert.Equal(t, "mag-alert", headers["kind"])
	assert.Equal(t, "2024-05-10T17:00:00Z", headers["issued_at"])
	_, err := time.Parse(time.RFC3339, headers["observed_at"])
	assert.NoError(t, err, "observed_at should be valid RFC3339")

	var record spaceweather.MagAlert
	require.NoError(t, json.Unmarshal(alert.Record, &record))
	assert.Equal(t, 4, record.GScale)

	// The second poll saw the same alert, so the next message is the warning.
	warning, _, _ := readBulletin(ctx, t, consumer)
	assert.Equal(t, spaceweather.KindMagWarning, warning.Kind)

	var decoded spaceweather.MagWarning
	require.NoError(t, json.Unmarshal(warning.Record, &decoded))
	require.Len(t, decoded.Activity, 1)
	assert.Equal(t, "Major storm", decoded.Activity[0].Forecast)
}
