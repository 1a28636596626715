package poller

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/spaceweather"
)

// Bulletin is one alert, watch, outlook or warning as published downstream.
// Record holds the decoded SWS record re-encoded as JSON.
type Bulletin struct {
	ID         string                 `json:"id"`
	Kind       spaceweather.Kind      `json:"kind"`
	IssuedAt   spaceweather.Timestamp `json:"issued_at"`
	ObservedAt time.Time              `json:"observed_at"`
	Record     json.RawMessage        `json:"record"`
}

func newBulletin(kind spaceweather.Kind, issued spaceweather.Timestamp, record any, observed time.Time) (Bulletin, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return Bulletin{}, fmt.Errorf("encode %s record: %w", kind, err)
	}
	return Bulletin{
		ID:         bulletinID(kind, data),
		Kind:       kind,
		IssuedAt:   issued,
		ObservedAt: observed.UTC(),
		Record:     data,
	}, nil
}

// bulletinID is derived from the record content only, so the same bulletin
// seen on consecutive polls (or by another replica) maps to the same ID.
func bulletinID(kind spaceweather.Kind, record []byte) string {
	hash := sha256.Sum256(append([]byte(string(kind)+"|"), record...))
	return string(kind) + "-" + hex.EncodeToString(hash[:8])
}

type bulletinSource struct {
	kind  spaceweather.Kind
	fetch func(ctx context.Context, observed time.Time) ([]Bulletin, error)
}

func bulletinsOf[T any](kind spaceweather.Kind, get func(context.Context) ([]T, error), issued func(T) spaceweather.Timestamp) bulletinSource {
	return bulletinSource{
		kind: kind,
		fetch: func(ctx context.Context, observed time.Time) ([]Bulletin, error) {
			records, err := get(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]Bulletin, 0, len(records))
			for _, r := range records {
				b, err := newBulletin(kind, issued(r), r, observed)
				if err != nil {
					return nil, err
				}
				out = append(out, b)
			}
			return out, nil
		},
	}
}

func bulletinSources(src Source) []bulletinSource {
	return []bulletinSource{
		bulletinsOf(spaceweather.KindAuroraOutlook, src.GetAuroraOutlook,
			func(r spaceweather.AuroraOutlook) spaceweather.Timestamp { return r.IssueTime }),
		bulletinsOf(spaceweather.KindAuroraWatch, src.GetAuroraWatch,
			func(r spaceweather.AuroraWatch) spaceweather.Timestamp { return r.IssueTime }),
		bulletinsOf(spaceweather.KindAuroraAlert, src.GetAuroraAlert,
			func(r spaceweather.AuroraAlert) spaceweather.Timestamp { return r.StartTime }),
		bulletinsOf(spaceweather.KindMagAlert, src.GetMagAlert,
			func(r spaceweather.MagAlert) spaceweather.Timestamp { return r.StartTime }),
		bulletinsOf(spaceweather.KindMagWarning, src.GetMagWarning,
			func(r spaceweather.MagWarning) spaceweather.Timestamp { return r.IssueTime }),
	}
}
