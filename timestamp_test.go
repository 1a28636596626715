package spaceweather

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		value   *string
		want    Timestamp
		wantErr bool
	}{
		{"full timestamp", strPtr("2015-01-12 23:18:00"), ts(2015, time.January, 12, 23, 18, 0), false},
		{"date only is midnight", strPtr("2015-01-15"), ts(2015, time.January, 15, 0, 0, 0), false},
		{"missing key is absent", nil, Timestamp{}, false},
		{"iso layout rejected", strPtr("2015-01-12T23:18:00Z"), Timestamp{}, true},
		{"year only rejected", strPtr("2015"), Timestamp{}, true},
		{"empty rejected", strPtr(""), Timestamp{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimestamp("field", tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimestamp_AbsentVersusZero(t *testing.T) {
	var absent Timestamp
	zero := NewTimestamp(time.Time{})

	assert.False(t, absent.Present())
	assert.True(t, zero.Present())
	assert.False(t, absent.Equal(zero))
	assert.True(t, absent.Equal(Timestamp{}))
	assert.Equal(t, "<absent>", absent.String())

	_, ok := absent.Get()
	assert.False(t, ok)
}

func TestTimestamp_NormalizesToUTC(t *testing.T) {
	aest := time.FixedZone("AEST", 10*60*60)
	local := time.Date(2024, 5, 11, 10, 0, 0, 0, aest)

	got := NewTimestamp(local)
	assert.Equal(t, time.UTC, got.Time().Location())
	assert.Equal(t, "2024-05-11 00:00:00", got.String())
	assert.True(t, got.Equal(NewTimestamp(local.UTC())))
}

func TestTimestamp_JSON(t *testing.T) {
	rec := AIndex{ValidTime: ts(2021, time.December, 4, 0, 0, 0), Index: 5}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid_time":"2021-12-04T00:00:00Z","index":5}`, string(data))

	var back AIndex
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, rec.ValidTime.Equal(back.ValidTime))

	var alert MagAlert
	require.NoError(t, json.Unmarshal([]byte(`{"start_time":null,"valid_until":"2024-05-11 06:00:00","g_scale":2,"description":"major"}`), &alert))
	assert.False(t, alert.StartTime.Present())
	assert.Equal(t, ts(2024, time.May, 11, 6, 0, 0), alert.ValidUntil)

	data, err = json.Marshal(alert)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"start_time":null`)
}
