package apiclient

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleDelay(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 300 * time.Millisecond},
		{attempt: 1, want: 800 * time.Millisecond},
		{attempt: 2, want: 1600 * time.Millisecond},
		{attempt: 3, want: 3200 * time.Millisecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, scheduleDelay(DefaultSchedule, tt.attempt))
	}
}

func TestScheduleDelayIsMonotonic(t *testing.T) {
	prev := time.Duration(0)
	for attempt := 0; attempt < 8; attempt++ {
		d := scheduleDelay(DefaultSchedule, attempt)
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}
}

func TestScheduleDelayIsCapped(t *testing.T) {
	prev := time.Duration(0)
	for attempt := 0; attempt < 200; attempt++ {
		d := scheduleDelay(DefaultSchedule, attempt)
		assert.GreaterOrEqual(t, d, prev, attempt)
		assert.LessOrEqual(t, d, MaxBackoff, attempt)
		prev = d
	}
	assert.Equal(t, MaxBackoff, scheduleDelay(DefaultSchedule, 64))
	assert.Equal(t, MaxBackoff, scheduleDelay([]time.Duration{time.Hour}, 0))
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		value  string
		want   time.Duration
		wantOK bool
	}{
		{name: "seconds", value: "2", want: 2 * time.Second, wantOK: true},
		{name: "fractional", value: "1.5", want: 1500 * time.Millisecond, wantOK: true},
		{name: "http date", value: now.Add(10 * time.Second).Format(http.TimeFormat), want: 10 * time.Second, wantOK: true},
		{name: "past date", value: now.Add(-time.Minute).Format(http.TimeFormat), want: -time.Minute, wantOK: true},
		{name: "huge seconds", value: "1e20", want: MaxBackoff, wantOK: true},
		{name: "above cap", value: "3600", want: MaxBackoff, wantOK: true},
		{name: "far future date", value: now.Add(240 * time.Hour).Format(http.TimeFormat), want: MaxBackoff, wantOK: true},
		{name: "negative seconds", value: "-1e300", want: 0, wantOK: true},
		{name: "not a number", value: "NaN"},
		{name: "empty", value: ""},
		{name: "garbage", value: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := retryAfter(tt.value, now)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	for _, status := range []int{429, 500, 502, 503, 599} {
		assert.True(t, retryable(status), status)
	}
	for _, status := range []int{200, 400, 401, 403, 404, 409, 422, 600} {
		assert.False(t, retryable(status), status)
	}
}

func TestHTTPErrorFields(t *testing.T) {
	e := httpError("POST", "/surat-masuk", 422, []byte(`{"message":"The given data was invalid.","errors":{"nomor_surat":["Nomor surat sudah dipakai"]}}`))

	assert.Equal(t, "The given data was invalid.", e.Message)
	assert.Equal(t, map[string]string{"nomor_surat": "Nomor surat sudah dipakai"}, e.Fields)
}
