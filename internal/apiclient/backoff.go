package apiclient

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultSchedule is the wait before the first and second retry.
// Later retries double the last entry.
var DefaultSchedule = []time.Duration{300 * time.Millisecond, 800 * time.Millisecond}

// MaxBackoff bounds every wait between attempts, scheduled or upstream-requested
const MaxBackoff = time.Minute

// retryable reports whether a status is worth another attempt
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

// scheduleDelay returns the wait before retry number attempt (zero-based)
func scheduleDelay(schedule []time.Duration, attempt int) time.Duration {
	if len(schedule) == 0 {
		schedule = DefaultSchedule
	}
	if attempt < len(schedule) {
		return capBackoff(schedule[attempt])
	}
	d := capBackoff(schedule[len(schedule)-1])
	for i := len(schedule) - 1; i < attempt && d < MaxBackoff; i++ {
		d = capBackoff(d * 2)
	}
	return d
}

func capBackoff(d time.Duration) time.Duration {
	switch {
	case d > MaxBackoff:
		return MaxBackoff
	case d < 0:
		return 0
	}
	return d
}

// retryAfter parses a Retry-After header as delta-seconds or an HTTP-date
func retryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		switch {
		case math.IsNaN(secs):
			return 0, false
		case secs <= 0:
			return 0, true
		case secs >= MaxBackoff.Seconds():
			return MaxBackoff, true
		}
		return time.Duration(secs * float64(time.Second)), true
	}
	if at, err := http.ParseTime(value); err == nil {
		d := at.Sub(now)
		if d > MaxBackoff {
			d = MaxBackoff
		}
		return d, true
	}
	return 0, false
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
