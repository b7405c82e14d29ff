package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/straye-as/earsip/internal/apiclient"
	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/metrics"
	"github.com/straye-as/earsip/internal/schema"
	"github.com/straye-as/earsip/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (f *fakeSleeper) Sleep(_ context.Context, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits = append(f.waits, d)
	return nil
}

func (f *fakeSleeper) Waits() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.waits...)
}

type fakeReporter struct {
	reports chan map[string]string
}

func (f *fakeReporter) ReportError(_ context.Context, _ error, tags map[string]string) {
	f.reports <- tags
}

type fakeWarner struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeWarner) Warn(_ context.Context, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}

// sequenceServer answers with the given statuses in order, repeating the last one
func sequenceServer(t *testing.T, statuses []int, hits *atomic.Int32, header http.Header) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(hits.Add(1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statuses[n])
		_, _ = w.Write([]byte(`{"message":"attempt","data":{"id":1}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL string, opts ...apiclient.Option) (*apiclient.Client, *session.Session) {
	t.Helper()
	sess := session.New(session.NewMemoryStore(), zap.NewNop())
	cfg := &config.UpstreamConfig{BaseURL: baseURL, Timeout: 15}
	app := &config.AppConfig{Name: "earsip-test", Version: "1.2.3"}
	return apiclient.New(cfg, app, sess, zap.NewNop(), opts...), sess
}

func TestDo_RetriesServerErrorsThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := sequenceServer(t, []int{500, 500, 200}, &hits, nil)
	sleeper := &fakeSleeper{}
	m := metrics.New(prometheus.NewRegistry())

	client, _ := newClient(t, srv.URL, apiclient.WithSleeper(sleeper.Sleep), apiclient.WithMetrics(m))
	body, err := client.Do(context.Background(), apiclient.Request{Path: "/surat-masuk"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"attempt","data":{"id":1}}`, string(body))
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, []time.Duration{300 * time.Millisecond, 800 * time.Millisecond}, sleeper.Waits())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamRetryTotal.WithLabelValues("GET", "/surat-masuk")))
}

func TestDo_ClientErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := sequenceServer(t, []int{404}, &hits, nil)

	client, _ := newClient(t, srv.URL, apiclient.WithSleeper((&fakeSleeper{}).Sleep))
	_, err := client.Do(context.Background(), apiclient.Request{Method: http.MethodGet, Path: "/surat-masuk/9"})

	var apiErr *apiclient.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apiclient.KindHTTP, apiErr.Kind)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "attempt", apiErr.Message)
	assert.True(t, errors.Is(err, apiclient.ErrHTTP))
	assert.Equal(t, int32(1), hits.Load())
}

func TestDo_RetriesExhausted(t *testing.T) {
	var hits atomic.Int32
	srv := sequenceServer(t, []int{503}, &hits, nil)
	sleeper := &fakeSleeper{}
	reporter := &fakeReporter{reports: make(chan map[string]string, 1)}

	client, _ := newClient(t, srv.URL, apiclient.WithSleeper(sleeper.Sleep), apiclient.WithReporter(reporter))
	_, err := client.Do(context.Background(), apiclient.Request{Path: "/dashboard/metrics"})

	assert.Equal(t, 503, apiclient.StatusOf(err))
	assert.Equal(t, int32(3), hits.Load())

	select {
	case tags := <-reporter.reports:
		assert.Equal(t, "/dashboard/metrics", tags["endpoint"])
		assert.Equal(t, "503", tags["status"])
	case <-time.After(time.Second):
		t.Fatal("server error was not reported")
	}
}

func TestDo_HonorsRetryAfterSeconds(t *testing.T) {
	var hits atomic.Int32
	srv := sequenceServer(t, []int{429, 200}, &hits, http.Header{"Retry-After": []string{"2"}})
	sleeper := &fakeSleeper{}

	client, _ := newClient(t, srv.URL, apiclient.WithSleeper(sleeper.Sleep))
	_, err := client.Do(context.Background(), apiclient.Request{Path: "/categories"})

	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeper.Waits())
}

func TestDo_HonorsRetryAfterDate(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	header := http.Header{"Retry-After": []string{now.Add(3 * time.Second).Format(http.TimeFormat)}}

	var hits atomic.Int32
	srv := sequenceServer(t, []int{503, 200}, &hits, header)
	sleeper := &fakeSleeper{}

	client, _ := newClient(t, srv.URL,
		apiclient.WithSleeper(sleeper.Sleep),
		apiclient.WithClock(func() time.Time { return now }),
	)
	_, err := client.Do(context.Background(), apiclient.Request{Path: "/categories"})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{3 * time.Second}, sleeper.Waits())
}

func TestDo_NonPositiveRetryAfterFallsBackToSchedule(t *testing.T) {
	var hits atomic.Int32
	srv := sequenceServer(t, []int{429, 200}, &hits, http.Header{"Retry-After": []string{"0"}})
	sleeper := &fakeSleeper{}

	client, _ := newClient(t, srv.URL, apiclient.WithSleeper(sleeper.Sleep))
	_, err := client.Do(context.Background(), apiclient.Request{Path: "/categories"})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{300 * time.Millisecond}, sleeper.Waits())
}

func TestDo_WritesAreNotRetriedByDefault(t *testing.T) {
	var hits atomic.Int32
	srv := sequenceServer(t, []int{500, 200}, &hits, nil)

	client, _ := newClient(t, srv.URL, apiclient.WithSleeper((&fakeSleeper{}).Sleep),
		apiclient.WithReporter(&fakeReporter{reports: make(chan map[string]string, 1)}))
	_, err := client.Do(context.Background(), apiclient.Request{Method: http.MethodPost, Path: "/surat-masuk", Body: map[string]any{"perihal": "x"}})

	assert.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())

	hits.Store(0)
	_, err = client.Do(context.Background(), apiclient.Request{Method: http.MethodPost, Path: "/surat-masuk", Retries: apiclient.Retries(1)})
	assert.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestDo_UnauthorizedClearsSession(t *testing.T) {
	var hits atomic.Int32
	srv := sequenceServer(t, []int{401}, &hits, nil)

	client, sess := newClient(t, srv.URL)
	sess.SetToken("secret-token")

	var events []session.Event
	sess.Subscribe(func(e session.Event) { events = append(events, e) })

	_, err := client.Do(context.Background(), apiclient.Request{Path: "/user"})

	assert.Equal(t, 401, apiclient.StatusOf(err))
	assert.Equal(t, int32(1), hits.Load())
	assert.False(t, sess.Authenticated())
	require.Len(t, events, 1)
	assert.Equal(t, session.EventUnauthenticated, events[0].Kind)
	assert.Equal(t, "unauthorized", events[0].Reason)
}

func TestDo_ForbiddenWarnsAndKeepsToken(t *testing.T) {
	var hits atomic.Int32
	srv := sequenceServer(t, []int{403}, &hits, nil)
	warner := &fakeWarner{}

	client, sess := newClient(t, srv.URL, apiclient.WithWarner(warner))
	sess.SetToken("secret-token")

	_, err := client.Do(context.Background(), apiclient.Request{Method: http.MethodDelete, Path: "/categories/1"})

	assert.Equal(t, 403, apiclient.StatusOf(err))
	assert.True(t, sess.Authenticated())
	assert.Len(t, warner.messages, 1)
}

func TestDo_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "html on success", contentType: "text/html", body: "<html>maintenance</html>"},
		{name: "malformed json", contentType: "application/json", body: `{"data":`},
		{name: "missing content type", contentType: "", body: `{"data":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header()["Content-Type"] = []string{tt.contentType}
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, _ := newClient(t, srv.URL)
			_, err := client.Do(context.Background(), apiclient.Request{Path: "/user"})

			assert.True(t, errors.Is(err, apiclient.ErrProtocol))
			assert.Equal(t, 200, apiclient.StatusOf(err))
		})
	}
}

func TestDo_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, _ := newClient(t, srv.URL)
	body, err := client.Do(context.Background(), apiclient.Request{Method: http.MethodDelete, Path: "/surat-keluar/1"})

	assert.NoError(t, err)
	assert.Nil(t, body)
}

func TestDo_TimeoutIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client, _ := newClient(t, srv.URL, apiclient.WithTimeout(50*time.Millisecond))
	_, err := client.Do(context.Background(), apiclient.Request{Path: "/surat-masuk"})

	var apiErr *apiclient.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apiclient.KindTimeout, apiErr.Kind)
	assert.Equal(t, http.StatusRequestTimeout, apiErr.Status)
	assert.True(t, errors.Is(err, apiclient.ErrTimeout))
	assert.Equal(t, int32(1), hits.Load())
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client, _ := newClient(t, baseURL)
	_, err := client.Do(context.Background(), apiclient.Request{Path: "/user"})

	assert.True(t, errors.Is(err, apiclient.ErrNetwork))
	assert.Equal(t, 0, apiclient.StatusOf(err))
}

func TestDo_CallerCancellation(t *testing.T) {
	var hits atomic.Int32
	srv := sequenceServer(t, []int{200}, &hits, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client, _ := newClient(t, srv.URL)
	_, err := client.Do(ctx, apiclient.Request{Path: "/user"})

	assert.True(t, errors.Is(err, apiclient.ErrNetwork))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDo_SendsHeadersAndQuery(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client, sess := newClient(t, srv.URL+"/api/")
	sess.SetToken("tok-123")

	_, err := client.Do(context.Background(), apiclient.Request{
		Path:  "/surat-masuk",
		Query: url.Values{"q": []string{"rapat desa"}, "page": []string{"2"}},
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/api/surat-masuk", got.URL.Path)
	assert.Equal(t, "rapat desa", got.URL.Query().Get("q"))
	assert.Equal(t, "Bearer tok-123", got.Header.Get("Authorization"))
	assert.Equal(t, "earsip-test", got.Header.Get(apiclient.HeaderClientName))
	assert.Equal(t, "1.2.3", got.Header.Get(apiclient.HeaderClientVersion))
	assert.Len(t, got.Header.Get(apiclient.HeaderCorrelationID), 26)
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
}

func TestDo_ValidatorRejectsShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"just a string"`))
	}))
	defer srv.Close()

	client, _ := newClient(t, srv.URL)
	_, err := client.Do(context.Background(), apiclient.Request{Path: "/surat-masuk/1", Validator: schema.RawRecord})

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "raw_record", ve.Schema)
}

func TestDownload(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("fail") != "" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "application/octet-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="laporan-all-2025-01.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	client, _ := newClient(t, srv.URL, apiclient.WithReporter(&fakeReporter{reports: make(chan map[string]string, 1)}))

	dl, err := client.Download(context.Background(), apiclient.Request{Method: http.MethodPost, Path: "/reports/export", Body: map[string]any{"entity": "all"}})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), dl.Data)
	assert.Equal(t, "application/pdf", dl.ContentType)
	assert.Equal(t, "laporan-all-2025-01.pdf", dl.Filename)

	hits.Store(0)
	_, err = client.Download(context.Background(), apiclient.Request{Path: "/reports/export", Query: url.Values{"fail": []string{"1"}}})
	assert.Equal(t, http.StatusBadGateway, apiclient.StatusOf(err))
	assert.Equal(t, int32(1), hits.Load())
}
