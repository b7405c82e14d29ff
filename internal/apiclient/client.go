// Package apiclient executes calls against the upstream archive API with a
// per-attempt timeout, bounded retries for transient failures and session
// invalidation on 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/logger"
	"github.com/straye-as/earsip/internal/metrics"
	"github.com/straye-as/earsip/internal/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Header names sent on every upstream call
const (
	HeaderCorrelationID = "X-Correlation-Id"
	HeaderClientName    = "X-Client-Name"
	HeaderClientVersion = "X-Client-Version"
)

const defaultReadRetries = 2

// Validator checks a JSON body before it is returned to the caller
type Validator interface {
	Validate(data []byte) error
}

// Request describes one logical upstream call
type Request struct {
	Method string
	// Path is relative to the configured base URL and starts with "/"
	Path      string
	Query     url.Values
	Body      any
	Validator Validator
	// Retries overrides the default number of additional attempts
	Retries *int
}

// Download is the raw payload of a binary response
type Download struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Client is the upstream request executor
type Client struct {
	baseURL    string
	http       *http.Client
	session    *session.Session
	timeout    time.Duration
	schedule   []time.Duration
	appName    string
	appVersion string
	reporter   Reporter
	warner     Warner
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time
}

// Option customizes a Client
type Option func(*Client)

// WithTransport routes requests through rt, e.g. the in-process fixture backend
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http = &http.Client{Transport: rt} }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithReporter sets the collaborator receiving server-class failures
func WithReporter(r Reporter) Option {
	return func(c *Client) { c.reporter = r }
}

// WithWarner sets the collaborator receiving 403 notices
func WithWarner(w Warner) Option {
	return func(c *Client) { c.warner = w }
}

// WithMetrics records attempts and retries on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTimeout overrides the per-attempt budget
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithSchedule overrides the retry delay schedule
func WithSchedule(schedule ...time.Duration) Option {
	return func(c *Client) { c.schedule = schedule }
}

// WithSleeper replaces the backoff wait, used by tests to observe delays
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// WithClock replaces the clock used for HTTP-date Retry-After values
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a request executor bound to sess
func New(cfg *config.UpstreamConfig, appCfg *config.AppConfig, sess *session.Session, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		http:       &http.Client{},
		session:    sess,
		timeout:    cfg.TimeoutDuration(),
		schedule:   DefaultSchedule,
		appName:    appCfg.Name,
		appVersion: appCfg.Version,
		tracer:     otel.Tracer("github.com/straye-as/earsip/internal/apiclient"),
		logger:     logger,
		sleep:      sleepContext,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reporter == nil {
		c.reporter = NewLogReporter(logger)
	}
	if c.warner == nil {
		c.warner = NewLogWarner(logger)
	}
	if c.timeout <= 0 {
		c.timeout = 15 * time.Second
	}
	return c
}

// Session returns the session whose token is sent on every call
func (c *Client) Session() *session.Session {
	return c.session
}

// BaseURL returns the upstream base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Transport returns the round tripper upstream calls go through
func (c *Client) Transport() http.RoundTripper {
	if c.http.Transport == nil {
		return http.DefaultTransport
	}
	return c.http.Transport
}

// Ping checks that the upstream answers at its base URL. Any status below
// 500 counts as reachable; no retries are made.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodGet, Request{Path: "/"}, nil, ulid.Make().String(), "application/json")
	if err != nil {
		return err
	}
	if resp.status >= 500 {
		return httpError(http.MethodGet, "/", resp.status, resp.body)
	}
	return nil
}

// Do performs req with the retry policy and returns the JSON body.
// A nil body with a nil error means the upstream answered 204.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	method := normalizeMethod(req.Method)
	retries := retriesFor(method, req.Retries)
	correlationID := ulid.Make().String()
	log := logger.WithUpstream(c.logger, method, req.Path, correlationID)

	ctx, span := c.tracer.Start(ctx, "apiclient.Do", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("earsip.endpoint", req.Path),
			attribute.String("earsip.correlation_id", correlationID),
		))
	defer span.End()

	payload, err := encodeBody(req.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		span.SetAttributes(attribute.Int("earsip.attempts", attempt+1))

		res, apiErr := c.send(ctx, method, req, payload, correlationID, "application/json")
		if apiErr != nil {
			log.Warn("upstream call failed", zap.String("kind", string(apiErr.Kind)), zap.Error(apiErr.Err))
			return nil, c.fail(span, apiErr)
		}
		span.SetAttributes(attribute.Int("http.response.status_code", res.status))

		if res.status >= 200 && res.status < 300 {
			body, failure := parseBody(res.status, res.header, res.body)
			if failure != nil {
				return nil, c.fail(span, protocolError(method, req.Path, res.status, failure, res.body))
			}
			if req.Validator != nil && body != nil {
				if err := req.Validator.Validate(body); err != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, "response validation failed")
					return nil, err
				}
			}
			return body, nil
		}

		httpErr := httpError(method, req.Path, res.status, res.body)
		c.authSideEffects(ctx, httpErr)

		if attempt < retries && retryable(res.status) {
			wait := c.backoff(attempt, res.header)
			c.metrics.IncUpstreamRetry(method, metrics.EndpointLabel(req.Path))
			log.Info("retrying upstream call",
				zap.Int("status", res.status),
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
			)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, c.fail(span, networkError(method, req.Path, err))
			}
			continue
		}

		c.report(ctx, httpErr)
		return nil, c.fail(span, httpErr)
	}
}

// Download performs a single attempt expecting a binary body
func (c *Client) Download(ctx context.Context, req Request) (*Download, error) {
	method := normalizeMethod(req.Method)
	correlationID := ulid.Make().String()

	ctx, span := c.tracer.Start(ctx, "apiclient.Download", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("earsip.endpoint", req.Path),
			attribute.String("earsip.correlation_id", correlationID),
		))
	defer span.End()

	payload, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	res, apiErr := c.send(ctx, method, req, payload, correlationID, "application/octet-stream")
	if apiErr != nil {
		return nil, c.fail(span, apiErr)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", res.status))

	if res.status < 200 || res.status >= 300 {
		httpErr := httpError(method, req.Path, res.status, res.body)
		c.authSideEffects(ctx, httpErr)
		c.report(ctx, httpErr)
		return nil, c.fail(span, httpErr)
	}

	return &Download{
		Data:        res.body,
		ContentType: res.header.Get("Content-Type"),
		Filename:    attachmentName(res.header.Get("Content-Disposition")),
	}, nil
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// send performs one attempt bounded by the per-attempt timeout
func (c *Client) send(ctx context.Context, method string, req Request, payload []byte, correlationID, accept string) (*response, *Error) {
	endpoint := metrics.EndpointLabel(req.Path)
	start := time.Now()

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, method, c.url(req), body)
	if err != nil {
		return nil, networkError(method, req.Path, err)
	}
	c.setHeaders(attemptCtx, httpReq, correlationID, accept, payload != nil)

	classify := func(err error) *Error {
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			c.metrics.ObserveUpstream(method, endpoint, "timeout", time.Since(start))
			return timeoutError(method, req.Path, c.timeout)
		}
		c.metrics.ObserveUpstream(method, endpoint, "network", time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return networkError(method, req.Path, ctxErr)
		}
		return networkError(method, req.Path, err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}

	c.metrics.ObserveUpstream(method, endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))
	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

func (c *Client) setHeaders(ctx context.Context, r *http.Request, correlationID, accept string, hasBody bool) {
	r.Header.Set("Accept", accept)
	r.Header.Set(HeaderCorrelationID, correlationID)
	r.Header.Set(HeaderClientName, c.appName)
	r.Header.Set(HeaderClientVersion, c.appVersion)
	if hasBody {
		r.Header.Set("Content-Type", "application/json")
	}
	// Read per attempt so a token cleared by a concurrent 401 is not resent
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(r.Header))
}

func (c *Client) url(req Request) string {
	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

func (c *Client) backoff(attempt int, header http.Header) time.Duration {
	if d, ok := retryAfter(header.Get("Retry-After"), c.now()); ok && d > 0 {
		return d
	}
	return scheduleDelay(c.schedule, attempt)
}

func (c *Client) authSideEffects(ctx context.Context, e *Error) {
	switch e.Status {
	case http.StatusUnauthorized:
		if c.session != nil {
			c.session.Clear("unauthorized")
		}
	case http.StatusForbidden:
		c.warner.Warn(ctx, "Akses ditolak: "+e.Message)
	}
}

// report forwards server-class failures without waiting for the collaborator
func (c *Client) report(ctx context.Context, e *Error) {
	if e.Status < 500 {
		return
	}
	endpoint := metrics.EndpointLabel(e.Endpoint)
	c.metrics.IncErrorReport(endpoint, e.Status)

	tags := map[string]string{
		"endpoint": endpoint,
		"method":   e.Method,
		"status":   strconv.Itoa(e.Status),
	}
	go c.reporter.ReportError(context.WithoutCancel(ctx), e, tags)
}

func (c *Client) fail(span trace.Span, e *Error) error {
	span.RecordError(e)
	span.SetStatus(codes.Error, string(e.Kind))
	return e
}

func normalizeMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(method)
}

func retriesFor(method string, override *int) int {
	if override != nil {
		if *override < 0 {
			return 0
		}
		return *override
	}
	if method == http.MethodGet {
		return defaultReadRetries
	}
	return 0
}

// Retries is a helper for Request.Retries
func Retries(n int) *int {
	return &n
}
