package fixture

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/earsip/internal/config"
	"go.uber.org/zap"
)

// BaseURL is the upstream base URL used while the fixture backend is active.
// Requests never leave the process, so the host only has to be well-formed.
const BaseURL = "http://fixture.earsip.internal"

// Transport is an http.RoundTripper that serves requests from an in-process
// handler instead of the network
type Transport struct {
	handler http.Handler
}

// NewTransport routes every request to handler
func NewTransport(handler http.Handler) *Transport {
	return &Transport{handler: handler}
}

// RoundTrip serves req and honours its context like a network transport would
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The caller may itself be running inside a chi handler. Its route
	// context must not leak in, or the fixture router acts as a sub-router.
	inbound := req.Clone(context.WithValue(ctx, chi.RouteCtxKey, (*chi.Context)(nil)))
	if inbound.Body == nil {
		inbound.Body = http.NoBody
	}
	inbound.RequestURI = req.URL.RequestURI()
	inbound.RemoteAddr = "127.0.0.1:0"

	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.handler.ServeHTTP(rec, inbound)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// Backend bundles the fixture store with its HTTP surface
type Backend struct {
	Store     *Store
	Handler   *Handler
	Transport *Transport
}

// NewBackend seeds a fresh fixture database and wires its handler and transport
func NewBackend(cfg *config.MockConfig, logger *zap.Logger) (*Backend, error) {
	store, err := NewStore(cfg, nil, logger)
	if err != nil {
		return nil, err
	}
	handler, err := NewHandler(store, cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create fixture handler: %w", err)
	}
	return &Backend{Store: store, Handler: handler, Transport: NewTransport(handler)}, nil
}

// Close releases the fixture database
func (b *Backend) Close() error {
	return b.Store.Close()
}
