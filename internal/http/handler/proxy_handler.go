package handler

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/straye-as/earsip/internal/apiclient"
	"github.com/straye-as/earsip/internal/session"
	"go.uber.org/zap"
)

// ProxyPrefix is stripped from proxied paths before they are sent upstream
const ProxyPrefix = "/api/proxy"

// ProxyHandler forwards raw calls to the upstream with the session bearer
// token, for screens that need an endpoint the façade does not cover
type ProxyHandler struct {
	proxy   *httputil.ReverseProxy
	session *session.Session
	logger  *zap.Logger
}

// NewProxyHandler creates a proxy over client's base URL and transport
func NewProxyHandler(client *apiclient.Client, logger *zap.Logger) (*ProxyHandler, error) {
	target, err := url.Parse(client.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse upstream base URL: %w", err)
	}

	h := &ProxyHandler{session: client.Session(), logger: logger}
	h.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, ProxyPrefix)
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.SetXForwarded()

			pr.Out.Header.Del("Cookie")
			pr.Out.Header.Del("Authorization")
			if token := h.session.Token(); token != "" {
				pr.Out.Header.Set("Authorization", "Bearer "+token)
			}
			pr.Out.Header.Set("Accept", "application/json")
		},
		Transport: client.Transport(),
		ModifyResponse: func(resp *http.Response) error {
			if resp.StatusCode == http.StatusUnauthorized {
				h.session.Clear("unauthorized")
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			h.logger.Warn("proxy request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			respondWithError(w, http.StatusBadGateway, "Upstream tidak dapat dihubungi")
		},
	}
	return h, nil
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.proxy.ServeHTTP(w, r)
}
