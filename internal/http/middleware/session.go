package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/session"
	"go.uber.org/zap"
)

// SessionGate admits a request only when its session cookie matches the
// server session token and, for a JWT token, the token has not expired
type SessionGate struct {
	session *session.Session
	cfg     *config.AuthConfig
	now     func() time.Time
	logger  *zap.Logger
}

// NewSessionGate creates a SessionGate over sess
func NewSessionGate(sess *session.Session, cfg *config.AuthConfig, logger *zap.Logger) *SessionGate {
	return &SessionGate{session: sess, cfg: cfg, now: time.Now, logger: logger}
}

// Allow reports whether r may reach an authenticated route
func (g *SessionGate) Allow(r *http.Request) bool {
	cookie, err := r.Cookie(g.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	token := g.session.Token()
	if token == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(token)) != 1 {
		return false
	}
	if exp, ok := TokenExpiry(token); ok && !g.now().Before(exp) {
		g.session.Clear("token expired")
		return false
	}
	return true
}

// Require rejects requests without a valid session with 401
func (g *SessionGate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Allow(r) {
			g.logger.Debug("session gate denied request", zap.String("path", r.URL.Path))
			if _, err := r.Cookie(g.cfg.CookieName); err == nil {
				http.SetCookie(w, ExpiredSessionCookie(g.cfg))
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(domain.APIError{
				Type:   domain.ErrorTypeUnauthorized,
				Title:  http.StatusText(http.StatusUnauthorized),
				Status: http.StatusUnauthorized,
				Detail: "Sesi berakhir, silakan login kembali",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ExpireOnLogout expires the session cookie on any response written after
// the server session was dropped, e.g. by an upstream 401
func (g *SessionGate) ExpireOnLogout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(g.cfg.CookieName); err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(&cookieExpiringWriter{ResponseWriter: w, gate: g}, r)
	})
}

type cookieExpiringWriter struct {
	http.ResponseWriter
	gate        *SessionGate
	wroteHeader bool
}

func (cw *cookieExpiringWriter) WriteHeader(code int) {
	if !cw.wroteHeader {
		cw.wroteHeader = true
		if !cw.gate.session.Authenticated() && cw.Header().Get("Set-Cookie") == "" {
			http.SetCookie(cw.ResponseWriter, ExpiredSessionCookie(cw.gate.cfg))
		}
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *cookieExpiringWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	return cw.ResponseWriter.Write(b)
}

func (cw *cookieExpiringWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// SessionCookie builds the cookie carrying token. It expires with the token
// when the token is a JWT.
func SessionCookie(cfg *config.AuthConfig, token string) *http.Cookie {
	cookie := &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if exp, ok := TokenExpiry(token); ok {
		cookie.Expires = exp
	}
	return cookie
}

// ExpiredSessionCookie builds the cookie that clears the session cookie
func ExpiredSessionCookie(cfg *config.AuthConfig) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// Opaque tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
