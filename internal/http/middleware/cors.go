package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
	"github.com/straye-as/earsip/internal/config"
	"go.uber.org/zap"
)

// CORS returns the cross-origin policy for the admin API. The panel is served
// same-origin, so this only matters for a dev server on another port.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	devLike := environment == "" || environment == "development" || environment == "local"
	wildcard := slices.Contains(cfg.AllowedOrigins, "*")

	switch {
	case wildcard || (len(cfg.AllowedOrigins) == 0 && devLike):
		if !devLike {
			logger.Warn("CORS allows every origin outside development", zap.String("environment", environment))
		}
		// Echo the origin; "*" cannot be combined with credentials
		options.AllowOriginFunc = func(_ *http.Request, origin string) bool { return origin != "" }
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS restricted to configured origins", zap.Strings("origins", cfg.AllowedOrigins))
	default:
		// An empty AllowedOrigins list means "*" to go-chi/cors
		options.AllowOriginFunc = func(*http.Request, string) bool { return false }
		logger.Info("cross-origin requests disabled", zap.String("environment", environment))
	}

	return cors.Handler(options)
}
