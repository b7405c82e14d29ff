package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/earsip/internal/apiclient"
	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/service"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondAPIError(w, &domain.APIError{
		Type:   getErrorType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: message,
	})
}

func respondAPIError(w http.ResponseWriter, apiErr *domain.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(apiErr)
}

// respondError maps a façade error onto an APIError body. Every body carries
// a message the admin panel can show as a notification.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.Int("status", apiErr.Status),
			zap.String("type", apiErr.Type),
			zap.Error(err),
		)
	}
	respondAPIError(w, apiErr)
}

func toAPIError(err error) *domain.APIError {
	var (
		validationErr *domain.ValidationError
		domainErr     *domain.DomainError
		upstreamErr   *apiclient.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return &domain.APIError{
			Type:   domain.ErrorTypeValidation,
			Title:  "Validation Error",
			Status: http.StatusBadRequest,
			Detail: validationErr.Error(),
			Errors: validationErr.Fields(),
		}
	case errors.Is(err, service.ErrInvalidID):
		return newAPIError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return newAPIError(http.StatusUnauthorized, "Sesi berakhir, silakan login kembali")
	case errors.Is(err, service.ErrEmptyExport):
		return &domain.APIError{Type: domain.ErrorTypeUpstream, Title: "Bad Gateway", Status: http.StatusBadGateway, Detail: err.Error()}
	case errors.As(err, &domainErr):
		return &domain.APIError{Type: domain.ErrorTypeUpstream, Title: "Bad Gateway", Status: http.StatusBadGateway, Detail: domainErr.Error()}
	case errors.As(err, &upstreamErr):
		return upstreamAPIError(upstreamErr)
	default:
		return newAPIError(http.StatusInternalServerError, "Terjadi kesalahan pada server")
	}
}

func upstreamAPIError(e *apiclient.Error) *domain.APIError {
	switch e.Kind {
	case apiclient.KindTimeout:
		return &domain.APIError{Type: domain.ErrorTypeTimeout, Title: "Gateway Timeout", Status: http.StatusGatewayTimeout, Detail: e.Message}
	case apiclient.KindNetwork, apiclient.KindProtocol:
		return &domain.APIError{Type: domain.ErrorTypeUpstream, Title: "Bad Gateway", Status: http.StatusBadGateway, Detail: e.Message}
	}

	status := e.Status
	switch {
	case status == http.StatusUnprocessableEntity && len(e.Fields) > 0:
		return &domain.APIError{
			Type:   domain.ErrorTypeValidation,
			Title:  "Validation Error",
			Status: status,
			Detail: e.Message,
			Errors: e.Fields,
		}
	case status >= http.StatusInternalServerError:
		return &domain.APIError{Type: domain.ErrorTypeUpstream, Title: "Bad Gateway", Status: http.StatusBadGateway, Detail: e.Message}
	case status < http.StatusBadRequest:
		status = http.StatusBadGateway
	}
	return newAPIError(status, e.Message)
}

func newAPIError(status int, detail string) *domain.APIError {
	return &domain.APIError{Type: getErrorType(status), Title: http.StatusText(status), Status: status, Detail: detail}
}

// getErrorType returns the appropriate error type for an HTTP status code
func getErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return domain.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return domain.ErrorTypeForbidden
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusConflict:
		return domain.ErrorTypeConflict
	case http.StatusUnprocessableEntity:
		return domain.ErrorTypeValidation
	case http.StatusGatewayTimeout:
		return domain.ErrorTypeTimeout
	case http.StatusBadGateway:
		return domain.ErrorTypeUpstream
	default:
		return domain.ErrorTypeInternal
	}
}

// decodeJSON reads a JSON request body into target. An empty body leaves target untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return false
	}
	return true
}

// parseID reads the {id} path parameter
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid ID format")
		return 0, false
	}
	return id, true
}
