package httpadapter

import (
	"net/http"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
	"github.com/kirillkom/hrdocs-compliance/internal/infrastructure/resilience"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrDocumentNotFound), domain.IsKind(err, domain.ErrProfileNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrVersionConflict):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTemporary), resilience.IsCircuitOpen(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// saveOutcome labels document save metrics.
func saveOutcome(err error) string {
	switch mapErrorToHTTPStatus(err) {
	case http.StatusBadRequest, http.StatusNotFound:
		return "invalid"
	case http.StatusConflict:
		return "conflict"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}
