package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gramgram/src/domain"
	"gramgram/src/services/likeableperson"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("Failed to write JSON response", "error", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotVerified), errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEdge):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoChange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLocked):
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}

// writeError traduz os erros do serviço em respostas. Falhas inesperadas são
// logadas e escondidas atrás da mensagem genérica.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := ErrorDTO{
		Error: err.Error(),
		Kind:  likeableperson.Outcome(err),
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body.Error = domain.ErrUnavailableServer.Error()
	}

	var lockedErr *domain.LockedError
	if errors.As(err, &lockedErr) {
		unlockDate := lockedErr.ModifyUnlockDate
		body.ModifyUnlockDate = &unlockDate
		body.Remaining = lockedErr.Remaining
	}

	writeJSON(w, status, body)
}
