package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/service"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// writeServiceError maps service error kinds onto HTTP status codes.
// Anything unclassified is logged and reported as a generic failure.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, service.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, service.ErrNotFound):
			status = http.StatusNotFound
		}
		writeJSON(w, status, Fail(svcErr.Message))
		return
	}
	logger.Error("Request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, Fail("Erro interno do servidor"))
}
