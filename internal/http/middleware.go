package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xfinance-dashboard/internal/domain"
	"xfinance-dashboard/internal/gateway"
)

const HeaderRequestID = "X-Request-Id"

type actorKey struct{}

// actorFromHeaders identity comes from the fronting proxy; no role means anonymous.
func actorFromHeaders(r *http.Request) (domain.Actor, bool) {
	role := r.Header.Get(gateway.HeaderUserRole)
	if role == "" {
		return domain.Actor{}, false
	}
	id, _ := strconv.ParseInt(r.Header.Get(gateway.HeaderUserID), 10, 64)
	return domain.Actor{
		UserID: id,
		Role:   role,
		Email:  r.Header.Get(gateway.HeaderUserEmail),
	}, true
}

func actorFrom(ctx context.Context) domain.Actor {
	a, _ := ctx.Value(actorKey{}).(domain.Actor)
	return a
}

// requireActor rejects requests without a role header.
func requireActor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromHeaders(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, Fail("Usuário não autenticado"))
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withRequestLog tags each request with an id and logs its outcome.
func withRequestLog(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, reqID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Debug("HTTP request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
