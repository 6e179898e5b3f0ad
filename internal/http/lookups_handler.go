package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/service"
)

// LookupsHandler option lists and KPI totals.
type LookupsHandler struct {
	lookups *service.LookupService
	kpis    *service.KPIService
	logger  *zap.Logger
}

func NewLookupsHandler(lookups *service.LookupService, kpis *service.KPIService, logger *zap.Logger) *LookupsHandler {
	return &LookupsHandler{lookups: lookups, kpis: kpis, logger: logger}
}

func (h *LookupsHandler) Users(w http.ResponseWriter, r *http.Request) {
	opts, err := h.lookups.UsersOptions(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(opts))
}

func (h *LookupsHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	totals, err := h.kpis.Pending(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(totals))
}
