package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/gateway"
	"xfinance-dashboard/internal/grid"
	"xfinance-dashboard/internal/service"
)

// InspectionsHandler record set reads, single-field edits, history and export.
type InspectionsHandler struct {
	inspections *service.InspectionService
	audit       *service.AuditService
	projector   *grid.Projector
	logger      *zap.Logger
}

func NewInspectionsHandler(inspections *service.InspectionService, audit *service.AuditService, projector *grid.Projector, logger *zap.Logger) *InspectionsHandler {
	return &InspectionsHandler{inspections: inspections, audit: audit, projector: projector, logger: logger}
}

// List GET /api/inspections
func (h *InspectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.inspections.List(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(recs))
}

// UpdateField PATCH /api/inspections/{id}
func (h *InspectionsHandler) UpdateField(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, Fail("ID de inspeção inválido"))
		return
	}
	var body gateway.FieldUpdate
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("Corpo da requisição inválido"))
		return
	}
	if body.Field == "" {
		writeJSON(w, http.StatusBadRequest, Fail("Campo não informado"))
		return
	}

	res, err := h.inspections.UpdateField(r.Context(), actorFrom(r.Context()), service.UpdateFieldRequest{
		IDPrinc: id,
		Field:   body.Field,
		Value:   body.Value,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

// Audit GET /api/inspections/{id}/audit
func (h *InspectionsHandler) Audit(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, Fail("ID de inspeção inválido"))
		return
	}
	entries, err := h.audit.List(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(entries))
}

// Export GET /api/inspections/export?f.<column>=<needle>&sort=<column>&desc=1
// Every filtered row is exported, not only the current page.
func (h *InspectionsHandler) Export(w http.ResponseWriter, r *http.Request) {
	recs, err := h.inspections.List(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	q := queryFromRequest(r)
	filtered := h.projector.Sorted(h.projector.Filter(recs, q.Filters), q.Sort)
	rows := make([]grid.Row, 0, len(filtered))
	for _, rec := range filtered {
		rows = append(rows, h.projector.Decorate(rec))
	}

	data, err := GenerateGridExport(rows)
	if err != nil {
		h.logger.Error("Failed to generate grid export", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("Falha ao gerar planilha"))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=inspecoes.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func queryFromRequest(r *http.Request) grid.Query {
	values := r.URL.Query()
	q := grid.Query{Filters: map[string]string{}, Page: parseInt(values.Get("page"), 1)}
	for key, v := range values {
		if col, ok := strings.CutPrefix(key, "f."); ok && len(v) > 0 {
			q.Filters[col] = v[0]
		}
	}
	if col := values.Get("sort"); col != "" {
		q.Sort = &grid.SortSpec{Column: col, Desc: values.Get("desc") == "1" || values.Get("desc") == "true"}
	}
	return q
}
