package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router stdlib http.ServeMux with per-route method checks.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	withRequestLog(r.mux, r.logger).ServeHTTP(w, req)
}

func method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != m {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterInspectionRoutes /api/inspections and its sub-resources.
func (r *Router) RegisterInspectionRoutes(h *InspectionsHandler) {
	r.Handle("/api/inspections", requireActor(method(http.MethodGet, h.List)))

	r.Handle("/api/inspections/", requireActor(func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/api/inspections/")
		switch {
		case rest == "export":
			method(http.MethodGet, h.Export)(w, req)
		case strings.HasSuffix(rest, "/audit"):
			id := strings.TrimSuffix(rest, "/audit")
			if id == "" || strings.Contains(id, "/") {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			method(http.MethodGet, func(w http.ResponseWriter, req *http.Request) { h.Audit(w, req, id) })(w, req)
		case rest != "" && !strings.Contains(rest, "/"):
			method(http.MethodPatch, func(w http.ResponseWriter, req *http.Request) { h.UpdateField(w, req, rest) })(w, req)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

// RegisterAcoesRoutes bulk actions.
func (r *Router) RegisterAcoesRoutes(h *AcoesHandler) {
	r.Handle("/api/acoes/excluir", requireActor(method(http.MethodPost, h.Excluir)))
	r.Handle("/api/acoes/encaminhar", requireActor(method(http.MethodPost, h.Encaminhar)))
	r.Handle("/api/acoes/marcar", requireActor(method(http.MethodPost, h.Marcar)))
}

func (r *Router) RegisterLookupRoutes(h *LookupsHandler) {
	r.Handle("/api/lookups/users", requireActor(method(http.MethodGet, h.Users)))
	r.Handle("/api/kpis", requireActor(method(http.MethodGet, h.KPIs)))
}

// RegisterHealthRoutes liveness probe, no identity required.
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "ok"}))
	})
}
