package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/gateway"
	"xfinance-dashboard/internal/service"
)

// AcoesHandler bulk workflow actions.
type AcoesHandler struct {
	actions *service.ActionService
	logger  *zap.Logger
}

func NewAcoesHandler(actions *service.ActionService, logger *zap.Logger) *AcoesHandler {
	return &AcoesHandler{actions: actions, logger: logger}
}

func (h *AcoesHandler) Excluir(w http.ResponseWriter, r *http.Request) {
	var in gateway.ExcluirInput
	if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("Corpo da requisição inválido"))
		return
	}
	res, err := h.actions.Excluir(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

func (h *AcoesHandler) Encaminhar(w http.ResponseWriter, r *http.Request) {
	var in gateway.EncaminharInput
	if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("Corpo da requisição inválido"))
		return
	}
	res, err := h.actions.Encaminhar(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

func (h *AcoesHandler) Marcar(w http.ResponseWriter, r *http.Request) {
	var in gateway.MarcarInput
	if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("Corpo da requisição inválido"))
		return
	}
	res, err := h.actions.Marcar(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}
