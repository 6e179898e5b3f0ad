package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"xfinance-dashboard/internal/domain"
)

func writeEnvelope(w http.ResponseWriter, status, code int, message string, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	typ := "success"
	if code != resultSuccess {
		typ = "error"
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code": code, "type": typ, "message": message, "result": result,
	})
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{
		BaseURL: srv.URL,
		Actor:   domain.Actor{UserID: 9, Role: domain.RoleBackOffice, Email: "bo@example.com"},
	}, zap.NewNop())
}

func TestClient_Excluir_SendsContractBody(t *testing.T) {
	var gotBody map[string]any
	var gotRole, gotUser string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/acoes/excluir", r.URL.Path)
		gotRole = r.Header.Get(HeaderUserRole)
		gotUser = r.Header.Get(HeaderUserID)
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		writeEnvelope(w, http.StatusOK, resultSuccess, "ok", Result{Success: true, Message: "1 registro(s) excluído(s)", Deleted: 1})
	})

	res, err := c.Excluir(context.Background(), ExcluirInput{IDsPrinc: []int64{42}})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, "1 registro(s) excluído(s)", res.Message)
	assert.Equal(t, []any{float64(42)}, gotBody["ids_princ"])
	assert.Equal(t, domain.RoleBackOffice, gotRole)
	assert.Equal(t, "9", gotUser)
}

func TestClient_Encaminhar_OmitsEmptyObs(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		writeEnvelope(w, http.StatusOK, resultSuccess, "ok", Result{Success: true})
	})

	_, err := c.Encaminhar(context.Background(), EncaminharInput{IDsPrinc: []int64{1}, IDUserDestino: 5})
	require.NoError(t, err)
	assert.Equal(t, float64(5), gotBody["id_user_destino"])
	_, hasObs := gotBody["obs"]
	assert.False(t, hasObs)
}

func TestClient_RejectionIsResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusForbidden, -1, "Apenas administradores podem excluir", nil)
	})

	res, err := c.Excluir(context.Background(), ExcluirInput{IDsPrinc: []int64{1}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Apenas administradores podem excluir", res.Message)
}

func TestClient_UnparseableIsTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	res, err := c.Marcar(context.Background(), MarcarInput{IDsPrinc: []int64{1}, MarkerType: domain.MarkerLoc, Value: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.False(t, res.Success)
	assert.Equal(t, FallbackMessage, res.Message)
	assert.Equal(t, FallbackMessage, UserMessage(err))
}

func TestClient_UpdateInspectionField(t *testing.T) {
	var got FieldUpdate
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/inspections/77", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeEnvelope(w, http.StatusOK, resultSuccess, "ok", Result{Success: true, Updated: 1})
	})

	res, err := c.UpdateInspectionField(context.Background(), 77, "dt_envio", "12/01/24")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, FieldUpdate{Field: "dt_envio", Value: "12/01/24"}, got)
}

func TestClient_FetchInspections(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/inspections", r.URL.Path)
		writeEnvelope(w, http.StatusOK, resultSuccess, "ok", []domain.Inspection{
			{IDPrinc: 1, Player: "Alpha", Honorario: domain.Amount(500)},
			{IDPrinc: 2, Player: "Beta"},
		})
	})

	recs, err := c.FetchInspections(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Alpha", recs[0].Player)
	assert.True(t, recs[0].Honorario.Valid)
	assert.Equal(t, "500", recs[0].Honorario.Decimal.String())
	assert.False(t, recs[1].Honorario.Valid)
}

func TestClient_FetchRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, -1, "banco indisponível", nil)
	})

	_, err := c.FetchUsersOptions(context.Background())
	require.Error(t, err)
	assert.Equal(t, "banco indisponível", UserMessage(err))
}

func TestLookups(t *testing.T) {
	types := MarkerTypes()
	require.Len(t, types, 4)
	assert.Equal(t, MarkerTypeOption{Type: domain.MarkerLoc, Label: "LOC"}, types[0])
	assert.Equal(t, "D.Envio", MarkerTypeLabel(domain.MarkerDtDenvio))
	assert.Equal(t, "", MarkerTypeLabel("nope"))

	levels := MarkerLevels()
	require.Len(t, levels, 4)
	assert.Equal(t, "Sem marcador", levels[0].Label)
	assert.Equal(t, "Vermelho", MarkerLevelLabel(3))
	assert.Equal(t, "", MarkerLevelLabel(4))

	// callers get copies
	types[0].Label = "changed"
	assert.Equal(t, "LOC", MarkerTypes()[0].Label)
}
