package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"xfinance-dashboard/internal/domain"
	"xfinance-dashboard/internal/gateway"
	"xfinance-dashboard/internal/gateway/gatewaytest"
	"xfinance-dashboard/internal/notify"
)

type hookCounts struct {
	refresh, invalidate, closeSurface int
}

func (h *hookCounts) hooks() Hooks {
	return Hooks{
		Refresh:              func() { h.refresh++ },
		InvalidateAggregates: func() { h.invalidate++ },
		CloseSurface:         func() { h.closeSurface++ },
	}
}

func newPanel(role string, gw gateway.Gateway) (*Panel, *notify.Recorder, *hookCounts) {
	rec := &notify.Recorder{}
	h := &hookCounts{}
	return NewPanel(CapabilitiesFor(role), gw, rec, zap.NewNop(), h.hooks()), rec, h
}

func record() *domain.Inspection {
	return &domain.Inspection{IDPrinc: 42, StateLoc: 1, StateDtPago: 3}
}

func TestCapabilitiesFor(t *testing.T) {
	assert.Equal(t, Capabilities{Delete: true, Forward: true, Marker: true}, CapabilitiesFor("admin"))
	assert.Equal(t, Capabilities{Forward: true, Marker: true}, CapabilitiesFor("BackOffice"))
	assert.Equal(t, Capabilities{}, CapabilitiesFor("analista"))
	assert.Equal(t, Capabilities{}, CapabilitiesFor(""))
	assert.False(t, CapabilitiesFor("admin").Allows(Kind("other")))
}

func TestToggle_OnePanelAtATime(t *testing.T) {
	p, _, _ := newPanel(domain.RoleAdmin, &gatewaytest.Fake{})
	p.Bind(record())

	p.Toggle(KindDelete)
	assert.Equal(t, Open, p.Status())
	assert.Equal(t, KindDelete, p.OpenKind())

	p.Toggle(KindForward)
	assert.Equal(t, KindForward, p.OpenKind())

	p.Toggle(KindForward)
	assert.Equal(t, Closed, p.Status())
	assert.Equal(t, Kind(""), p.OpenKind())
}

func TestScenarioE_DisallowedRoleNeverCallsGateway(t *testing.T) {
	fake := &gatewaytest.Fake{}
	p, rec, h := newPanel("analista", fake)
	p.Bind(record())

	assert.False(t, p.Enabled(KindDelete))
	assert.False(t, p.Enabled(KindForward))
	assert.False(t, p.Enabled(KindMarker))

	p.Toggle(KindDelete)
	assert.Equal(t, Closed, p.Status())

	assert.ErrorIs(t, p.ConfirmDelete(context.Background()), ErrNotPermitted)
	p.SelectDestination(5)
	assert.ErrorIs(t, p.ConfirmForward(context.Background()), ErrNotPermitted)
	assert.ErrorIs(t, p.SetMarker(context.Background(), domain.MarkerLoc, 2), ErrNotPermitted)

	assert.Empty(t, fake.Calls)
	assert.Empty(t, rec.Messages())
	assert.Equal(t, hookCounts{}, *h)
}

func TestBackOfficeCannotDelete(t *testing.T) {
	fake := &gatewaytest.Fake{}
	p, _, _ := newPanel(domain.RoleBackOffice, fake)
	p.Bind(record())

	assert.False(t, p.Enabled(KindDelete))
	assert.True(t, p.Enabled(KindForward))
	assert.ErrorIs(t, p.ConfirmDelete(context.Background()), ErrNotPermitted)
	assert.Empty(t, fake.Calls)
}

func TestConfirmDelete_Success(t *testing.T) {
	fake := &gatewaytest.Fake{}
	fake.SetResult("excluir", gateway.Result{Success: true, Message: "1 registro(s) excluído(s)", Deleted: 1})
	p, rec, h := newPanel(domain.RoleAdmin, fake)
	p.Bind(record())
	p.Toggle(KindDelete)

	require.NoError(t, p.ConfirmDelete(context.Background()))

	calls := fake.CallsTo("excluir")
	require.Len(t, calls, 1)
	assert.Equal(t, gateway.ExcluirInput{IDsPrinc: []int64{42}}, calls[0].Input)
	assert.Equal(t, hookCounts{refresh: 1, invalidate: 1, closeSurface: 1}, *h)
	assert.Equal(t, Closed, p.Status())
	assert.Zero(t, p.Selected())
	last, _ := rec.Last()
	assert.Equal(t, notify.Message{Kind: notify.KindSuccess, Text: "1 registro(s) excluído(s)"}, last)
}

func TestConfirmDelete_FailureStaysOpen(t *testing.T) {
	fake := &gatewaytest.Fake{}
	fake.SetResult("excluir", gateway.Failed("Registro não encontrado"))
	p, rec, h := newPanel(domain.RoleAdmin, fake)
	p.Bind(record())
	p.Toggle(KindDelete)

	err := p.ConfirmDelete(context.Background())
	require.Error(t, err)
	assert.Equal(t, Open, p.Status())
	assert.Equal(t, KindDelete, p.OpenKind())
	assert.Equal(t, int64(42), p.Selected())
	assert.Equal(t, hookCounts{}, *h)
	last, _ := rec.Last()
	assert.Equal(t, notify.Message{Kind: notify.KindError, Text: "Registro não encontrado"}, last)
}

func TestConfirmDelete_TransportErrorUsesFallback(t *testing.T) {
	fake := &gatewaytest.Fake{}
	fake.SetError("excluir", errors.New("connection refused"))
	p, rec, _ := newPanel(domain.RoleAdmin, fake)
	p.Bind(record())

	require.Error(t, p.ConfirmDelete(context.Background()))
	assert.NotEqual(t, Submitting, p.Status())
	last, _ := rec.Last()
	assert.Equal(t, gateway.FallbackMessage, last.Text)
}

func TestGuards_MissingID(t *testing.T) {
	fake := &gatewaytest.Fake{}
	p, _, _ := newPanel(domain.RoleAdmin, fake)

	assert.ErrorIs(t, p.ConfirmDelete(context.Background()), ErrMissingID)
	p.SelectDestination(3)
	assert.ErrorIs(t, p.ConfirmForward(context.Background()), ErrMissingID)
	assert.ErrorIs(t, p.SetMarker(context.Background(), domain.MarkerLoc, 1), ErrMissingID)
	assert.Empty(t, fake.Calls)
}

func TestConfirmForward_RequiresDestination(t *testing.T) {
	fake := &gatewaytest.Fake{}
	p, _, _ := newPanel(domain.RoleBackOffice, fake)
	p.Bind(record())
	p.Toggle(KindForward)

	assert.False(t, p.CanConfirmForward())
	assert.ErrorIs(t, p.ConfirmForward(context.Background()), ErrNoDestination)
	assert.Empty(t, fake.Calls)

	p.SelectDestination(8)
	assert.True(t, p.CanConfirmForward())
}

func TestConfirmForward_Success(t *testing.T) {
	fake := &gatewaytest.Fake{}
	fake.SetResult("encaminhar", gateway.Result{Success: true, Message: "Encaminhado para maria"})
	p, rec, h := newPanel(domain.RoleBackOffice, fake)
	p.Bind(record())
	p.Toggle(KindForward)
	p.SelectDestination(8)
	p.SetNote("  urgente  ")

	require.NoError(t, p.ConfirmForward(context.Background()))

	calls := fake.CallsTo("encaminhar")
	require.Len(t, calls, 1)
	assert.Equal(t, gateway.EncaminharInput{IDsPrinc: []int64{42}, IDUserDestino: 8, Obs: "urgente"}, calls[0].Input)
	assert.Zero(t, p.Destination())
	assert.Empty(t, p.Note())
	assert.Equal(t, Closed, p.Status())
	assert.Equal(t, int64(42), p.Selected())
	assert.Equal(t, hookCounts{refresh: 1, invalidate: 1}, *h)
	last, _ := rec.Last()
	assert.Equal(t, "Encaminhado para maria", last.Text)
}

func TestConfirmForward_FailureRetainsFields(t *testing.T) {
	fake := &gatewaytest.Fake{}
	fake.SetResult("encaminhar", gateway.Failed("Usuário destino não encontrado"))
	p, rec, _ := newPanel(domain.RoleAdmin, fake)
	p.Bind(record())
	p.Toggle(KindForward)
	p.SelectDestination(99)
	p.SetNote("ver anexo")

	require.Error(t, p.ConfirmForward(context.Background()))
	assert.Equal(t, int64(99), p.Destination())
	assert.Equal(t, "ver anexo", p.Note())
	assert.Equal(t, Open, p.Status())
	assert.Equal(t, KindForward, p.OpenKind())
	assert.Equal(t, 1, rec.Count(notify.KindError))
}

func TestSubmittingBlocksDuplicates(t *testing.T) {
	fake := &blockingGateway{Fake: &gatewaytest.Fake{}, release: make(chan struct{}), started: make(chan struct{})}
	p, _, _ := newPanel(domain.RoleAdmin, fake)
	p.Bind(record())
	p.Toggle(KindDelete)

	done := make(chan error, 1)
	go func() { done <- p.ConfirmDelete(context.Background()) }()
	<-fake.started

	assert.Equal(t, Submitting, p.Status())
	assert.ErrorIs(t, p.ConfirmDelete(context.Background()), ErrBusy)
	p.Toggle(KindForward)
	assert.Equal(t, KindDelete, p.OpenKind())

	close(fake.release)
	require.NoError(t, <-done)
	assert.Len(t, fake.CallsTo("excluir"), 1)
}

type blockingGateway struct {
	*gatewaytest.Fake
	started chan struct{}
	release chan struct{}
}

func (b *blockingGateway) Excluir(ctx context.Context, in gateway.ExcluirInput) (gateway.Result, error) {
	close(b.started)
	<-b.release
	return b.Fake.Excluir(ctx, in)
}

func TestSetMarker_OptimisticSuccess(t *testing.T) {
	fake := &gatewaytest.Fake{}
	p, rec, h := newPanel(domain.RoleBackOffice, fake)
	p.Bind(record())

	require.NoError(t, p.SetMarker(context.Background(), domain.MarkerDtEnvio, 2))
	assert.Equal(t, 2, p.Marker(domain.MarkerDtEnvio))
	assert.Equal(t, 1, p.Marker(domain.MarkerLoc))
	calls := fake.CallsTo("marcar")
	require.Len(t, calls, 1)
	assert.Equal(t, gateway.MarcarInput{IDsPrinc: []int64{42}, MarkerType: domain.MarkerDtEnvio, Value: 2}, calls[0].Input)
	assert.Equal(t, 1, rec.Count(notify.KindSuccess))
	assert.Equal(t, 1, h.refresh)
}

func TestSetMarker_ScenarioF_RollsBackToPrevious(t *testing.T) {
	fake := &gatewaytest.Fake{}
	fake.SetResult("marcar", gateway.Failed("Falha ao marcar"))
	p, rec, _ := newPanel(domain.RoleAdmin, fake)
	p.Bind(record())

	require.Error(t, p.SetMarker(context.Background(), domain.MarkerLoc, 2))
	assert.Equal(t, 1, p.Marker(domain.MarkerLoc))
	last, _ := rec.Last()
	assert.Equal(t, notify.Message{Kind: notify.KindError, Text: "Falha ao marcar"}, last)
}

func TestSetMarker_ShowsValueWhileInFlight(t *testing.T) {
	fake := &gatewaytest.Fake{}
	p, _, _ := newPanel(domain.RoleAdmin, fake)
	p.Bind(record())

	var seen int
	fake.MarcarHook = func(in gateway.MarcarInput) { seen = p.Marker(in.MarkerType) }
	fake.SetResult("marcar", gateway.Failed("x"))

	require.Error(t, p.SetMarker(context.Background(), domain.MarkerDtPago, 0))
	assert.Equal(t, 0, seen)
	assert.Equal(t, 3, p.Marker(domain.MarkerDtPago))
}

func TestSetMarker_OlderFailureDoesNotOverrideNewerValue(t *testing.T) {
	fake := &gatewaytest.Fake{}
	p, _, _ := newPanel(domain.RoleAdmin, fake)
	p.Bind(record())

	first := true
	fake.MarcarHook = func(in gateway.MarcarInput) {
		if first {
			first = false
			// a second change of the same type lands while the first is in flight
			fake.SetResult("marcar", gateway.Result{Success: true})
			require.NoError(t, p.SetMarker(context.Background(), domain.MarkerLoc, 3))
			fake.SetResult("marcar", gateway.Failed("x"))
		}
	}

	require.Error(t, p.SetMarker(context.Background(), domain.MarkerLoc, 2))
	assert.Equal(t, 3, p.Marker(domain.MarkerLoc))
}

func TestSetMarker_TypesIndependent(t *testing.T) {
	fake := &gatewaytest.Fake{}
	p, _, _ := newPanel(domain.RoleAdmin, fake)
	p.Bind(record())

	fake.MarcarHook = func(in gateway.MarcarInput) {
		if in.MarkerType == domain.MarkerLoc {
			fake.SetResult("marcar", gateway.Failed("x"))
		} else {
			fake.SetResult("marcar", gateway.Result{Success: true})
		}
	}

	require.NoError(t, p.SetMarker(context.Background(), domain.MarkerDtDenvio, 1))
	require.Error(t, p.SetMarker(context.Background(), domain.MarkerLoc, 3))
	assert.Equal(t, 1, p.Marker(domain.MarkerDtDenvio))
	assert.Equal(t, 1, p.Marker(domain.MarkerLoc))
}

func TestSetMarker_InvalidInputAndNoop(t *testing.T) {
	fake := &gatewaytest.Fake{}
	p, _, _ := newPanel(domain.RoleAdmin, fake)
	p.Bind(record())

	assert.ErrorIs(t, p.SetMarker(context.Background(), "state_x", 1), ErrInvalidMarker)
	assert.ErrorIs(t, p.SetMarker(context.Background(), domain.MarkerLoc, 4), ErrInvalidMarker)
	assert.NoError(t, p.SetMarker(context.Background(), domain.MarkerLoc, 1))
	assert.Empty(t, fake.Calls)
}

func TestReconcile_RefreshSupersedesProvisional(t *testing.T) {
	fake := &gatewaytest.Fake{}
	p, _, _ := newPanel(domain.RoleAdmin, fake)
	p.Bind(record())

	var refreshed domain.Inspection
	fake.MarcarHook = func(in gateway.MarcarInput) {
		refreshed = domain.Inspection{IDPrinc: 42, StateLoc: 0, StateDtPago: 3}
		p.Reconcile(&refreshed)
	}
	fake.SetResult("marcar", gateway.Failed("x"))

	require.Error(t, p.SetMarker(context.Background(), domain.MarkerLoc, 2))
	assert.Equal(t, 0, p.Marker(domain.MarkerLoc))

	// other records are ignored
	p.Reconcile(&domain.Inspection{IDPrinc: 7, StateLoc: 3})
	assert.Equal(t, 0, p.Marker(domain.MarkerLoc))
}
