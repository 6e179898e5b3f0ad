package actions

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/domain"
	"xfinance-dashboard/internal/gateway"
	"xfinance-dashboard/internal/notify"
)

var (
	ErrNotPermitted  = errors.New("actions: not permitted for role")
	ErrMissingID     = errors.New("actions: no record selected")
	ErrNoDestination = errors.New("actions: no destination selected")
	ErrInvalidMarker = errors.New("actions: invalid marker type or level")
	ErrBusy          = errors.New("actions: another action is being submitted")
)

const (
	msgDeleted   = "Registro excluído"
	msgForwarded = "Registro encaminhado"
	msgMarked    = "Marcador atualizado"
)

// Status of the panel.
type Status int

const (
	Closed Status = iota
	Open
	Submitting
)

// Hooks side effects of a successful action. Nil hooks are skipped.
type Hooks struct {
	// Refresh refetches the record set.
	Refresh func()
	// InvalidateAggregates marks cached totals stale.
	InvalidateAggregates func()
	// CloseSurface closes the whole action surface and clears the selection.
	CloseSurface func()
}

// Panel at most one open action panel for the selected record.
//
// Marker levels set here are provisional: the next Reconcile with refreshed data replaces them.
type Panel struct {
	mu sync.Mutex

	caps     Capabilities
	gw       gateway.Gateway
	notifier notify.Notifier
	logger   *zap.Logger
	hooks    Hooks

	idPrinc int64
	status  Status
	kind    Kind

	destination int64
	note        string

	markers   map[domain.MarkerType]int
	markerSeq map[domain.MarkerType]uint64
}

func NewPanel(caps Capabilities, gw gateway.Gateway, notifier notify.Notifier, logger *zap.Logger, hooks Hooks) *Panel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Panel{
		caps:      caps,
		gw:        gw,
		notifier:  notifier,
		logger:    logger,
		hooks:     hooks,
		markers:   map[domain.MarkerType]int{},
		markerSeq: map[domain.MarkerType]uint64{},
	}
}

// Bind selects a record. Any open panel closes and entered forward fields are cleared.
func (p *Panel) Bind(rec *domain.Inspection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = Closed
	p.kind = ""
	p.destination = 0
	p.note = ""
	if rec == nil {
		p.idPrinc = 0
		p.markers = map[domain.MarkerType]int{}
		p.bumpAllLocked()
		return
	}
	p.idPrinc = rec.IDPrinc
	p.markers = rec.Markers()
	p.bumpAllLocked()
}

// Reconcile replaces provisional marker values with refreshed ones for the bound record.
// In-flight marker failures that resolve afterwards no longer roll back.
func (p *Panel) Reconcile(rec *domain.Inspection) {
	if rec == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if rec.IDPrinc != p.idPrinc {
		return
	}
	p.markers = rec.Markers()
	p.bumpAllLocked()
}

func (p *Panel) bumpAllLocked() {
	for _, t := range domain.AllMarkerTypes {
		p.markerSeq[t]++
	}
}

// Enabled disabled controls stay visible but inert.
func (p *Panel) Enabled(k Kind) bool {
	return p.caps.Allows(k)
}

// Toggle opens k, switches to it from another panel, or closes it when already open.
// Disallowed kinds and toggles during a submission are ignored.
func (p *Panel) Toggle(k Kind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.caps.Allows(k) || p.status == Submitting {
		return
	}
	if p.status == Open && p.kind == k {
		p.status = Closed
		p.kind = ""
		return
	}
	p.status = Open
	p.kind = k
}

// Close closes the open panel unless a submission is running.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == Submitting {
		return
	}
	p.status = Closed
	p.kind = ""
}

func (p *Panel) SelectDestination(userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destination = userID
}

func (p *Panel) SetNote(note string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.note = note
}

// CanConfirmForward the forward control is enabled only with a destination.
func (p *Panel) CanConfirmForward() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.caps.Forward && p.idPrinc != 0 && p.destination != 0 && p.status != Submitting
}

// ConfirmDelete deletes the bound record. On success the whole action surface closes.
func (p *Panel) ConfirmDelete(ctx context.Context) error {
	p.mu.Lock()
	if err := p.guardLocked(p.caps.Delete); err != nil {
		p.mu.Unlock()
		return err
	}
	id := p.idPrinc
	p.status, p.kind = Submitting, KindDelete
	p.mu.Unlock()

	res, err := p.gw.Excluir(ctx, gateway.ExcluirInput{IDsPrinc: []int64{id}})
	if err = p.settle(KindDelete, res, err); err != nil {
		return err
	}

	p.logger.Info("Record deleted", zap.Int64("id_princ", id))
	p.succeed(res.Message, msgDeleted)

	p.mu.Lock()
	p.status, p.kind = Closed, ""
	p.idPrinc = 0
	p.markers = map[domain.MarkerType]int{}
	p.bumpAllLocked()
	p.mu.Unlock()

	p.call(p.hooks.CloseSurface)
	return nil
}

// ConfirmForward forwards the bound record to the selected destination.
// A failure keeps destination and note for a retry.
func (p *Panel) ConfirmForward(ctx context.Context) error {
	p.mu.Lock()
	if err := p.guardLocked(p.caps.Forward); err != nil {
		p.mu.Unlock()
		return err
	}
	if p.destination == 0 {
		p.mu.Unlock()
		return ErrNoDestination
	}
	in := gateway.EncaminharInput{
		IDsPrinc:      []int64{p.idPrinc},
		IDUserDestino: p.destination,
		Obs:           strings.TrimSpace(p.note),
	}
	p.status, p.kind = Submitting, KindForward
	p.mu.Unlock()

	res, err := p.gw.Encaminhar(ctx, in)
	if err = p.settle(KindForward, res, err); err != nil {
		return err
	}

	p.logger.Info("Record forwarded",
		zap.Int64("id_princ", in.IDsPrinc[0]),
		zap.Int64("id_user_destino", in.IDUserDestino),
	)

	p.mu.Lock()
	p.destination = 0
	p.note = ""
	p.status, p.kind = Closed, ""
	p.mu.Unlock()

	p.succeed(res.Message, msgForwarded)
	return nil
}

// guardLocked checks shared preconditions and is the only gate before a Gateway call.
func (p *Panel) guardLocked(allowed bool) error {
	if !allowed {
		return ErrNotPermitted
	}
	if p.idPrinc == 0 {
		return ErrMissingID
	}
	if p.status == Submitting {
		return ErrBusy
	}
	return nil
}

// settle on failure reopens the panel and notifies; returns the error to hand back.
func (p *Panel) settle(k Kind, res gateway.Result, err error) error {
	if err == nil && res.Success {
		return nil
	}
	msg := res.Message
	if err != nil {
		msg = gateway.UserMessage(err)
	} else {
		if msg == "" {
			msg = gateway.FallbackMessage
		}
		err = &gateway.RejectedError{Message: msg}
	}
	p.logger.Warn("Action failed", zap.String("kind", string(k)), zap.Error(err))

	p.mu.Lock()
	p.status, p.kind = Open, k
	p.mu.Unlock()

	if p.notifier != nil {
		p.notifier.Error(msg)
	}
	return err
}

// succeed notification, aggregate invalidation and refresh shared by delete and forward.
func (p *Panel) succeed(serverMsg, fallback string) {
	if p.notifier != nil {
		if serverMsg == "" {
			serverMsg = fallback
		}
		p.notifier.Success(serverMsg)
	}
	p.call(p.hooks.InvalidateAggregates)
	p.call(p.hooks.Refresh)
}

func (p *Panel) call(fn func()) {
	if fn != nil {
		fn()
	}
}

// SetMarker sets one marker type optimistically. A failed call rolls that type back to the level
// it held before this change, unless a newer local change or a reconcile happened meanwhile.
// Marker types are independent: calls for different types never block each other.
func (p *Panel) SetMarker(ctx context.Context, t domain.MarkerType, level int) error {
	p.mu.Lock()
	if !p.caps.Marker {
		p.mu.Unlock()
		return ErrNotPermitted
	}
	if p.idPrinc == 0 {
		p.mu.Unlock()
		return ErrMissingID
	}
	if !domain.ValidMarkerType(t) || !domain.ValidMarkerLevel(level) {
		p.mu.Unlock()
		return ErrInvalidMarker
	}
	prev := p.markers[t]
	if prev == level {
		p.mu.Unlock()
		return nil
	}
	p.markers[t] = level
	p.markerSeq[t]++
	seq := p.markerSeq[t]
	id := p.idPrinc
	p.mu.Unlock()

	res, err := p.gw.Marcar(ctx, gateway.MarcarInput{IDsPrinc: []int64{id}, MarkerType: t, Value: level})
	if err == nil && res.Success {
		p.logger.Info("Marker set",
			zap.Int64("id_princ", id),
			zap.String("marker_type", string(t)),
			zap.Int("value", level),
		)
		if p.notifier != nil {
			msg := res.Message
			if msg == "" {
				msg = msgMarked
			}
			p.notifier.Success(msg)
		}
		p.call(p.hooks.Refresh)
		return nil
	}

	msg := res.Message
	if err != nil {
		msg = gateway.UserMessage(err)
	} else {
		if msg == "" {
			msg = gateway.FallbackMessage
		}
		err = &gateway.RejectedError{Message: msg}
	}

	p.mu.Lock()
	if p.markerSeq[t] == seq && p.idPrinc == id {
		p.markers[t] = prev
	}
	p.mu.Unlock()

	p.logger.Warn("Marker update failed, rolled back",
		zap.Int64("id_princ", id),
		zap.String("marker_type", string(t)),
		zap.Int("previous", prev),
		zap.Error(err),
	)
	if p.notifier != nil {
		p.notifier.Error(msg)
	}
	return err
}

// Marker displayed level of one type.
func (p *Panel) Marker(t domain.MarkerType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.markers[t]
}

func (p *Panel) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// OpenKind kind of the open or submitting panel, "" when closed.
func (p *Panel) OpenKind() Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kind
}

func (p *Panel) Selected() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idPrinc
}

func (p *Panel) Destination() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destination
}

func (p *Panel) Note() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.note
}
