// Package dashboard holds one user's view of the record set: the grid query, open cell editors and
// the action panel of the selected record. All data changes go through the Gateway and come back
// through Refresh; nothing here patches records locally.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/actions"
	"xfinance-dashboard/internal/alerts"
	"xfinance-dashboard/internal/domain"
	"xfinance-dashboard/internal/editor"
	"xfinance-dashboard/internal/gateway"
	"xfinance-dashboard/internal/grid"
	"xfinance-dashboard/internal/notify"
)

var (
	ErrUnknownRecord = errors.New("dashboard: record not in the current set")
	ErrNotEditable   = errors.New("dashboard: column is not editable")
)

const defaultRefreshTimeout = 15 * time.Second

// aggregateFields edits to these move the KPI totals.
var aggregateFields = map[string]bool{
	"honorario":     true,
	"despesa":       true,
	"guy_honorario": true,
	"guy_despesa":   true,
	"dt_pago":       true,
	"dt_dpago":      true,
	"dt_guy_pago":   true,
	"dt_guy_dpago":  true,
}

type Options struct {
	Gateway      gateway.Gateway
	Actor        domain.Actor
	Clock        alerts.Clock
	PageSize     int
	BlurDebounce time.Duration
	Notifier     notify.Notifier
	Logger       *zap.Logger
	// RefreshTimeout bounds refreshes triggered by editors and panels.
	RefreshTimeout time.Duration
}

type cellKey struct {
	id    int64
	field string
}

// Session safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	gw        gateway.Gateway
	actor     domain.Actor
	evaluator *alerts.Evaluator
	projector *grid.Projector
	notifier  notify.Notifier
	logger    *zap.Logger
	blur      time.Duration
	timeout   time.Duration

	records  []domain.Inspection
	loaded   bool
	query    grid.Query
	selected int64
	panel    *actions.Panel
	cells    map[cellKey]*editor.Cell

	users      []gateway.UserOption
	kpis       domain.PendingTotals
	kpisLoaded bool
	kpisStale  bool
}

func NewSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = defaultRefreshTimeout
	}
	ev := alerts.NewEvaluator(opts.Clock)
	s := &Session{
		gw:        opts.Gateway,
		actor:     opts.Actor,
		evaluator: ev,
		projector: grid.NewProjector(ev, opts.PageSize),
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		blur:      opts.BlurDebounce,
		timeout:   opts.RefreshTimeout,
		query:     grid.Query{Filters: map[string]string{}, Page: 1},
		cells:     map[cellKey]*editor.Cell{},
	}
	s.panel = actions.NewPanel(actions.CapabilitiesFor(opts.Actor.Role), opts.Gateway, opts.Notifier, opts.Logger, actions.Hooks{
		Refresh:              s.refreshDetached,
		InvalidateAggregates: s.InvalidateAggregates,
		CloseSurface:         s.ClearSelection,
	})
	return s
}

// Refresh refetches the record set. On failure the previous set stays.
// The open panel is reconciled, or unbound when its record is gone; open cells of vanished records close.
func (s *Session) Refresh(ctx context.Context) error {
	recs, err := s.gw.FetchInspections(ctx)
	if err != nil {
		s.logger.Warn("Failed to refresh inspections", zap.Error(err))
		return fmt.Errorf("refresh inspections: %w", err)
	}

	byID := make(map[int64]*domain.Inspection, len(recs))
	for i := range recs {
		byID[recs[i].IDPrinc] = &recs[i]
	}

	s.mu.Lock()
	s.records = recs
	s.loaded = true
	selected := s.selected
	var stale []*editor.Cell
	for key, cell := range s.cells {
		rec, ok := byID[key.id]
		if !ok {
			stale = append(stale, cell)
			delete(s.cells, key)
			continue
		}
		if col, ok := grid.ColumnByID(key.field); ok {
			cell.Reset(col.Value(rec))
		}
	}
	s.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	if selected != 0 {
		if rec, ok := byID[selected]; ok {
			s.panel.Reconcile(rec)
		} else {
			s.ClearSelection()
		}
	}

	s.logger.Debug("Inspections refreshed", zap.Int("count", len(recs)))
	return nil
}

func (s *Session) refreshDetached() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_ = s.Refresh(ctx)
}

// Loaded reports whether a refresh has succeeded at least once.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Records copy of the current set.
func (s *Session) Records() []domain.Inspection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Inspection(nil), s.records...)
}

func (s *Session) record(id int64) (domain.Inspection, bool) {
	for _, r := range s.records {
		if r.IDPrinc == id {
			return r, true
		}
	}
	return domain.Inspection{}, false
}

// View current page of the grid.
func (s *Session) View() grid.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projector.Project(s.records, s.query)
}

// SetFilter an empty needle removes the filter. Returns to page 1.
func (s *Session) SetFilter(column, needle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if needle == "" {
		delete(s.query.Filters, column)
	} else {
		s.query.Filters[column] = needle
	}
	s.query.Page = 1
}

// SetSort an empty column clears sorting.
func (s *Session) SetSort(column string, desc bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if column == "" {
		s.query.Sort = nil
		return
	}
	s.query.Sort = &grid.SortSpec{Column: column, Desc: desc}
}

// SetPage out of range pages are clamped when the view is built.
func (s *Session) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Page = page
}

// EditCell editor for one cell, created on first use.
// Alert-bearing columns open on double click, the rest on a single click.
func (s *Session) EditCell(idPrinc int64, field string) (*editor.Cell, error) {
	col, ok := grid.ColumnByID(field)
	if !ok || !col.Editable {
		return nil, ErrNotEditable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := cellKey{id: idPrinc, field: field}
	if c, ok := s.cells[key]; ok {
		return c, nil
	}
	rec, ok := s.record(idPrinc)
	if !ok {
		return nil, ErrUnknownRecord
	}

	kind := editor.Plain
	if col.Stage != "" {
		kind = editor.Alert
	}
	c := editor.NewCell(editor.Options{
		IDPrinc:      idPrinc,
		Field:        field,
		Kind:         kind,
		Type:         col.EditType,
		Value:        col.Value(&rec),
		BlurDebounce: s.blur,
		Save:         s.saveField,
		OnSaved:      s.refreshDetached,
		Notifier:     s.notifier,
		Logger:       s.logger,
	})
	s.cells[key] = c
	return c, nil
}

// CloseCell detaches an editor; a save in flight no longer updates it.
func (s *Session) CloseCell(idPrinc int64, field string) {
	s.mu.Lock()
	key := cellKey{id: idPrinc, field: field}
	c := s.cells[key]
	delete(s.cells, key)
	s.mu.Unlock()
	if c != nil {
		c.Close()
	}
}

func (s *Session) saveField(ctx context.Context, idPrinc int64, field, value string) error {
	res, err := s.gw.UpdateInspectionField(ctx, idPrinc, field, value)
	if err != nil {
		return errors.New(gateway.UserMessage(err))
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = gateway.FallbackMessage
		}
		return &gateway.RejectedError{Message: msg}
	}
	if aggregateFields[field] {
		s.InvalidateAggregates()
	}
	return nil
}

// Select binds the action panel to a record of the current set.
func (s *Session) Select(idPrinc int64) (*actions.Panel, error) {
	s.mu.Lock()
	rec, ok := s.record(idPrinc)
	if !ok {
		s.mu.Unlock()
		return nil, ErrUnknownRecord
	}
	s.selected = idPrinc
	s.mu.Unlock()

	s.panel.Bind(&rec)
	return s.panel, nil
}

// ClearSelection unbinds the panel.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selected = 0
	s.mu.Unlock()
	s.panel.Bind(nil)
}

func (s *Session) Selected() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

func (s *Session) Panel() *actions.Panel { return s.panel }

// Users forward destinations, fetched once.
func (s *Session) Users(ctx context.Context) ([]gateway.UserOption, error) {
	s.mu.RLock()
	cached := s.users
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}
	users, err := s.gw.FetchUsersOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return users, nil
}

// InvalidateAggregates the next KPIs call refetches.
func (s *Session) InvalidateAggregates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kpisStale = true
}

func (s *Session) KPIsStale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kpisStale
}

// KPIs pending totals, refetched when stale. Only admins see them.
func (s *Session) KPIs(ctx context.Context) (domain.PendingTotals, error) {
	if !s.actor.IsAdmin() {
		return domain.PendingTotals{}, actions.ErrNotPermitted
	}
	s.mu.RLock()
	fresh := s.kpisLoaded && !s.kpisStale
	cached := s.kpis
	s.mu.RUnlock()
	if fresh {
		return cached, nil
	}

	totals, err := s.gw.FetchKPIs(ctx)
	if err != nil {
		return domain.PendingTotals{}, fmt.Errorf("fetch kpis: %w", err)
	}
	s.mu.Lock()
	s.kpis = totals
	s.kpisLoaded = true
	s.kpisStale = false
	s.mu.Unlock()
	return totals, nil
}

// AlertSummary record count per stage and level over the whole set, filters ignored.
func (s *Session) AlertSummary() map[alerts.Stage]map[alerts.Level]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[alerts.Stage]map[alerts.Level]int, len(alerts.Stages))
	for _, st := range alerts.Stages {
		out[st] = map[alerts.Level]int{}
	}
	for i := range s.records {
		for st, lvl := range s.evaluator.EvaluateAll(&s.records[i]) {
			out[st][lvl]++
		}
	}
	return out
}
