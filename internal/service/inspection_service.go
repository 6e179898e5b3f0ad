package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"xfinance-dashboard/internal/alerts"
	"xfinance-dashboard/internal/domain"
	"xfinance-dashboard/internal/gateway"
	"xfinance-dashboard/internal/grid"
	"xfinance-dashboard/internal/mqtt"
	"xfinance-dashboard/internal/repository"
)

// InspectionService reads the record set and applies single-field edits.
type InspectionService struct {
	repo   repository.InspectionsRepository
	audit  *AuditService
	kpis   *KPIService
	events mqtt.Publisher
	clock  alerts.Clock
	logger *zap.Logger
}

func NewInspectionService(
	repo repository.InspectionsRepository,
	audit *AuditService,
	kpis *KPIService,
	events mqtt.Publisher,
	clock alerts.Clock,
	logger *zap.Logger,
) *InspectionService {
	if clock == nil {
		clock = alerts.SystemClock{}
	}
	if events == nil {
		events = mqtt.NopPublisher{}
	}
	return &InspectionService{repo: repo, audit: audit, kpis: kpis, events: events, clock: clock, logger: logger}
}

// List every record. Non-admin actors get financial columns and the guilty id blanked.
func (s *InspectionService) List(ctx context.Context, actor domain.Actor) ([]domain.Inspection, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", err)
	}
	if recs == nil {
		recs = []domain.Inspection{}
	}
	if !actor.IsAdmin() {
		for i := range recs {
			maskRestricted(&recs[i])
		}
	}
	return recs, nil
}

func maskRestricted(r *domain.Inspection) {
	r.Honorario = decimal.NullDecimal{}
	r.Despesa = decimal.NullDecimal{}
	r.GuyHonorario = decimal.NullDecimal{}
	r.GuyDespesa = decimal.NullDecimal{}
	r.DtPago = ""
	r.DtDpago = ""
	r.DtGuyPago = ""
	r.DtGuyDpago = ""
	r.DtAcerto = ""
	r.IDUserGuilty = 0
}

// UpdateFieldRequest one edited cell.
type UpdateFieldRequest struct {
	IDPrinc int64
	Field   string
	Value   string
}

// UpdateField validates, converts and writes one field, then audits it.
func (s *InspectionService) UpdateField(ctx context.Context, actor domain.Actor, req UpdateFieldRequest) (*gateway.Result, error) {
	if req.IDPrinc <= 0 {
		return nil, invalid("Inspeção não informada")
	}
	ft, ok := editableFields[req.Field]
	if !ok {
		return nil, invalid(fmt.Sprintf("Campo '%s' não é editável", req.Field))
	}
	if adminOnlyFields[req.Field] && !actor.IsAdmin() {
		return nil, forbidden(fmt.Sprintf("Campo '%s' requer permissão de administrador", req.Field))
	}

	value, err := convertValue(req.Value, ft, s.clock.Now())
	if err != nil {
		return nil, invalid(err.Error())
	}

	current, err := s.repo.Get(ctx, req.IDPrinc)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Inspeção não encontrada")
		}
		return nil, fmt.Errorf("failed to load inspection: %w", err)
	}
	previous := ""
	if col, ok := grid.ColumnByID(req.Field); ok {
		previous = col.Value(current)
	}

	if err := s.repo.UpdateField(ctx, req.IDPrinc, req.Field, value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Inspeção não encontrada")
		}
		return nil, fmt.Errorf("failed to update inspection: %w", err)
	}

	next := formatValue(value)
	s.logger.Info("Inspection field updated",
		zap.Int64("id_princ", req.IDPrinc),
		zap.String("field", req.Field),
		zap.String("previous", previous),
		zap.String("next", next),
		zap.Int64("user_id", actor.UserID),
	)

	s.audit.Record(ctx, actor, req.IDPrinc, domain.AuditUpdate, req.Field, previous, next)
	if kpiFields[req.Field] {
		s.kpis.Invalidate(ctx)
	}
	publish(ctx, s.events, s.logger, mqtt.Event{
		Type: mqtt.EventUpdated, IDsPrinc: []int64{req.IDPrinc}, Field: req.Field, UserID: actor.UserID, At: s.clock.Now(),
	})

	return &gateway.Result{
		Success: true,
		Message: fmt.Sprintf("Campo '%s' atualizado", req.Field),
		Updated: 1,
	}, nil
}

func publish(ctx context.Context, events mqtt.Publisher, logger *zap.Logger, e mqtt.Event) {
	if err := events.Publish(ctx, e); err != nil {
		logger.Warn("Failed to publish record change", zap.String("type", e.Type), zap.Error(err))
	}
}
