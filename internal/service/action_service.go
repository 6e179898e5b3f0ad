package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/alerts"
	"xfinance-dashboard/internal/domain"
	"xfinance-dashboard/internal/gateway"
	"xfinance-dashboard/internal/mqtt"
	"xfinance-dashboard/internal/repository"
)

// ActionService workflow actions: excluir, encaminhar, marcar.
// Role gates mirror the dashboard's capability set and are enforced here as well.
type ActionService struct {
	inspections repository.InspectionsRepository
	users       repository.UsersRepository
	audit       *AuditService
	kpis        *KPIService
	events      mqtt.Publisher
	clock       alerts.Clock
	logger      *zap.Logger
}

func NewActionService(
	inspections repository.InspectionsRepository,
	users repository.UsersRepository,
	audit *AuditService,
	kpis *KPIService,
	events mqtt.Publisher,
	clock alerts.Clock,
	logger *zap.Logger,
) *ActionService {
	if clock == nil {
		clock = alerts.SystemClock{}
	}
	if events == nil {
		events = mqtt.NopPublisher{}
	}
	return &ActionService{
		inspections: inspections,
		users:       users,
		audit:       audit,
		kpis:        kpis,
		events:      events,
		clock:       clock,
		logger:      logger,
	}
}

func canForwardOrMark(actor domain.Actor) bool {
	return actor.Role == domain.RoleAdmin || actor.Role == domain.RoleBackOffice
}

// Excluir deletes records and their markers. Admin only.
func (s *ActionService) Excluir(ctx context.Context, actor domain.Actor, in gateway.ExcluirInput) (*gateway.Result, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("Apenas administradores podem excluir inspeções")
	}
	if len(in.IDsPrinc) == 0 {
		return nil, invalid("Nenhuma inspeção selecionada")
	}

	s.logger.Info("Excluir",
		zap.String("user", actor.Email),
		zap.Int64s("ids_princ", in.IDsPrinc),
	)

	deleted, err := s.inspections.Delete(ctx, in.IDsPrinc)
	if err != nil {
		return nil, fmt.Errorf("failed to delete inspections: %w", err)
	}

	for _, id := range in.IDsPrinc {
		s.audit.Record(ctx, actor, id, domain.AuditDelete, "", "", "")
	}
	s.kpis.Invalidate(ctx)
	publish(ctx, s.events, s.logger, mqtt.Event{
		Type: mqtt.EventDeleted, IDsPrinc: in.IDsPrinc, UserID: actor.UserID, At: s.clock.Now(),
	})

	return &gateway.Result{
		Success: true,
		Message: fmt.Sprintf("%d inspeção(ões) excluída(s)", deleted),
		Deleted: deleted,
	}, nil
}

// Encaminhar reassigns records to another user. Admin or BackOffice.
func (s *ActionService) Encaminhar(ctx context.Context, actor domain.Actor, in gateway.EncaminharInput) (*gateway.Result, error) {
	if !canForwardOrMark(actor) {
		return nil, forbidden("Sem permissão para encaminhar inspeções")
	}
	if len(in.IDsPrinc) == 0 {
		return nil, invalid("Nenhuma inspeção selecionada")
	}
	if in.IDUserDestino <= 0 {
		return nil, invalid("Usuário destino não informado")
	}

	dest, err := s.users.Get(ctx, in.IDUserDestino)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Usuário destino não encontrado")
		}
		return nil, fmt.Errorf("failed to load destination user: %w", err)
	}

	s.logger.Info("Encaminhar",
		zap.String("user", actor.Email),
		zap.Int64s("ids_princ", in.IDsPrinc),
		zap.Int64("id_user_destino", in.IDUserDestino),
	)

	previous := make(map[int64]string, len(in.IDsPrinc))
	for _, id := range in.IDsPrinc {
		if rec, err := s.inspections.Get(ctx, id); err == nil {
			previous[id] = strconv.FormatInt(rec.IDUserGuilty, 10)
		}
	}

	updated, err := s.inspections.Forward(ctx, in.IDsPrinc, dest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to forward inspections: %w", err)
	}

	next := strconv.FormatInt(dest.ID, 10)
	for _, id := range in.IDsPrinc {
		s.audit.Record(ctx, actor, id, domain.AuditEncaminhar, "id_user_guilty", previous[id], next)
	}
	s.kpis.Invalidate(ctx)
	publish(ctx, s.events, s.logger, mqtt.Event{
		Type: mqtt.EventForwarded, IDsPrinc: in.IDsPrinc, UserID: actor.UserID, At: s.clock.Now(),
	})

	return &gateway.Result{
		Success: true,
		Message: fmt.Sprintf("%d inspeção(ões) encaminhada(s) para %s", updated, dest.Nick),
		Updated: updated,
	}, nil
}

// Marcar sets one marker type on records. Admin or BackOffice.
func (s *ActionService) Marcar(ctx context.Context, actor domain.Actor, in gateway.MarcarInput) (*gateway.Result, error) {
	if !canForwardOrMark(actor) {
		return nil, forbidden("Sem permissão para aplicar marcadores")
	}
	if len(in.IDsPrinc) == 0 {
		return nil, invalid("Nenhuma inspeção selecionada")
	}
	if !domain.ValidMarkerType(in.MarkerType) {
		return nil, invalid("Tipo de marcador inválido")
	}
	if !domain.ValidMarkerLevel(in.Value) {
		return nil, invalid("Valor do marcador deve ser 0, 1, 2 ou 3")
	}

	s.logger.Info("Marcar",
		zap.String("user", actor.Email),
		zap.Int64s("ids_princ", in.IDsPrinc),
		zap.String("marker_type", string(in.MarkerType)),
		zap.Int("value", in.Value),
	)

	previous := make(map[int64]string, len(in.IDsPrinc))
	for _, id := range in.IDsPrinc {
		if rec, err := s.inspections.Get(ctx, id); err == nil {
			previous[id] = strconv.Itoa(rec.Marker(in.MarkerType))
		}
	}

	updated, err := s.inspections.SetMarker(ctx, in.IDsPrinc, in.MarkerType, in.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to set marker: %w", err)
	}

	next := strconv.Itoa(in.Value)
	for _, id := range in.IDsPrinc {
		s.audit.Record(ctx, actor, id, domain.AuditMarcar, string(in.MarkerType), previous[id], next)
	}
	publish(ctx, s.events, s.logger, mqtt.Event{
		Type: mqtt.EventMarked, IDsPrinc: in.IDsPrinc, Field: string(in.MarkerType), UserID: actor.UserID, At: s.clock.Now(),
	})

	action := "aplicado"
	if in.Value == domain.MarkerLevelNone {
		action = "removido"
	}
	return &gateway.Result{
		Success: true,
		Message: fmt.Sprintf("Marcador %s em %d inspeção(ões)", action, updated),
		Updated: updated,
	}, nil
}
