package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xfinance-dashboard/internal/alerts"
	"xfinance-dashboard/internal/domain"
	"xfinance-dashboard/internal/repository"
)

// AuditService records who changed what. Recording never fails the mutation it describes.
type AuditService struct {
	repo   repository.AuditRepository
	clock  alerts.Clock
	logger *zap.Logger
}

func NewAuditService(repo repository.AuditRepository, clock alerts.Clock, logger *zap.Logger) *AuditService {
	if clock == nil {
		clock = alerts.SystemClock{}
	}
	return &AuditService{repo: repo, clock: clock, logger: logger}
}

// Record appends one entry, logging instead of returning failures.
func (s *AuditService) Record(ctx context.Context, actor domain.Actor, idPrinc int64, op, field, previous, next string) {
	now := s.clock.Now()
	entry := domain.AuditEntry{
		ID:        uuid.NewString(),
		UserID:    actor.UserID,
		UserEmail: actor.Email,
		IDPrinc:   idPrinc,
		Operation: op,
		Field:     field,
		Previous:  previous,
		Next:      next,
		At:        now,
		ExpiresAt: now.AddDate(0, domain.AuditRetentionMonths, 0),
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to record audit entry",
			zap.Int64("id_princ", idPrinc),
			zap.String("operation", op),
			zap.Error(err),
		)
	}
}

// List history of one record, admin only.
func (s *AuditService) List(ctx context.Context, actor domain.Actor, idPrinc int64) ([]domain.AuditEntry, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("Histórico disponível apenas para administradores")
	}
	entries, err := s.repo.ListByInspection(ctx, idPrinc)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return entries, nil
}

// Purge drops entries past retention.
func (s *AuditService) Purge(ctx context.Context) (int, error) {
	n, err := s.repo.PurgeExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit log: %w", err)
	}
	if n > 0 {
		s.logger.Info("Purged expired audit entries", zap.Int("count", n))
	}
	return n, nil
}
