package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/domain"
	"xfinance-dashboard/internal/repository"
	"xfinance-dashboard/internal/store"
)

const kpiCacheKey = "xfinance:kpis:pending"

// KPIService pending financial totals, cached in the KV store.
type KPIService struct {
	repo   repository.InspectionsRepository
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
}

// NewKPIService kv may be nil, in which case every call hits the repository.
func NewKPIService(repo repository.InspectionsRepository, kv store.KV, ttl time.Duration, logger *zap.Logger) *KPIService {
	return &KPIService{repo: repo, kv: kv, ttl: ttl, logger: logger}
}

// Pending financial aggregates are admin only.
func (s *KPIService) Pending(ctx context.Context, actor domain.Actor) (domain.PendingTotals, error) {
	if !actor.IsAdmin() {
		return domain.PendingTotals{}, forbidden("KPIs financeiros disponíveis apenas para administradores")
	}
	if s.kv != nil {
		raw, err := s.kv.Get(ctx, kpiCacheKey)
		switch {
		case err == nil:
			var cached domain.PendingTotals
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn("Discarding unreadable KPI cache entry")
		case !errors.Is(err, store.ErrMiss):
			s.logger.Warn("KPI cache read failed", zap.Error(err))
		}
	}

	totals, err := s.repo.PendingTotals(ctx)
	if err != nil {
		return domain.PendingTotals{}, fmt.Errorf("failed to compute pending totals: %w", err)
	}

	if s.kv != nil {
		if b, err := json.Marshal(totals); err == nil {
			if err := s.kv.Set(ctx, kpiCacheKey, string(b), s.ttl); err != nil {
				s.logger.Warn("KPI cache write failed", zap.Error(err))
			}
		}
	}
	return totals, nil
}

// Invalidate drops the cached totals after a mutation.
func (s *KPIService) Invalidate(ctx context.Context) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Del(ctx, kpiCacheKey); err != nil {
		s.logger.Warn("KPI cache invalidation failed", zap.Error(err))
	}
}
