package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/gateway"
	"xfinance-dashboard/internal/repository"
)

// LookupService option lists for the dashboard.
type LookupService struct {
	users  repository.UsersRepository
	logger *zap.Logger
}

func NewLookupService(users repository.UsersRepository, logger *zap.Logger) *LookupService {
	return &LookupService{users: users, logger: logger}
}

// UsersOptions active users as forward destinations.
func (s *LookupService) UsersOptions(ctx context.Context) ([]gateway.UserOption, error) {
	users, err := s.users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]gateway.UserOption, 0, len(users))
	for _, u := range users {
		out = append(out, gateway.UserOption{Value: u.ID, Label: u.Nick, Papel: u.Papel, Ativo: u.Ativo})
	}
	return out, nil
}
