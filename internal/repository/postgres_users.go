package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/domain"
)

type PostgresUsersRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresUsersRepo(db *sql.DB, logger *zap.Logger) *PostgresUsersRepo {
	return &PostgresUsersRepo{db: db, logger: logger}
}

func (r *PostgresUsersRepo) Get(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id_user, nick, COALESCE(papel, ''), COALESCE(ativo, false) FROM "user" WHERE id_user = $1`, id,
	).Scan(&u.ID, &u.Nick, &u.Papel, &u.Ativo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user %d: %w", id, err)
	}
	return &u, nil
}

func (r *PostgresUsersRepo) ListActive(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id_user, nick, COALESCE(papel, ''), ativo FROM "user" WHERE ativo = true ORDER BY nick`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Nick, &u.Papel, &u.Ativo); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

var _ UsersRepository = (*PostgresUsersRepo)(nil)
