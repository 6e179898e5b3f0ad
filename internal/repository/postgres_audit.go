package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/domain"
)

// PostgresAuditRepo audit_log table.
type PostgresAuditRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresAuditRepo(db *sql.DB, logger *zap.Logger) *PostgresAuditRepo {
	return &PostgresAuditRepo{db: db, logger: logger}
}

func (r *PostgresAuditRepo) Append(ctx context.Context, e domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log
			(id, id_user, user_email, id_princ, operation, field, previous, next, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.UserID, e.UserEmail, e.IDPrinc, e.Operation,
		nullString(e.Field), nullString(e.Previous), nullString(e.Next),
		e.At, e.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func (r *PostgresAuditRepo) ListByInspection(ctx context.Context, idPrinc int64) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, id_user, COALESCE(user_email, ''), id_princ, operation,
		       COALESCE(field, ''), COALESCE(previous, ''), COALESCE(next, ''), created_at, expires_at
		FROM audit_log
		WHERE id_princ = $1
		ORDER BY created_at DESC`, idPrinc)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserEmail, &e.IDPrinc, &e.Operation,
			&e.Field, &e.Previous, &e.Next, &e.At, &e.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresAuditRepo) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_log WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(n), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ AuditRepository = (*PostgresAuditRepo)(nil)
