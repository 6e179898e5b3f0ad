package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"xfinance-dashboard/internal/domain"
)

// PostgresInspectionsRepo princ + tempstate on Postgres.
type PostgresInspectionsRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresInspectionsRepo(db *sql.DB, logger *zap.Logger) *PostgresInspectionsRepo {
	return &PostgresInspectionsRepo{db: db, logger: logger}
}

const inspectionSelect = `
	SELECT
		p.id_princ,
		COALESCE(c.player, ''),
		COALESCE(s.segur_nome, ''),
		COALESCE(ug.nick, ''),
		COALESCE(p.id_user_guilty, 0),
		COALESCE(uy.nick, ''),
		COALESCE(a.atividade, ''),
		COALESCE(p.obs, ''),
		COALESCE(p.loc, 0),
		COALESCE(p.meta, 0),
		p.dt_inspecao, p.dt_entregue, p.dt_acerto, p.dt_envio, p.dt_pago,
		p.dt_denvio, p.dt_dpago, p.dt_guy_pago, p.dt_guy_dpago,
		p.honorario, p.despesa, p.guy_honorario, p.guy_despesa,
		COALESCE(t.state_loc, 0),
		COALESCE(t.state_dt_envio, 0),
		COALESCE(t.state_dt_denvio, 0),
		COALESCE(t.state_dt_pago, 0)
	FROM princ p
	LEFT JOIN contratante c ON c.id_contr = p.id_contr
	LEFT JOIN segurado s ON s.id_segur = p.id_segur
	LEFT JOIN "user" ug ON ug.id_user = p.id_user_guilty
	LEFT JOIN "user" uy ON uy.id_user = p.id_user_guy
	LEFT JOIN atividade a ON a.id_ativi = p.id_ativi
	LEFT JOIN tempstate t ON t.state_id_princ = p.id_princ
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInspection(row rowScanner) (domain.Inspection, error) {
	var rec domain.Inspection
	var dates [9]sql.NullTime
	err := row.Scan(
		&rec.IDPrinc,
		&rec.Player,
		&rec.Segurado,
		&rec.Guilty,
		&rec.IDUserGuilty,
		&rec.Guy,
		&rec.Atividade,
		&rec.Obs,
		&rec.Loc,
		&rec.Meta,
		&dates[0], &dates[1], &dates[2], &dates[3], &dates[4],
		&dates[5], &dates[6], &dates[7], &dates[8],
		&rec.Honorario, &rec.Despesa, &rec.GuyHonorario, &rec.GuyDespesa,
		&rec.StateLoc,
		&rec.StateDtEnvio,
		&rec.StateDtDenvio,
		&rec.StateDtPago,
	)
	if err != nil {
		return rec, err
	}
	targets := []*string{
		&rec.DtInspecao, &rec.DtEntregue, &rec.DtAcerto, &rec.DtEnvio, &rec.DtPago,
		&rec.DtDenvio, &rec.DtDpago, &rec.DtGuyPago, &rec.DtGuyDpago,
	}
	for i, d := range dates {
		if d.Valid {
			*targets[i] = d.Time.Format("2006-01-02")
		}
	}
	return rec, nil
}

func (r *PostgresInspectionsRepo) List(ctx context.Context) ([]domain.Inspection, error) {
	rows, err := r.db.QueryContext(ctx, inspectionSelect+` ORDER BY p.id_princ DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query inspections: %w", err)
	}
	defer rows.Close()

	var out []domain.Inspection
	for rows.Next() {
		rec, err := scanInspection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inspection: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inspections: %w", err)
	}
	return out, nil
}

func (r *PostgresInspectionsRepo) Get(ctx context.Context, idPrinc int64) (*domain.Inspection, error) {
	rec, err := scanInspection(r.db.QueryRowContext(ctx, inspectionSelect+` WHERE p.id_princ = $1`, idPrinc))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query inspection %d: %w", idPrinc, err)
	}
	return &rec, nil
}

func (r *PostgresInspectionsRepo) UpdateField(ctx context.Context, idPrinc int64, column string, value any) error {
	if !UpdatableColumns[column] {
		return fmt.Errorf("column %q is not updatable", column)
	}
	// column comes from the whitelist above
	res, err := r.db.ExecContext(ctx, `UPDATE princ SET `+column+` = $1 WHERE id_princ = $2`, value, idPrinc)
	if err != nil {
		return fmt.Errorf("failed to update %s of inspection %d: %w", column, idPrinc, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresInspectionsRepo) Delete(ctx context.Context, ids []int64) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tempstate WHERE state_id_princ = ANY($1)`, pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("failed to delete markers: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM princ WHERE id_princ = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete inspections: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return int(n), nil
}

func (r *PostgresInspectionsRepo) Forward(ctx context.Context, ids []int64, toUserID int64) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE princ SET id_user_guilty = $1 WHERE id_princ = ANY($2)`,
		toUserID, pq.Array(ids),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to forward inspections: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(n), nil
}

func (r *PostgresInspectionsRepo) SetMarker(ctx context.Context, ids []int64, t domain.MarkerType, level int) (int, error) {
	if !domain.ValidMarkerType(t) {
		return 0, fmt.Errorf("invalid marker type %q", t)
	}
	column := string(t)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	updated := 0
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tempstate (state_id_princ) VALUES ($1) ON CONFLICT (state_id_princ) DO NOTHING`, id,
		); err != nil {
			return 0, fmt.Errorf("failed to ensure marker row for %d: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, `UPDATE tempstate SET `+column+` = $1 WHERE state_id_princ = $2`, level, id)
		if err != nil {
			return 0, fmt.Errorf("failed to set marker for %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			updated++
		}
		if level == domain.MarkerLevelNone {
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM tempstate
				WHERE state_id_princ = $1
				  AND COALESCE(state_loc, 0) = 0
				  AND COALESCE(state_dt_envio, 0) = 0
				  AND COALESCE(state_dt_denvio, 0) = 0
				  AND COALESCE(state_dt_pago, 0) = 0`, id,
			); err != nil {
				return 0, fmt.Errorf("failed to prune marker row for %d: %w", id, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit markers: %w", err)
	}
	return updated, nil
}

func (r *PostgresInspectionsRepo) PendingTotals(ctx context.Context) (domain.PendingTotals, error) {
	var out domain.PendingTotals
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN dt_pago IS NULL THEN honorario ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN dt_dpago IS NULL THEN despesa ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN dt_guy_pago IS NULL THEN guy_honorario ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN dt_guy_dpago IS NULL THEN guy_despesa ELSE 0 END), 0)
		FROM princ
	`).Scan(&out.Honorarios, &out.Despesas, &out.GuyHonorario, &out.GuyDespesa)
	if err != nil {
		return out, fmt.Errorf("failed to query pending totals: %w", err)
	}
	out.ComputeExpress()
	return out, nil
}

var _ InspectionsRepository = (*PostgresInspectionsRepo)(nil)
