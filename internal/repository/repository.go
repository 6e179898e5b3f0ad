package repository

import (
	"context"
	"errors"
	"time"

	"xfinance-dashboard/internal/domain"
)

var ErrNotFound = errors.New("repository: not found")

// InspectionsRepository princ rows joined with their lookups and markers.
type InspectionsRepository interface {
	List(ctx context.Context) ([]domain.Inspection, error)
	Get(ctx context.Context, idPrinc int64) (*domain.Inspection, error)
	// UpdateField sets one princ column. A nil value writes NULL.
	UpdateField(ctx context.Context, idPrinc int64, column string, value any) error
	// Delete removes marker rows first, then the records. Returns deleted record count.
	Delete(ctx context.Context, ids []int64) (int, error)
	// Forward reassigns id_user_guilty. Returns updated count.
	Forward(ctx context.Context, ids []int64, toUserID int64) (int, error)
	// SetMarker upserts one marker column; a marker row left all zero is removed.
	SetMarker(ctx context.Context, ids []int64, t domain.MarkerType, level int) (int, error)
	PendingTotals(ctx context.Context) (domain.PendingTotals, error)
}

type UsersRepository interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	ListActive(ctx context.Context) ([]domain.User, error)
}

type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	// ListByInspection newest first.
	ListByInspection(ctx context.Context, idPrinc int64) ([]domain.AuditEntry, error)
	// PurgeExpired deletes entries whose ExpiresAt is before now.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// UpdatableColumns princ columns a field update may touch.
var UpdatableColumns = map[string]bool{
	"dt_inspecao":   true,
	"dt_entregue":   true,
	"dt_acerto":     true,
	"dt_envio":      true,
	"dt_pago":       true,
	"dt_denvio":     true,
	"dt_dpago":      true,
	"dt_guy_pago":   true,
	"dt_guy_dpago":  true,
	"honorario":     true,
	"despesa":       true,
	"guy_honorario": true,
	"guy_despesa":   true,
	"loc":           true,
	"meta":          true,
	"obs":           true,
}
