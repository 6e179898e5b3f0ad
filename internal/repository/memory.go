package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"xfinance-dashboard/internal/domain"
)

// MemoryInspectionsRepo backs the server when DB is disabled.
type MemoryInspectionsRepo struct {
	mu    sync.RWMutex
	recs  map[int64]domain.Inspection
	users *MemoryUsersRepo
}

// NewMemoryInspectionsRepo users resolves guilty nicks on Forward; may be nil.
func NewMemoryInspectionsRepo(users *MemoryUsersRepo, seed ...domain.Inspection) *MemoryInspectionsRepo {
	r := &MemoryInspectionsRepo{recs: map[int64]domain.Inspection{}, users: users}
	for _, rec := range seed {
		r.recs[rec.IDPrinc] = rec
	}
	return r
}

// Put inserts or replaces a record.
func (r *MemoryInspectionsRepo) Put(rec domain.Inspection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[rec.IDPrinc] = rec
}

func (r *MemoryInspectionsRepo) List(_ context.Context) ([]domain.Inspection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Inspection, 0, len(r.recs))
	for _, rec := range r.recs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IDPrinc > out[j].IDPrinc })
	return out, nil
}

func (r *MemoryInspectionsRepo) Get(_ context.Context, idPrinc int64) (*domain.Inspection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recs[idPrinc]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (r *MemoryInspectionsRepo) UpdateField(_ context.Context, idPrinc int64, column string, value any) error {
	if !UpdatableColumns[column] {
		return fmt.Errorf("column %q is not updatable", column)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[idPrinc]
	if !ok {
		return ErrNotFound
	}
	if err := applyField(&rec, column, value); err != nil {
		return err
	}
	r.recs[idPrinc] = rec
	return nil
}

func (r *MemoryInspectionsRepo) Delete(_ context.Context, ids []int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := r.recs[id]; ok {
			delete(r.recs, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryInspectionsRepo) Forward(ctx context.Context, ids []int64, toUserID int64) (int, error) {
	nick := ""
	if r.users != nil {
		if u, err := r.users.Get(ctx, toUserID); err == nil {
			nick = u.Nick
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range ids {
		rec, ok := r.recs[id]
		if !ok {
			continue
		}
		rec.IDUserGuilty = toUserID
		rec.Guilty = nick
		r.recs[id] = rec
		n++
	}
	return n, nil
}

func (r *MemoryInspectionsRepo) SetMarker(_ context.Context, ids []int64, t domain.MarkerType, level int) (int, error) {
	if !domain.ValidMarkerType(t) {
		return 0, fmt.Errorf("invalid marker type %q", t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range ids {
		rec, ok := r.recs[id]
		if !ok {
			continue
		}
		rec.SetMarker(t, level)
		r.recs[id] = rec
		n++
	}
	return n, nil
}

func (r *MemoryInspectionsRepo) PendingTotals(_ context.Context) (domain.PendingTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out domain.PendingTotals
	add := func(sum *decimal.Decimal, amount decimal.NullDecimal, paid string) {
		if paid == "" && amount.Valid {
			*sum = sum.Add(amount.Decimal)
		}
	}
	for _, rec := range r.recs {
		add(&out.Honorarios, rec.Honorario, rec.DtPago)
		add(&out.Despesas, rec.Despesa, rec.DtDpago)
		add(&out.GuyHonorario, rec.GuyHonorario, rec.DtGuyPago)
		add(&out.GuyDespesa, rec.GuyDespesa, rec.DtGuyDpago)
	}
	out.ComputeExpress()
	return out, nil
}

func applyField(rec *domain.Inspection, column string, value any) error {
	dates := map[string]*string{
		"dt_inspecao":  &rec.DtInspecao,
		"dt_entregue":  &rec.DtEntregue,
		"dt_acerto":    &rec.DtAcerto,
		"dt_envio":     &rec.DtEnvio,
		"dt_pago":      &rec.DtPago,
		"dt_denvio":    &rec.DtDenvio,
		"dt_dpago":     &rec.DtDpago,
		"dt_guy_pago":  &rec.DtGuyPago,
		"dt_guy_dpago": &rec.DtGuyDpago,
		"obs":          &rec.Obs,
	}
	amounts := map[string]*decimal.NullDecimal{
		"honorario":     &rec.Honorario,
		"despesa":       &rec.Despesa,
		"guy_honorario": &rec.GuyHonorario,
		"guy_despesa":   &rec.GuyDespesa,
	}
	ints := map[string]*int{
		"loc":  &rec.Loc,
		"meta": &rec.Meta,
	}

	if p, ok := dates[column]; ok {
		switch v := value.(type) {
		case nil:
			*p = ""
		case string:
			*p = v
		default:
			return fmt.Errorf("column %s expects a string, got %T", column, value)
		}
		return nil
	}
	if p, ok := amounts[column]; ok {
		switch v := value.(type) {
		case nil:
			*p = decimal.NullDecimal{}
		case decimal.Decimal:
			*p = decimal.NullDecimal{Decimal: v, Valid: true}
		default:
			return fmt.Errorf("column %s expects a decimal, got %T", column, value)
		}
		return nil
	}
	if p, ok := ints[column]; ok {
		switch v := value.(type) {
		case nil:
			*p = 0
		case int:
			*p = v
		default:
			return fmt.Errorf("column %s expects an int, got %T", column, value)
		}
		return nil
	}
	return fmt.Errorf("column %q is not updatable", column)
}

// MemoryUsersRepo user table in memory.
type MemoryUsersRepo struct {
	mu    sync.RWMutex
	users map[int64]domain.User
}

func NewMemoryUsersRepo(seed ...domain.User) *MemoryUsersRepo {
	r := &MemoryUsersRepo{users: map[int64]domain.User{}}
	for _, u := range seed {
		r.users[u.ID] = u
	}
	return r
}

func (r *MemoryUsersRepo) Get(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUsersRepo) ListActive(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.User
	for _, u := range r.users {
		if u.Ativo {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nick < out[j].Nick })
	return out, nil
}

// MemoryAuditRepo append-only log in memory.
type MemoryAuditRepo struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
}

func NewMemoryAuditRepo() *MemoryAuditRepo {
	return &MemoryAuditRepo{}
}

func (r *MemoryAuditRepo) Append(_ context.Context, e domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryAuditRepo) ListByInspection(_ context.Context, idPrinc int64) ([]domain.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.AuditEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].IDPrinc == idPrinc {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *MemoryAuditRepo) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	purged := 0
	for _, e := range r.entries {
		if e.ExpiresAt.Before(now) {
			purged++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return purged, nil
}

var (
	_ InspectionsRepository = (*MemoryInspectionsRepo)(nil)
	_ UsersRepository       = (*MemoryUsersRepo)(nil)
	_ AuditRepository       = (*MemoryAuditRepo)(nil)
)
