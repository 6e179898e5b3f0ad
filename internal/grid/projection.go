package grid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"xfinance-dashboard/internal/alerts"
	"xfinance-dashboard/internal/domain"
)

const DefaultPageSize = 50

// SortSpec sort by one column.
type SortSpec struct {
	Column string
	Desc   bool
}

// Query filters by column id, optional sort, 1-based page.
type Query struct {
	Filters map[string]string
	Sort    *SortSpec
	Page    int
}

// Cell one rendered cell.
type Cell struct {
	Value string
	// Alert level of the column's stage, "" on columns without a stage.
	Alert alerts.Level
	// Tint row status color, identity columns only.
	Tint string
}

// Row one record with its derived decoration.
type Row struct {
	Record domain.Inspection
	Alerts alerts.Levels
	Status RowStatus
}

// Cell decoration of one column of the row.
func (r Row) Cell(columnID string) Cell {
	col, ok := ColumnByID(columnID)
	if !ok {
		return Cell{}
	}
	c := Cell{Value: col.Value(&r.Record)}
	if col.Stage != "" {
		c.Alert = r.Alerts[col.Stage]
	}
	if col.Identity {
		c.Tint = r.Status.Color()
	}
	return c
}

// View one page. Shown and Filtered are both taken from the same filtered slice.
type View struct {
	Rows      []Row
	Page      int
	PageCount int
	PageSize  int
	Shown     int
	Filtered  int
	Total     int
}

// Summary "showing N of M", with "(filtered from T)" when a filter removed rows.
func (v View) Summary() string {
	s := fmt.Sprintf("showing %d of %d", v.Shown, v.Filtered)
	if v.Filtered != v.Total {
		s += fmt.Sprintf(" (filtered from %d)", v.Total)
	}
	return s
}

// Projector builds views over a record set.
type Projector struct {
	evaluator *alerts.Evaluator
	pageSize  int
}

func NewProjector(evaluator *alerts.Evaluator, pageSize int) *Projector {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if evaluator == nil {
		evaluator = alerts.NewEvaluator(nil)
	}
	return &Projector{evaluator: evaluator, pageSize: pageSize}
}

func (p *Projector) PageSize() int { return p.pageSize }

// Filter records matching every non-empty filter, in input order.
func (p *Projector) Filter(records []domain.Inspection, filters map[string]string) []domain.Inspection {
	out := make([]domain.Inspection, 0, len(records))
	for i := range records {
		if matches(&records[i], filters) {
			out = append(out, records[i])
		}
	}
	return out
}

// Sorted stable sort of a copy of records.
func (p *Projector) Sorted(records []domain.Inspection, spec *SortSpec) []domain.Inspection {
	out := append([]domain.Inspection(nil), records...)
	if spec == nil {
		return out
	}
	col, ok := ColumnByID(spec.Column)
	if !ok {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(col, &out[i], &out[j])
		if spec.Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// Project filter, sort, paginate and decorate.
func (p *Projector) Project(records []domain.Inspection, q Query) View {
	filtered := p.Sorted(p.Filter(records, q.Filters), q.Sort)

	pageCount := (len(filtered) + p.pageSize - 1) / p.pageSize
	if pageCount == 0 {
		pageCount = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	start := (page - 1) * p.pageSize
	end := start + p.pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	rows := make([]Row, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, p.Decorate(filtered[i]))
	}

	return View{
		Rows:      rows,
		Page:      page,
		PageCount: pageCount,
		PageSize:  p.pageSize,
		Shown:     len(rows),
		Filtered:  len(filtered),
		Total:     len(records),
	}
}

// Decorate evaluates alerts and row status for one record.
func (p *Projector) Decorate(rec domain.Inspection) Row {
	return Row{
		Record: rec,
		Alerts: p.evaluator.EvaluateAll(&rec),
		Status: StatusOf(&rec, p.evaluator.Clock()),
	}
}

func matches(r *domain.Inspection, filters map[string]string) bool {
	for id, needle := range filters {
		needle = strings.TrimSpace(needle)
		if needle == "" {
			continue
		}
		col, ok := ColumnByID(id)
		if !ok {
			continue
		}
		value := col.Value(r)
		switch col.Kind {
		case ColText:
			if !strings.Contains(strings.ToLower(value), strings.ToLower(needle)) {
				return false
			}
		default:
			// dates against the raw ISO string, numbers against their string form
			if !strings.Contains(value, needle) {
				return false
			}
		}
	}
	return true
}

// compare empty values sort before filled ones.
func compare(col Column, a, b *domain.Inspection) int {
	va, vb := col.Value(a), col.Value(b)
	if col.Kind == ColNumber {
		da, errA := decimal.NewFromString(va)
		db, errB := decimal.NewFromString(vb)
		switch {
		case errA != nil && errB != nil:
			return 0
		case errA != nil:
			return -1
		case errB != nil:
			return 1
		}
		return da.Cmp(db)
	}
	if col.Kind == ColText {
		va, vb = strings.ToLower(va), strings.ToLower(vb)
	}
	return strings.Compare(va, vb)
}
