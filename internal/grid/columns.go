// Package grid projects the record set into a filtered, sorted and paginated view.
package grid

import (
	"strconv"

	"github.com/shopspring/decimal"

	"xfinance-dashboard/internal/alerts"
	"xfinance-dashboard/internal/domain"
	"xfinance-dashboard/internal/editor"
)

// ColumnKind decides the filter predicate and sort order of a column.
type ColumnKind string

const (
	ColText   ColumnKind = "text"
	ColDate   ColumnKind = "date"
	ColNumber ColumnKind = "number"
)

// Column one grid column. ID doubles as the field name sent on edits.
type Column struct {
	ID     string
	Header string
	Kind   ColumnKind
	// Stage set on alert-bearing columns.
	Stage alerts.Stage
	// Identity columns carry the row status tint.
	Identity bool
	Editable bool
	EditType editor.FieldType
	Value    func(*domain.Inspection) string
}

func amountString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func text(id, header string, identity bool, v func(*domain.Inspection) string) Column {
	return Column{ID: id, Header: header, Kind: ColText, Identity: identity, Value: v}
}

func date(id, header string, stage alerts.Stage, v func(*domain.Inspection) string) Column {
	return Column{ID: id, Header: header, Kind: ColDate, Stage: stage, Editable: true, EditType: editor.FieldDate, Value: v}
}

func amount(id, header string, v func(*domain.Inspection) decimal.NullDecimal) Column {
	return Column{
		ID: id, Header: header, Kind: ColNumber, Editable: true, EditType: editor.FieldCurrency,
		Value: func(r *domain.Inspection) string { return amountString(v(r)) },
	}
}

var columns = []Column{
	text("player", "Player", true, func(r *domain.Inspection) string { return r.Player }),
	text("segurado", "Segurado", true, func(r *domain.Inspection) string { return r.Segurado }),
	text("guilty", "Guilty", false, func(r *domain.Inspection) string { return r.Guilty }),
	text("guy", "Guy", false, func(r *domain.Inspection) string { return r.Guy }),
	text("atividade", "Atividade", false, func(r *domain.Inspection) string { return r.Atividade }),
	{ID: "loc", Header: "Loc", Kind: ColNumber, Editable: true, EditType: editor.FieldNumber,
		Value: func(r *domain.Inspection) string { return strconv.Itoa(r.Loc) }},
	{ID: "meta", Header: "Meta", Kind: ColNumber, Editable: true, EditType: editor.FieldNumber,
		Value: func(r *domain.Inspection) string { return strconv.Itoa(r.Meta) }},
	date("dt_inspecao", "Inspeção", alerts.StageInspecao, func(r *domain.Inspection) string { return r.DtInspecao }),
	date("dt_entregue", "Entregue", "", func(r *domain.Inspection) string { return r.DtEntregue }),
	date("dt_acerto", "Acerto", "", func(r *domain.Inspection) string { return r.DtAcerto }),
	date("dt_envio", "Envio", alerts.StageAcerto, func(r *domain.Inspection) string { return r.DtEnvio }),
	date("dt_pago", "Pago", "", func(r *domain.Inspection) string { return r.DtPago }),
	amount("honorario", "Honorário", func(r *domain.Inspection) decimal.NullDecimal { return r.Honorario }),
	date("dt_denvio", "D.Envio", alerts.StageDEnvio, func(r *domain.Inspection) string { return r.DtDenvio }),
	date("dt_dpago", "D.Pago", "", func(r *domain.Inspection) string { return r.DtDpago }),
	amount("despesa", "Despesa", func(r *domain.Inspection) decimal.NullDecimal { return r.Despesa }),
	date("dt_guy_pago", "G.Pago", alerts.StageGPago, func(r *domain.Inspection) string { return r.DtGuyPago }),
	amount("guy_honorario", "G.Honorário", func(r *domain.Inspection) decimal.NullDecimal { return r.GuyHonorario }),
	date("dt_guy_dpago", "G.D.Pago", alerts.StageGDPago, func(r *domain.Inspection) string { return r.DtGuyDpago }),
	amount("guy_despesa", "G.Despesa", func(r *domain.Inspection) decimal.NullDecimal { return r.GuyDespesa }),
	{ID: "obs", Header: "Obs", Kind: ColText, Editable: true, EditType: editor.FieldText,
		Value: func(r *domain.Inspection) string { return r.Obs }},
}

var columnsByID = func() map[string]Column {
	m := make(map[string]Column, len(columns))
	for _, c := range columns {
		m[c.ID] = c
	}
	return m
}()

// Columns catalog in display order.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// ColumnByID ok=false for unknown ids.
func ColumnByID(id string) (Column, bool) {
	c, ok := columnsByID[id]
	return c, ok
}
