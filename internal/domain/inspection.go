package domain

import (
	"github.com/shopspring/decimal"
)

// Inspection one row of the princ table as the dashboard sees it.
// Dates are ISO YYYY-MM-DD strings; "" means null.
type Inspection struct {
	IDPrinc int64 `json:"idPrinc"`

	Player       string `json:"player"`
	Segurado     string `json:"segurado"`
	Guilty       string `json:"guilty"`
	IDUserGuilty int64  `json:"idUserGuilty"`
	Guy          string `json:"guy"`
	Atividade    string `json:"atividade"`
	Obs          string `json:"obs"`
	Loc          int    `json:"loc"`
	Meta         int    `json:"meta"`

	DtInspecao string `json:"dtInspecao"`
	DtEntregue string `json:"dtEntregue"`
	DtAcerto   string `json:"dtAcerto"`
	DtEnvio    string `json:"dtEnvio"`
	DtPago     string `json:"dtPago"`
	DtDenvio   string `json:"dtDenvio"`
	DtDpago    string `json:"dtDpago"`
	DtGuyPago  string `json:"dtGuyPago"`
	DtGuyDpago string `json:"dtGuyDpago"`

	Honorario    decimal.NullDecimal `json:"honorario"`
	Despesa      decimal.NullDecimal `json:"despesa"`
	GuyHonorario decimal.NullDecimal `json:"guyHonorario"`
	GuyDespesa   decimal.NullDecimal `json:"guyDespesa"`

	StateLoc      int `json:"stateLoc"`
	StateDtEnvio  int `json:"stateDtEnvio"`
	StateDtDenvio int `json:"stateDtDenvio"`
	StateDtPago   int `json:"stateDtPago"`
}

// Amount helper for fixtures and conversions.
func Amount(v float64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(v), Valid: true}
}

// Marker returns the level of one marker type, 0 for unknown types.
func (i *Inspection) Marker(t MarkerType) int {
	switch t {
	case MarkerLoc:
		return i.StateLoc
	case MarkerDtEnvio:
		return i.StateDtEnvio
	case MarkerDtDenvio:
		return i.StateDtDenvio
	case MarkerDtPago:
		return i.StateDtPago
	}
	return 0
}

// SetMarker sets one marker type; unknown types are ignored.
func (i *Inspection) SetMarker(t MarkerType, level int) {
	switch t {
	case MarkerLoc:
		i.StateLoc = level
	case MarkerDtEnvio:
		i.StateDtEnvio = level
	case MarkerDtDenvio:
		i.StateDtDenvio = level
	case MarkerDtPago:
		i.StateDtPago = level
	}
}

// Markers snapshot of the four marker levels.
func (i *Inspection) Markers() map[MarkerType]int {
	out := make(map[MarkerType]int, len(AllMarkerTypes))
	for _, t := range AllMarkerTypes {
		out[t] = i.Marker(t)
	}
	return out
}

// PendingTotals express KPI totals: sums of amounts whose paid date is still null.
type PendingTotals struct {
	Express      decimal.Decimal `json:"express"`
	Honorarios   decimal.Decimal `json:"honorarios"`
	Despesas     decimal.Decimal `json:"despesas"`
	GuyHonorario decimal.Decimal `json:"guyHonorario"`
	GuyDespesa   decimal.Decimal `json:"guyDespesa"`
}

// ComputeExpress express = honorarios + despesas - guyHonorario - guyDespesa
func (p *PendingTotals) ComputeExpress() {
	p.Express = p.Honorarios.Add(p.Despesas).Sub(p.GuyHonorario).Sub(p.GuyDespesa)
}
