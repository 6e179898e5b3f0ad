package grid

import (
	"github.com/shopspring/decimal"

	"xfinance-dashboard/internal/alerts"
	"xfinance-dashboard/internal/domain"
)

// RowStatus workflow position of a whole row, most advanced first.
type RowStatus int

const (
	StatusPreFinal RowStatus = iota
	StatusConcluida
	StatusAguardandoPagamento
	StatusAguardandoCobranca
	StatusEmAndamento
	StatusPendente
)

var statusMeta = map[RowStatus]struct{ label, color string }{
	StatusPreFinal:            {"Pré-final", "#A78BFA"},
	StatusConcluida:           {"Concluída", "#CE62D9"},
	StatusAguardandoPagamento: {"Aguardando pagamento", "#EF4444"},
	StatusAguardandoCobranca:  {"Aguardando cobrança", "#10B981"},
	StatusEmAndamento:         {"Em andamento", "#F59E0B"},
	StatusPendente:            {"Pendente", "#E0E0FF"},
}

func (s RowStatus) Label() string { return statusMeta[s].label }

// Color tint applied to identity cells.
func (s RowStatus) Color() string { return statusMeta[s].color }

func pendingAmount(amount decimal.NullDecimal, paid string) bool {
	return amount.Valid && amount.Decimal.IsPositive() && !alerts.IsFilled(paid)
}

// StatusOf derives the row status from the workflow dates.
func StatusOf(r *domain.Inspection, clock alerts.Clock) RowStatus {
	switch {
	case alerts.IsFilled(r.DtPago):
		if pendingAmount(r.Despesa, r.DtDpago) ||
			pendingAmount(r.GuyHonorario, r.DtGuyPago) ||
			pendingAmount(r.GuyDespesa, r.DtGuyDpago) {
			return StatusPreFinal
		}
		return StatusConcluida
	case alerts.IsFilled(r.DtEnvio):
		return StatusAguardandoPagamento
	case alerts.IsFilled(r.DtEntregue):
		return StatusAguardandoCobranca
	case alerts.IsTodayOrPast(r.DtInspecao, clock):
		return StatusEmAndamento
	default:
		return StatusPendente
	}
}
