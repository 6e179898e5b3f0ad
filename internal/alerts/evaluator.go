package alerts

import (
	"github.com/shopspring/decimal"

	"xfinance-dashboard/internal/domain"
)

// Level derived urgency of one workflow stage. Never persisted.
type Level string

const (
	LevelNone    Level = "none"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
	LevelSuccess Level = "success"
)

// Stage workflow stage with its own alert rule.
type Stage string

const (
	StageInspecao Stage = "inspecao"
	StageAcerto   Stage = "acerto"
	StageDEnvio   Stage = "denvio"
	StageGPago    Stage = "gpago"
	StageGDPago   Stage = "gdpago"
)

// Stages in workflow order.
var Stages = []Stage{StageInspecao, StageAcerto, StageDEnvio, StageGPago, StageGDPago}

// Levels alert level per stage of one record.
type Levels map[Stage]Level

const (
	inspectionWarningDays = 14
)

// materialAmount amounts at or below this never raise an alert.
var materialAmount = decimal.NewFromInt(1)

// payoutFields the (sent, paid, amount) triple a payout stage is evaluated on.
type payoutFields struct {
	sent   func(*domain.Inspection) string
	paid   func(*domain.Inspection) string
	amount func(*domain.Inspection) decimal.NullDecimal
}

// GPago and GDPago key off dtEntregue: collaborator payouts are gated by delivery.
var payoutStages = map[Stage]payoutFields{
	StageAcerto: {
		sent:   func(r *domain.Inspection) string { return r.DtEnvio },
		paid:   func(r *domain.Inspection) string { return r.DtPago },
		amount: func(r *domain.Inspection) decimal.NullDecimal { return r.Honorario },
	},
	StageDEnvio: {
		sent:   func(r *domain.Inspection) string { return r.DtDenvio },
		paid:   func(r *domain.Inspection) string { return r.DtDpago },
		amount: func(r *domain.Inspection) decimal.NullDecimal { return r.Despesa },
	},
	StageGPago: {
		sent:   func(r *domain.Inspection) string { return r.DtEntregue },
		paid:   func(r *domain.Inspection) string { return r.DtGuyPago },
		amount: func(r *domain.Inspection) decimal.NullDecimal { return r.GuyHonorario },
	},
	StageGDPago: {
		sent:   func(r *domain.Inspection) string { return r.DtEntregue },
		paid:   func(r *domain.Inspection) string { return r.DtGuyDpago },
		amount: func(r *domain.Inspection) decimal.NullDecimal { return r.GuyDespesa },
	},
}

// Evaluator maps a record to alert levels. Pure apart from the injected clock.
type Evaluator struct {
	clock Clock
}

// NewEvaluator nil clock means SystemClock.
func NewEvaluator(clock Clock) *Evaluator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Evaluator{clock: clock}
}

// Clock the evaluator's notion of today.
func (e *Evaluator) Clock() Clock { return e.clock }

// Inspection delivered → success; not inspected → none; otherwise by staleness of dtInspecao.
func (e *Evaluator) Inspection(rec *domain.Inspection) Level {
	if rec == nil {
		return LevelNone
	}
	if IsFilled(rec.DtEntregue) {
		return LevelSuccess
	}
	if !IsFilled(rec.DtInspecao) {
		return LevelNone
	}
	days := DaysSince(rec.DtInspecao, e.clock)
	switch {
	case days <= 0:
		return LevelNone
	case days <= inspectionWarningDays:
		return LevelWarning
	default:
		return LevelDanger
	}
}

// Payout the shared send/paid/amount rule.
func Payout(sent, paid string, amount decimal.NullDecimal) Level {
	if !amount.Valid || amount.Decimal.LessThanOrEqual(materialAmount) {
		return LevelNone
	}
	if IsFilled(paid) {
		return LevelSuccess
	}
	if IsFilled(sent) {
		return LevelDanger
	}
	return LevelNone
}

// Evaluate one stage. Unknown stages are none.
func (e *Evaluator) Evaluate(rec *domain.Inspection, stage Stage) Level {
	if rec == nil {
		return LevelNone
	}
	if stage == StageInspecao {
		return e.Inspection(rec)
	}
	f, ok := payoutStages[stage]
	if !ok {
		return LevelNone
	}
	return Payout(f.sent(rec), f.paid(rec), f.amount(rec))
}

// EvaluateAll every stage of one record.
func (e *Evaluator) EvaluateAll(rec *domain.Inspection) Levels {
	out := make(Levels, len(Stages))
	for _, s := range Stages {
		out[s] = e.Evaluate(rec, s)
	}
	return out
}
