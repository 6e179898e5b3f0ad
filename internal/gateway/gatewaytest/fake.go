// Package gatewaytest provides an in-memory Gateway that records every call.
package gatewaytest

import (
	"context"
	"sync"

	"xfinance-dashboard/internal/domain"
	"xfinance-dashboard/internal/gateway"
)

// Call one recorded invocation.
type Call struct {
	Op    string
	Input any
}

// Fake scripted Gateway. Zero value answers every mutation with success.
type Fake struct {
	mu sync.Mutex

	Calls []Call

	// Mutation results by op ("excluir", "encaminhar", "marcar", "update"). Missing → success.
	Results map[string]gateway.Result
	// Errors by op, returned instead of a result.
	Errors map[string]error
	// MarcarHook runs before Marcar answers; lets a test block or reorder calls.
	MarcarHook func(in gateway.MarcarInput)

	Inspections []domain.Inspection
	Users       []gateway.UserOption
	KPIs        domain.PendingTotals
}

func (f *Fake) record(op string, in any) (gateway.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Op: op, Input: in})
	if err, ok := f.Errors[op]; ok && err != nil {
		return gateway.Failed(gateway.FallbackMessage), err
	}
	if r, ok := f.Results[op]; ok {
		return r, nil
	}
	return gateway.Result{Success: true}, nil
}

func (f *Fake) Excluir(_ context.Context, in gateway.ExcluirInput) (gateway.Result, error) {
	return f.record("excluir", in)
}

func (f *Fake) Encaminhar(_ context.Context, in gateway.EncaminharInput) (gateway.Result, error) {
	return f.record("encaminhar", in)
}

func (f *Fake) Marcar(_ context.Context, in gateway.MarcarInput) (gateway.Result, error) {
	f.mu.Lock()
	hook := f.MarcarHook
	f.mu.Unlock()
	if hook != nil {
		hook(in)
	}
	return f.record("marcar", in)
}

func (f *Fake) UpdateInspectionField(_ context.Context, idPrinc int64, field, value string) (gateway.Result, error) {
	return f.record("update", UpdateCall{IDPrinc: idPrinc, Field: field, Value: value})
}

// UpdateCall recorded input of UpdateInspectionField.
type UpdateCall struct {
	IDPrinc int64
	Field   string
	Value   string
}

func (f *Fake) FetchUsersOptions(_ context.Context) ([]gateway.UserOption, error) {
	_, err := f.record("users", nil)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.UserOption(nil), f.Users...), nil
}

func (f *Fake) FetchInspections(_ context.Context) ([]domain.Inspection, error) {
	_, err := f.record("inspections", nil)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Inspection(nil), f.Inspections...), nil
}

func (f *Fake) FetchKPIs(_ context.Context) (domain.PendingTotals, error) {
	_, err := f.record("kpis", nil)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.KPIs, err
}

// SetResult scripts the answer for one op.
func (f *Fake) SetResult(op string, r gateway.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Results == nil {
		f.Results = map[string]gateway.Result{}
	}
	f.Results[op] = r
}

// SetError scripts a transport error for one op.
func (f *Fake) SetError(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Errors == nil {
		f.Errors = map[string]error{}
	}
	f.Errors[op] = err
}

// SetInspections replaces what the next refresh returns.
func (f *Fake) SetInspections(recs []domain.Inspection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inspections = append([]domain.Inspection(nil), recs...)
}

// CallsTo recorded calls of one op.
func (f *Fake) CallsTo(op string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

var _ gateway.Gateway = (*Fake)(nil)
