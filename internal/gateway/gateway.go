// Package gateway is the record mutation boundary: excluir, encaminhar, marcar and field updates,
// plus the reads the dashboard refreshes from.
package gateway

import (
	"context"
	"errors"

	"xfinance-dashboard/internal/domain"
)

// FallbackMessage shown when a failure carries no server message.
const FallbackMessage = "Erro de comunicação com o servidor"

// ErrTransport network errors and responses without a parseable envelope.
var ErrTransport = errors.New("gateway: transport failure")

// RejectedError the server answered with success=false.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

// UserMessage text to show for a failed call: the server message when there is one,
// the generic fallback otherwise.
func UserMessage(err error) string {
	var rejected *RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	return FallbackMessage
}

// Gateway every remote call the dashboard makes.
type Gateway interface {
	Excluir(ctx context.Context, in ExcluirInput) (Result, error)
	Encaminhar(ctx context.Context, in EncaminharInput) (Result, error)
	Marcar(ctx context.Context, in MarcarInput) (Result, error)
	UpdateInspectionField(ctx context.Context, idPrinc int64, field, value string) (Result, error)
	FetchUsersOptions(ctx context.Context) ([]UserOption, error)
	FetchInspections(ctx context.Context) ([]domain.Inspection, error)
	FetchKPIs(ctx context.Context) (domain.PendingTotals, error)
}

type ExcluirInput struct {
	IDsPrinc []int64 `json:"ids_princ"`
}

type EncaminharInput struct {
	IDsPrinc      []int64 `json:"ids_princ"`
	IDUserDestino int64   `json:"id_user_destino"`
	Obs           string  `json:"obs,omitempty"`
}

type MarcarInput struct {
	IDsPrinc   []int64           `json:"ids_princ"`
	MarkerType domain.MarkerType `json:"marker_type"`
	Value      int               `json:"value"`
}

// FieldUpdate body of a single-field patch.
type FieldUpdate struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Result outcome of a mutation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Updated int    `json:"updated,omitempty"`
	Deleted int    `json:"deleted,omitempty"`
}

// Failed convenience constructor for success=false.
func Failed(message string) Result {
	return Result{Success: false, Message: message}
}

// UserOption forward-destination choice.
type UserOption struct {
	Value int64  `json:"value"`
	Label string `json:"label"`
	Papel string `json:"papel"`
	Ativo bool   `json:"ativo"`
}
