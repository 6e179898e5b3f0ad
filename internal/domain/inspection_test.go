package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInspection_Markers(t *testing.T) {
	rec := &Inspection{IDPrinc: 1}
	rec.SetMarker(MarkerDtEnvio, 2)
	rec.SetMarker(MarkerDtPago, 3)
	rec.SetMarker(MarkerType("bogus"), 1)

	assert.Equal(t, 0, rec.Marker(MarkerLoc))
	assert.Equal(t, 2, rec.Marker(MarkerDtEnvio))
	assert.Equal(t, 3, rec.Marker(MarkerDtPago))
	assert.Equal(t, 0, rec.Marker(MarkerType("bogus")))
	assert.Equal(t, map[MarkerType]int{
		MarkerLoc: 0, MarkerDtEnvio: 2, MarkerDtDenvio: 0, MarkerDtPago: 3,
	}, rec.Markers())
}

func TestValidMarker(t *testing.T) {
	assert.True(t, ValidMarkerType(MarkerDtDenvio))
	assert.False(t, ValidMarkerType("state_other"))
	assert.True(t, ValidMarkerLevel(0))
	assert.True(t, ValidMarkerLevel(3))
	assert.False(t, ValidMarkerLevel(4))
	assert.False(t, ValidMarkerLevel(-1))
}

func TestPendingTotals_ComputeExpress(t *testing.T) {
	p := PendingTotals{
		Honorarios:   decimal.NewFromInt(1000),
		Despesas:     decimal.NewFromInt(200),
		GuyHonorario: decimal.NewFromInt(300),
		GuyDespesa:   decimal.NewFromInt(50),
	}
	p.ComputeExpress()
	assert.True(t, p.Express.Equal(decimal.NewFromInt(850)))
}
