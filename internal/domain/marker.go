package domain

// MarkerType matches a tempstate column.
type MarkerType string

const (
	MarkerLoc      MarkerType = "state_loc"
	MarkerDtEnvio  MarkerType = "state_dt_envio"
	MarkerDtDenvio MarkerType = "state_dt_denvio"
	MarkerDtPago   MarkerType = "state_dt_pago"
)

// AllMarkerTypes in display order.
var AllMarkerTypes = []MarkerType{MarkerLoc, MarkerDtEnvio, MarkerDtDenvio, MarkerDtPago}

const (
	MarkerLevelNone   = 0
	MarkerLevelBlue   = 1
	MarkerLevelYellow = 2
	MarkerLevelRed    = 3
)

func ValidMarkerType(t MarkerType) bool {
	for _, v := range AllMarkerTypes {
		if v == t {
			return true
		}
	}
	return false
}

func ValidMarkerLevel(level int) bool {
	return level >= MarkerLevelNone && level <= MarkerLevelRed
}
