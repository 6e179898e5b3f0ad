package gateway

import "xfinance-dashboard/internal/domain"

type MarkerTypeOption struct {
	Type  domain.MarkerType `json:"type"`
	Label string            `json:"label"`
}

type MarkerLevelOption struct {
	Level int    `json:"level"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var markerTypes = []MarkerTypeOption{
	{Type: domain.MarkerLoc, Label: "LOC"},
	{Type: domain.MarkerDtEnvio, Label: "Envio"},
	{Type: domain.MarkerDtDenvio, Label: "D.Envio"},
	{Type: domain.MarkerDtPago, Label: "Pago"},
}

var markerLevels = []MarkerLevelOption{
	{Level: domain.MarkerLevelNone, Label: "Sem marcador", Color: "gray"},
	{Level: domain.MarkerLevelBlue, Label: "Azul", Color: "blue"},
	{Level: domain.MarkerLevelYellow, Label: "Amarelo", Color: "yellow"},
	{Level: domain.MarkerLevelRed, Label: "Vermelho", Color: "red"},
}

// MarkerTypes static lookup, rendered verbatim.
func MarkerTypes() []MarkerTypeOption {
	out := make([]MarkerTypeOption, len(markerTypes))
	copy(out, markerTypes)
	return out
}

// MarkerLevels static lookup, rendered verbatim.
func MarkerLevels() []MarkerLevelOption {
	out := make([]MarkerLevelOption, len(markerLevels))
	copy(out, markerLevels)
	return out
}

// MarkerTypeLabel "" for unknown types.
func MarkerTypeLabel(t domain.MarkerType) string {
	for _, o := range markerTypes {
		if o.Type == t {
			return o.Label
		}
	}
	return ""
}

// MarkerLevelLabel "" for out-of-range levels.
func MarkerLevelLabel(level int) string {
	for _, o := range markerLevels {
		if o.Level == level {
			return o.Label
		}
	}
	return ""
}
