package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"xfinance-dashboard/internal/alerts"
)

type fieldType string

const (
	typeDate     fieldType = "date"
	typeCurrency fieldType = "currency"
	typeInteger  fieldType = "integer"
	typeBoolean  fieldType = "boolean"
	typeText     fieldType = "text"
)

var editableFields = map[string]fieldType{
	"dt_inspecao":   typeDate,
	"dt_entregue":   typeDate,
	"dt_acerto":     typeDate,
	"dt_envio":      typeDate,
	"dt_pago":       typeDate,
	"dt_denvio":     typeDate,
	"dt_dpago":      typeDate,
	"dt_guy_pago":   typeDate,
	"dt_guy_dpago":  typeDate,
	"honorario":     typeCurrency,
	"despesa":       typeCurrency,
	"guy_honorario": typeCurrency,
	"guy_despesa":   typeCurrency,
	"loc":           typeInteger,
	"meta":          typeBoolean,
	"obs":           typeText,
}

var adminOnlyFields = map[string]bool{
	"honorario":     true,
	"despesa":       true,
	"guy_honorario": true,
	"guy_despesa":   true,
	"dt_pago":       true,
	"dt_dpago":      true,
	"dt_guy_pago":   true,
	"dt_guy_dpago":  true,
}

// kpiFields changing one of these moves the pending totals.
var kpiFields = map[string]bool{
	"honorario":     true,
	"despesa":       true,
	"guy_honorario": true,
	"guy_despesa":   true,
	"dt_pago":       true,
	"dt_dpago":      true,
	"dt_guy_pago":   true,
	"dt_guy_dpago":  true,
}

// convertValue edited text → column value. "", "-" → nil (NULL).
// Dates become ISO strings, currencies decimal.Decimal, integers and booleans int.
func convertValue(raw string, t fieldType, today time.Time) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return nil, nil
	}
	switch t {
	case typeDate:
		return convertDate(s, today)
	case typeCurrency:
		return convertCurrency(s)
	case typeInteger:
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("número inválido: %q", s)
		}
		return n, nil
	case typeBoolean:
		switch strings.ToLower(s) {
		case "1", "true", "sim", "yes":
			return 1, nil
		}
		return 0, nil
	default:
		return s, nil
	}
}

// convertDate shares the parser the alert evaluator uses, so DD/MM rolls over the same way.
func convertDate(s string, today time.Time) (string, error) {
	t, ok := alerts.ParseDate(s, today)
	if !ok {
		return "", fmt.Errorf("data inválida: %q", s)
	}
	return t.Format("2006-01-02"), nil
}

// convertCurrency accepts 1.234,56 (BR) and 1234.56 (US), with or without R$.
func convertCurrency(s string) (decimal.Decimal, error) {
	v := strings.ReplaceAll(s, "R$", "")
	v = strings.ReplaceAll(v, " ", "")
	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("valor inválido: %q", s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("valor negativo: %q", s)
	}
	return d, nil
}

// formatValue column value → audit text.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
