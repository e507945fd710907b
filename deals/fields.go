package deals

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/deal-engine/generic"
)

// =============================================================================
// ALIAS TABLES
// =============================================================================
//
// Deal documents have been written by several generations of admin forms, so
// one canonical field can live under any of a handful of keys. The first key
// holding a non-empty value wins.

type shape struct {
	ID         []string
	Label      []string
	Start      []string
	End        []string
	Charge     []string
	CostBasis  []string
	HijriStart []string
	HijriEnd   []string
}

var shapes = map[Kind]shape{
	KindOffer: {
		ID:         []string{"id", "_id", "dealId", "deal_id", "offerId"},
		Label:      []string{"name", "offerName", "offer_name", "title"},
		Start:      []string{"startDate", "start_date", "from", "dateFrom", "start"},
		End:        []string{"endDate", "end_date", "to", "dateTo", "end"},
		Charge:     []string{"price", "offerPrice", "offer_price", "amount"},
		CostBasis:  []string{"rootPrice", "root_price", "costPrice", "cost_price", "basePrice"},
		HijriStart: []string{"hijriStart", "hijri_start", "startHijri"},
		HijriEnd:   []string{"hijriEnd", "hijri_end", "endHijri"},
	},
	KindMonthly: {
		ID:         []string{"id", "_id", "dealId", "deal_id", "monthId"},
		Label:      []string{"month", "monthName", "month_label", "label", "name"},
		Start:      []string{"startDate", "start_date", "monthStart", "from", "start"},
		End:        []string{"endDate", "end_date", "monthEnd", "to", "end"},
		Charge:     []string{"price", "monthlyPrice", "monthly_price", "amount"},
		CostBasis:  []string{"rootPrice", "root_price", "monthlyRootPrice", "monthly_root_price", "costPrice"},
		HijriStart: []string{"hijriStart", "hijri_start", "startHijri"},
		HijriEnd:   []string{"hijriEnd", "hijri_end", "endHijri"},
	},
}

// lookup returns the value of the first alias present with a non-empty value.
func lookup(fields map[string]any, aliases []string) (any, bool) {
	for _, key := range aliases {
		v, ok := fields[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// =============================================================================
// VALUE COERCION
// =============================================================================

// Deal prices are bounded in magnitude and precision. Anything outside is
// treated like a non-finite value, before it can reach rounding or formatting.
const (
	maxIntegerDigits  = 15
	maxFractionDigits = 18
)

// toDecimal reads a number from any of the encodings deal documents use.
// ok is false for non-numeric, non-finite or out-of-range values.
func toDecimal(v any) (decimal.Decimal, bool) {
	d, ok := parseDecimal(v)
	if !ok || !withinBounds(d) {
		return decimal.Zero, false
	}
	return d, true
}

// withinBounds checks magnitude from the exponent and coefficient length,
// without rescaling the coefficient.
func withinBounds(d decimal.Decimal) bool {
	if d.IsZero() {
		return true
	}
	exp := int64(d.Exponent())
	if exp < -maxFractionDigits {
		return false
	}
	return exp+int64(d.NumDigits()) <= maxIntegerDigits
}

func parseDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float64:
		return floatDecimal(n)
	case float32:
		return floatDecimal(float64(n))
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return uintDecimal(uint64(n))
	case uint32:
		return decimal.NewFromInt(int64(n)), true
	case uint64:
		return uintDecimal(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

func floatDecimal(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

func uintDecimal(u uint64) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strconv.FormatUint(u, 10))
	return d, err == nil
}

func toDate(v any) (generic.TimePoint, bool) {
	switch t := v.(type) {
	case generic.TimePoint:
		return t, !t.IsZero()
	case time.Time:
		return generic.DayOf(t), !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return generic.TimePoint{}, false
		}
		return generic.DayOf(*t), true
	case string:
		tp, err := generic.ParseDate(t)
		return tp, err == nil
	default:
		return generic.TimePoint{}, false
	}
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
