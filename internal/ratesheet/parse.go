package ratesheet

import (
	"encoding/json"
	"fmt"
	"strings"

	"relocalc/internal/pricing"
)

// Legacy sheet column labels. The tier structure only exists in these strings;
// everything downstream uses the typed RouteCard fields.
const (
	labelFrom = "FROM BRANCHES"
	labelTo   = "TO Station"

	labelSharedUpTo50Weekday = "Week days up to 50 cft"
	labelSharedUpTo50Monday  = "Monday up to 50 days"
	labelSharedUpTo50Special = "weekend and month end up to 50 cft"

	labelSharedPerCftWeekday = "Per cft week days (from 51 cft to 500 cft)"
	labelSharedPerCftMonday  = "Per cft Monday (from 51 cft to 500 cft)"
	labelSharedPerCftSpecial = "Per cft Weekend and month end (from 51 cft to 500 cft)"

	labelFTL501to800Weekday = "FTL 501 to 800 cft Week days"
	labelFTL501to800Monday  = "Monday (FTL 501 to 800 cft)"
	labelFTL501to800Special = "Weekend/Monthend (FTL 501 to 800 cft)"

	labelFTL801to1200Weekday = "801 to 1200 cft"
	labelFTL801to1200Monday  = "Monday (801 to 1200 cft)"
	labelFTL801to1200Special = "Weekend/Monthend (801 to 1200 cft)"

	labelFTL1201to1600Weekday = "1201 to 1600 cft 110%"
	labelFTL1201to1600Monday  = "Monday (1201 to 1600 cft 110%)"
	labelFTL1201to1600Special = "Weekend/Monthend (1201 to 1600 cft 110%)"

	labelFTL1601to2000Weekday = "1601 to 2000 cft 120%"
	labelFTL1601to2000Monday  = "Monday (1601 to 2000 cft 120%)"
	labelFTL1601to2000Special = "Weekend/Monthend (1601 to 2000 cft 120%)"
)

// slabRanges fixes the charge-table band boundaries once, replacing the
// digit-scraping the Python service did against key names per request.
var slabRanges = []struct {
	key string
	lo  float64
	hi  float64
}{
	{"cft0to50", 0, 50},
	{"cft51to100", 51, 100},
	{"cft101to200", 101, 200},
	{"cft201to350", 201, 350},
	{"cft351to600", 351, 600},
	{"cft601to2000", 601, 2000},
}

func parseRow(row map[string]any) (pricing.RouteCard, error) {
	from, err := stringField(row, labelFrom)
	if err != nil {
		return pricing.RouteCard{}, err
	}
	to, err := stringField(row, labelTo)
	if err != nil {
		return pricing.RouteCard{}, err
	}
	card := pricing.RouteCard{From: strings.TrimSpace(from), To: strings.TrimSpace(to)}

	groups := []struct {
		dst                      *pricing.RegimeRates
		weekday, special, monday string
	}{
		{&card.SharedUpTo50, labelSharedUpTo50Weekday, labelSharedUpTo50Special, labelSharedUpTo50Monday},
		{&card.SharedPerCft, labelSharedPerCftWeekday, labelSharedPerCftSpecial, labelSharedPerCftMonday},
		{&card.FTL501to800, labelFTL501to800Weekday, labelFTL501to800Special, labelFTL501to800Monday},
		{&card.FTL801to1200, labelFTL801to1200Weekday, labelFTL801to1200Special, labelFTL801to1200Monday},
		{&card.FTL1201to1600, labelFTL1201to1600Weekday, labelFTL1201to1600Special, labelFTL1201to1600Monday},
		{&card.FTL1601to2000, labelFTL1601to2000Weekday, labelFTL1601to2000Special, labelFTL1601to2000Monday},
	}
	for _, g := range groups {
		rates := pricing.RegimeRates{}
		if rates.Weekday, err = floatField(row, g.weekday); err != nil {
			return pricing.RouteCard{}, err
		}
		if rates.Special, err = floatField(row, g.special); err != nil {
			return pricing.RouteCard{}, err
		}
		if rates.Monday, err = floatField(row, g.monday); err != nil {
			return pricing.RouteCard{}, err
		}
		*g.dst = rates
	}
	return card, nil
}

func parseCharges(m map[string]any) (pricing.ChargeSlabs, error) {
	if len(m) == 0 {
		return pricing.ChargeSlabs{}, fmt.Errorf("charges table missing")
	}
	var slabs pricing.ChargeSlabs
	for _, r := range slabRanges {
		entry, ok := m[r.key].(map[string]any)
		if !ok {
			return pricing.ChargeSlabs{}, fmt.Errorf("charges: missing band %q", r.key)
		}
		rate, ok := toFloat(entry["rate"])
		if !ok {
			return pricing.ChargeSlabs{}, fmt.Errorf("charges: band %q has no rate", r.key)
		}
		delivery, ok := toFloat(entry["delivery"])
		if !ok {
			return pricing.ChargeSlabs{}, fmt.Errorf("charges: band %q has no delivery rate", r.key)
		}
		slabs.Packing = append(slabs.Packing, pricing.Slab{Lo: r.lo, Hi: r.hi, Rate: rate})
		slabs.Delivery = append(slabs.Delivery, pricing.DeliveryBand{Lo: r.lo, Hi: r.hi, Rate: delivery})
	}
	var err error
	if slabs.MinimumUptoCft, err = floatField(m, "minimumUptoCft"); err != nil {
		return pricing.ChargeSlabs{}, err
	}
	if slabs.MinimumPacking, err = floatField(m, "minimumPacking"); err != nil {
		return pricing.ChargeSlabs{}, err
	}
	if err := slabs.Validate(); err != nil {
		return pricing.ChargeSlabs{}, err
	}
	return slabs, nil
}

func stringField(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("missing column %q", key)
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("column %q is not a usable string", key)
	}
	return s, nil
}

func floatField(m map[string]any, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("missing column %q", key)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("column %q is not numeric (%T)", key, v)
	}
	return f, nil
}

// toFloat coerces the value shapes the sheets API emits: numbers arrive as
// float64, but cells sometimes come back as numeric strings.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := json.Number(strings.TrimSpace(t)).Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
