package pricing

import (
	"math"
	"time"
)

// Named multipliers kept as package variables rather than inlined literals:
// the surcharge is currently switched off and the declared-value percentage
// is subject to commercial revision.
var (
	DeclaredValueMultiplier = 0.03
	SurchargeMultiplier     = 0.0
)

// QuoteRequest is the validated, immutable input to the engine.
type QuoteRequest struct {
	Volume         float64
	Vehicle        VehicleClass
	PickupDistance float64
	DropDistance   float64
	DismantleItems []DismantleItem
	From           string
	To             string
	PickupDate     time.Time
	DeclaredValue  float64
}

// DailyQuote is one day's priced quote. Component figures are rounded for
// display; the total is rounded from the unrounded components, so it can
// differ by a unit from the sum of the displayed parts.
type DailyQuote struct {
	PickupDate       string  `json:"pickupDate"`
	PackingCost      float64 `json:"packingCost"`
	FreightCost      float64 `json:"freightCost"`
	ExtraFreightCost float64 `json:"extraFreightCost"`
	DismantleCost    float64 `json:"dismantleCost"`
	DeclaredValueFee float64 `json:"dgv"`
	Surcharge        float64 `json:"surcharge"`
	Total            float64 `json:"total"`
	DayType          string  `json:"dayType"`
	IsPickup         bool    `json:"isPickup,omitempty"`
}

// Compose prices one calendar day for a request against a route card and the
// global charge slabs.
func Compose(req QuoteRequest, card RouteCard, slabs ChargeSlabs, day time.Time) (DailyQuote, error) {
	packing := slabs.PackingCost(req.Volume)
	freight, err := FreightCost(card, req.Vehicle, req.Volume, day)
	if err != nil {
		return DailyQuote{}, err
	}
	extra := ExtraFreightCost(slabs, req.Volume, req.PickupDistance, req.DropDistance)
	dismantle := DismantleCost(req.DismantleItems)
	declared := req.DeclaredValue * DeclaredValueMultiplier

	total := packing + freight + extra + declared + dismantle
	surcharge := math.Round(total * SurchargeMultiplier)

	return DailyQuote{
		PickupDate:       FormatDate(day),
		PackingCost:      math.Round(packing),
		FreightCost:      math.Round(freight),
		ExtraFreightCost: math.Round(extra),
		DismantleCost:    dismantle,
		DeclaredValueFee: declared,
		Surcharge:        surcharge,
		Total:            math.Round(total + surcharge),
		DayType:          DayType(day),
	}, nil
}
