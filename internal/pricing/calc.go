package pricing

import (
	"fmt"
	"time"
)

// DismantleItem is one furniture line item: a unit rate and a piece count.
type DismantleItem struct {
	Rate  float64
	Count float64
}

// localDeliveryRadius is the distance (km) under which pickup or drop
// delivery is considered local and attracts no extra freight.
const localDeliveryRadius = 30

// FreightCost resolves the base freight for one day from the route card.
// Tier boundaries and the two long-standing billing quirks follow the
// published rate sheet:
//   - full-load at or below 50 cft on a Monday bills the 501-800 Monday rate;
//   - shared above 500 cft always bills the weekend/month-end per-cft rate,
//     whatever the day.
//
// Do not "fix" either without a confirmed sheet change.
func FreightCost(card RouteCard, class VehicleClass, volume float64, day time.Time) (float64, error) {
	reg := RegimeFor(day)

	if class == ClassFullLoad {
		switch {
		case volume <= 50:
			if reg == RegimeMonday {
				return card.FTL501to800.Monday, nil
			}
			return card.SharedUpTo50.Weekday, nil
		case volume <= 800:
			return card.FTL501to800.For(reg), nil
		case volume <= 1200:
			return card.FTL801to1200.For(reg), nil
		case volume <= 1600:
			return card.FTL1201to1600.For(reg), nil
		case volume <= 2000:
			return card.FTL1601to2000.For(reg), nil
		default:
			return 0, fmt.Errorf("%w: %.0f cft exceeds full-load tiers", ErrRateUnavailable, volume)
		}
	}

	switch {
	case volume <= 50:
		return card.SharedUpTo50.For(reg), nil
	case volume <= 500:
		return card.SharedPerCft.For(reg) * volume, nil
	default:
		return card.SharedPerCft.Special * volume, nil
	}
}

// ExtraFreightCost prices out-of-radius pickup and drop delivery. Distances
// inside the local radius bill as zero; if neither leg exceeds it there is no
// extra freight at all. A volume with no delivery band also bills zero.
func ExtraFreightCost(slabs ChargeSlabs, volume, pickupDistance, dropDistance float64) float64 {
	if pickupDistance <= localDeliveryRadius && dropDistance <= localDeliveryRadius {
		return 0
	}
	if pickupDistance <= localDeliveryRadius {
		pickupDistance = 0
	}
	if dropDistance <= localDeliveryRadius {
		dropDistance = 0
	}
	rate, ok := slabs.deliveryRate(volume)
	if !ok {
		return 0
	}
	return (pickupDistance + dropDistance) * rate
}

// DismantleCost totals the dismantling line items.
func DismantleCost(items []DismantleItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Rate * it.Count
	}
	return sum
}
