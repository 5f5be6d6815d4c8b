package pricing

import (
	"fmt"
	"sort"
)

// Slab is one volume-indexed packing band with its per-cft rate.
type Slab struct {
	Lo   float64
	Hi   float64
	Rate float64
}

// DeliveryBand is one volume-indexed per-unit delivery rate used for
// extra-distance freight.
type DeliveryBand struct {
	Lo   float64
	Hi   float64
	Rate float64
}

// ChargeSlabs carries the global (route-independent) charge tables: packing
// slabs, the minimum-packing floor, and delivery-rate bands. Both band lists
// are built once at load time, ordered by lower bound.
type ChargeSlabs struct {
	Packing        []Slab
	MinimumUptoCft float64
	MinimumPacking float64
	Delivery       []DeliveryBand
}

// Validate checks the slab tables are usable: non-empty and ordered with no
// overlapping packing bands.
func (cs ChargeSlabs) Validate() error {
	if len(cs.Packing) == 0 {
		return fmt.Errorf("charge slabs: no packing bands")
	}
	if !sort.SliceIsSorted(cs.Packing, func(i, j int) bool { return cs.Packing[i].Lo < cs.Packing[j].Lo }) {
		return fmt.Errorf("charge slabs: packing bands out of order")
	}
	for i := 1; i < len(cs.Packing); i++ {
		if cs.Packing[i].Lo <= cs.Packing[i-1].Hi {
			return fmt.Errorf("charge slabs: packing bands overlap at %v", cs.Packing[i].Lo)
		}
	}
	return nil
}

// PackingCost prices packing for a volume. The matching slab's rate applies;
// volumes above the top band keep the top band's rate (the table is
// open-ended upward). Below the minimum-charge threshold the configured
// floor applies when it exceeds the computed cost.
func (cs ChargeSlabs) PackingCost(volume float64) float64 {
	rate := cs.Packing[len(cs.Packing)-1].Rate
	for _, s := range cs.Packing {
		if volume >= s.Lo && volume <= s.Hi {
			rate = s.Rate
			break
		}
	}
	cost := volume * rate
	if volume < cs.MinimumUptoCft && cost < cs.MinimumPacking {
		cost = cs.MinimumPacking
	}
	return cost
}

// deliveryRate resolves the per-unit delivery rate for a volume. Unlike the
// packing lookup this is permissive: no matching band means no rate.
func (cs ChargeSlabs) deliveryRate(volume float64) (float64, bool) {
	for _, b := range cs.Delivery {
		if volume >= b.Lo && volume <= b.Hi {
			return b.Rate, true
		}
	}
	return 0, false
}
