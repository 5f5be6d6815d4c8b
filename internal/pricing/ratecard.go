package pricing

// VehicleClass selects the freight tier structure for a request.
type VehicleClass int

const (
	ClassShared VehicleClass = iota
	ClassFullLoad
)

// fullLoadLabel is the only wire value that selects the full-load tiers;
// anything else books a shared vehicle.
const fullLoadLabel = "Full Truck Load"

// VehicleClassOf maps the wire vehicle-type string to a class.
func VehicleClassOf(s string) VehicleClass {
	if s == fullLoadLabel {
		return ClassFullLoad
	}
	return ClassShared
}

func (c VehicleClass) String() string {
	if c == ClassFullLoad {
		return fullLoadLabel
	}
	return "Shared Vehicle"
}

// RegimeRates holds the three day-regime variants of one volume tier.
type RegimeRates struct {
	Weekday float64
	Special float64 // weekend or month-end
	Monday  float64
}

// For returns the rate variant for a regime.
func (r RegimeRates) For(reg Regime) float64 {
	switch reg {
	case RegimeMonday:
		return r.Monday
	case RegimeSpecial:
		return r.Special
	default:
		return r.Weekday
	}
}

// RouteCard is the strongly typed rate card for one origin/destination pair.
// The six tier groups are parsed once from the upstream sheet's legacy string
// labels; a card is only published if every cell is present.
type RouteCard struct {
	From string
	To   string

	// Shared-vehicle tiers. SharedUpTo50 is a flat charge, SharedPerCft is a
	// per-cft rate for 51-500 cft. The weekday up-to-50 rate doubles as the
	// full-load up-to-50 rate on non-Mondays.
	SharedUpTo50 RegimeRates
	SharedPerCft RegimeRates

	// Full-load tiers. There is no dedicated full-load rate below 51 cft;
	// see FreightCost for how that band resolves.
	FTL501to800   RegimeRates
	FTL801to1200  RegimeRates
	FTL1201to1600 RegimeRates
	FTL1601to2000 RegimeRates
}
