package pricing

import "time"

// ForecastDays is the fixed length of every quote series.
const ForecastDays = 6

// MaxPickupHorizon caps how far ahead a pickup date may lie.
const MaxPickupHorizon = 730 * 24 * time.Hour

// Engine expands a request into a multi-day quote series. The clock is
// injectable so a series is fully determined by its inputs under test.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an engine on the wall clock.
func NewEngine() *Engine { return &Engine{now: time.Now} }

// NewEngineAt returns an engine on a fixed clock.
func NewEngineAt(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Forecast prices six consecutive days for the request. The window anchors at
// the pickup date when its formatted value falls inside the next six days
// from now, otherwise two days before the pickup date, so the requested date
// always sits inside the series. Exactly the entry whose formatted date
// matches the pickup date carries the IsPickup marker.
func (e *Engine) Forecast(req QuoteRequest, card RouteCard, slabs ChargeSlabs) ([]DailyQuote, error) {
	pickupLabel := FormatDate(req.PickupDate)

	start := req.PickupDate.AddDate(0, 0, -2)
	now := e.now().UTC()
	for i := 0; i < ForecastDays; i++ {
		if FormatDate(now.AddDate(0, 0, i)) == pickupLabel {
			start = req.PickupDate
			break
		}
	}

	series := make([]DailyQuote, 0, ForecastDays)
	for i := 0; i < ForecastDays; i++ {
		day := start.AddDate(0, 0, i)
		q, err := Compose(req, card, slabs, day)
		if err != nil {
			return nil, err
		}
		if q.PickupDate == pickupLabel {
			q.IsPickup = true
		}
		series = append(series, q)
	}
	return series, nil
}

// ValidateHorizon rejects pickup dates further out than the forecast horizon.
func (e *Engine) ValidateHorizon(pickup time.Time) error {
	if pickup.After(e.now().UTC().Add(MaxPickupHorizon)) {
		return ErrDateTooFar
	}
	return nil
}
