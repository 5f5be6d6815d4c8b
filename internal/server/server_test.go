package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"relocalc/internal/pricing"
	"relocalc/internal/ratestore"
)

// helper to parse standardized error
type stdError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testCard(flatWeekday float64) pricing.RouteCard {
	return pricing.RouteCard{
		From:          "Delhi",
		To:            "Mumbai",
		SharedUpTo50:  pricing.RegimeRates{Weekday: flatWeekday, Special: flatWeekday + 600, Monday: flatWeekday - 400},
		SharedPerCft:  pricing.RegimeRates{Weekday: 80, Special: 92, Monday: 72},
		FTL501to800:   pricing.RegimeRates{Weekday: 52000, Special: 58000, Monday: 47000},
		FTL801to1200:  pricing.RegimeRates{Weekday: 68000, Special: 75000, Monday: 61000},
		FTL1201to1600: pricing.RegimeRates{Weekday: 76000, Special: 84000, Monday: 69000},
		FTL1601to2000: pricing.RegimeRates{Weekday: 84000, Special: 92000, Monday: 76000},
	}
}

func testSlabs() pricing.ChargeSlabs {
	return pricing.ChargeSlabs{
		Packing: []pricing.Slab{
			{Lo: 0, Hi: 50, Rate: 30}, {Lo: 51, Hi: 100, Rate: 28}, {Lo: 101, Hi: 200, Rate: 26},
			{Lo: 201, Hi: 350, Rate: 24}, {Lo: 351, Hi: 600, Rate: 22}, {Lo: 601, Hi: 2000, Rate: 20},
		},
		MinimumUptoCft: 20,
		MinimumPacking: 1500,
		Delivery: []pricing.DeliveryBand{
			{Lo: 0, Hi: 50, Rate: 15}, {Lo: 51, Hi: 100, Rate: 14}, {Lo: 101, Hi: 200, Rate: 13},
			{Lo: 201, Hi: 350, Rate: 12}, {Lo: 351, Hi: 600, Rate: 11}, {Lo: 601, Hi: 2000, Rate: 10},
		},
	}
}

// testHandler serves a loaded store on a clock fixed to Monday 2026-09-07.
func testHandler(t *testing.T) http.Handler {
	t.Helper()
	snap, err := ratestore.NewSnapshot(
		[]pricing.RouteCard{testCard(4000)},
		[]pricing.RouteCard{testCard(4500)},
		testSlabs(),
		time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	store := ratestore.NewStore()
	store.Publish(snap)
	now := time.Date(2026, time.September, 7, 6, 0, 0, 0, time.UTC)
	engine := pricing.NewEngineAt(func() time.Time { return now })
	return NewWithEngine(store, nil, nil, engine)
}

func postQuote(t *testing.T, h http.Handler, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/calculate-rate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func quotePayload() map[string]any {
	return map[string]any{
		"cft":                45,
		"vehicleType":        "Shared Vehicle",
		"pickupDistance":     10,
		"dropDistance":       10,
		"dismantleItems":     [][]float64{},
		"from":               "Delhi",
		"to":                 "Mumbai",
		"pickupDate":         "2026-09-09",
		"declaredGoodsValue": 0,
	}
}

func TestHealthz(t *testing.T) {
	h := New(ratestore.NewStore(), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); body != "ok" {
		t.Fatalf("expected body 'ok', got %q", body)
	}
}

func TestRequestIDHeaderPresent(t *testing.T) {
	h := New(ratestore.NewStore(), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rid := rr.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

func TestCalculateRateSharedWeekday(t *testing.T) {
	h := testHandler(t)
	rr := postQuote(t, h, quotePayload())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
	}
	var res QuoteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(res.Rates) != 6 {
		t.Fatalf("expected 6 rates, got %d", len(res.Rates))
	}
	if res.UpdatedAt == "" {
		t.Fatalf("expected updatedAt to be set")
	}
	// Pickup is within the coming six days, so the series anchors on it.
	first := res.Rates[0]
	if first.PickupDate != "09/09/26" || !first.IsPickup {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	// 45 cft * 30 packing + flat weekday freight, nothing else.
	if first.PackingCost != 1350 || first.FreightCost != 4000 {
		t.Fatalf("unexpected components: %+v", first)
	}
	if first.ExtraFreightCost != 0 || first.DismantleCost != 0 || first.Total != 5350 {
		t.Fatalf("unexpected totals: %+v", first)
	}
	for _, q := range res.Rates[1:] {
		if q.IsPickup {
			t.Fatalf("expected a single pickup marker, also got %+v", q)
		}
	}
}

func TestCalculateRateFullLoadMonday(t *testing.T) {
	h := testHandler(t)
	payload := quotePayload()
	payload["cft"] = 900
	payload["vehicleType"] = "Full Truck Load"
	payload["pickupDate"] = "2026-09-07" // a Monday
	rr := postQuote(t, h, payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
	}
	var res QuoteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	first := res.Rates[0]
	if first.PickupDate != "07/09/26" || !first.IsPickup {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	// Monday rate of the 801-1200 tier, regardless of anything else that day.
	if first.FreightCost != 61000 {
		t.Fatalf("expected Monday tier freight 61000, got %v", first.FreightCost)
	}
	if first.DayType != "Weekday (Mon)" {
		t.Fatalf("unexpected day type %q", first.DayType)
	}
}

func TestCalculateRateDismantleAndDeclaredValue(t *testing.T) {
	h := testHandler(t)
	payload := quotePayload()
	payload["dismantleItems"] = [][]float64{{250, 2}, {400, 1}}
	payload["declaredGoodsValue"] = 100000
	rr := postQuote(t, h, payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
	}
	var res QuoteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	first := res.Rates[0]
	if first.DismantleCost != 900 {
		t.Fatalf("expected dismantle 900, got %v", first.DismantleCost)
	}
	if first.DeclaredValueFee != 3000 {
		t.Fatalf("expected declared value fee 3000, got %v", first.DeclaredValueFee)
	}
	if first.Total != 1350+4000+900+3000 {
		t.Fatalf("unexpected total %v", first.Total)
	}
}

func TestCalculateRateRouteNotFound(t *testing.T) {
	h := testHandler(t)
	payload := quotePayload()
	payload["to"] = "Chennai"
	rr := postQuote(t, h, payload)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d; body=%s", rr.Code, rr.Body.String())
	}
	var e stdError
	if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if e.Error.Code != "route_not_found" {
		t.Fatalf("unexpected error code: %s", e.Error.Code)
	}
}

func TestCalculateRateInvalidJSON(t *testing.T) {
	h := testHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/calculate-rate", bytes.NewReader([]byte("{")))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var e stdError
	if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if e.Error.Code != "invalid_json" {
		t.Fatalf("unexpected error code: %s", e.Error.Code)
	}
}

func TestCalculateRateValidation(t *testing.T) {
	h := testHandler(t)

	payload := quotePayload()
	payload["from"] = ""
	rr := postQuote(t, h, payload)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing from: expected 400, got %d", rr.Code)
	}

	payload = quotePayload()
	payload["pickupDistance"] = -5
	rr = postQuote(t, h, payload)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("negative distance: expected 400, got %d", rr.Code)
	}

	payload = quotePayload()
	payload["dismantleItems"] = [][]float64{{250}}
	rr = postQuote(t, h, payload)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed dismantle pair: expected 400, got %d", rr.Code)
	}
}

func TestCalculateRateInvalidPickupDate(t *testing.T) {
	h := testHandler(t)
	payload := quotePayload()
	payload["pickupDate"] = "09/09/2026"
	rr := postQuote(t, h, payload)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var e stdError
	_ = json.Unmarshal(rr.Body.Bytes(), &e)
	if e.Error.Code != "invalid_pickup_date" {
		t.Fatalf("unexpected error code: %s", e.Error.Code)
	}
}

func TestCalculateRateDateTooFar(t *testing.T) {
	h := testHandler(t)
	payload := quotePayload()
	payload["pickupDate"] = "2029-01-01"
	rr := postQuote(t, h, payload)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var e stdError
	_ = json.Unmarshal(rr.Body.Bytes(), &e)
	if e.Error.Code != "date_out_of_range" {
		t.Fatalf("unexpected error code: %s", e.Error.Code)
	}
}

func TestCalculateRateAboveTopTierIsServerError(t *testing.T) {
	h := testHandler(t)
	payload := quotePayload()
	payload["cft"] = 2100
	payload["vehicleType"] = "Full Truck Load"
	rr := postQuote(t, h, payload)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d; body=%s", rr.Code, rr.Body.String())
	}
	var e stdError
	_ = json.Unmarshal(rr.Body.Bytes(), &e)
	if e.Error.Code != "rate_table_gap" {
		t.Fatalf("unexpected error code: %s", e.Error.Code)
	}
}

func TestCalculateRateBeforeFirstRefresh(t *testing.T) {
	h := New(ratestore.NewStore(), nil, nil)
	rr := postQuote(t, h, quotePayload())
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var e stdError
	_ = json.Unmarshal(rr.Body.Bytes(), &e)
	if e.Error.Code != "rates_unavailable" {
		t.Fatalf("unexpected error code: %s", e.Error.Code)
	}
}

func TestLegacyPathAlias(t *testing.T) {
	h := testHandler(t)
	body, _ := json.Marshal(quotePayload())
	req := httptest.NewRequest(http.MethodPost, "/lclv9/calculate-rate", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
	}
}

func TestLocations(t *testing.T) {
	h := testHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/locations", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var res locationsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if res.Status != "success" {
		t.Fatalf("unexpected status %q", res.Status)
	}
	if len(res.Weekday.From) != 1 || res.Weekday.From[0] != "Delhi" {
		t.Fatalf("unexpected weekday origins: %+v", res.Weekday.From)
	}
	if len(res.Weekend.To) != 1 || res.Weekend.To[0] != "Mumbai" {
		t.Fatalf("unexpected weekend destinations: %+v", res.Weekend.To)
	}
}
