package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/unrolled/secure"

	"relocalc/internal/history"
	"relocalc/internal/metrics"
	"relocalc/internal/pricing"
	"relocalc/internal/ratestore"
)

type Server struct {
	store    *ratestore.Store
	engine   *pricing.Engine
	recorder *history.Recorder
	validate *validator.Validate
	metrics  *metrics.Metrics
}

// New builds the HTTP handler on the wall clock.
func New(store *ratestore.Store, recorder *history.Recorder, m *metrics.Metrics) http.Handler {
	return NewWithEngine(store, recorder, m, pricing.NewEngine())
}

// NewWithEngine allows injecting a custom forecast engine (e.g. a fixed clock
// under test).
func NewWithEngine(store *ratestore.Store, recorder *history.Recorder, m *metrics.Metrics, engine *pricing.Engine) http.Handler {
	if engine == nil {
		engine = pricing.NewEngine()
	}
	s := &Server{
		store:    store,
		engine:   engine,
		recorder: recorder,
		validate: validator.New(),
		metrics:  m,
	}

	secureHeaders := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})

	r := chi.NewRouter()
	// Observability: Request ID and basic logger
	r.Use(requestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(secureHeaders.Handler)
	r.Use(httprate.LimitByIP(120, time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	// The /lclv9 aliases keep the legacy frontend paths working.
	for _, prefix := range []string{"", "/lclv9"} {
		r.Post(prefix+"/calculate-rate", s.handleCalculateRate)
		r.Get(prefix+"/locations", s.handleLocations)
	}
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// QuoteRequest is the wire form of a quote request. Field names follow the
// legacy frontend contract.
type QuoteRequest struct {
	CFT                float64     `json:"cft" validate:"gte=0"`
	VehicleType        string      `json:"vehicleType"`
	PickupDistance     float64     `json:"pickupDistance" validate:"gte=0"`
	DropDistance       float64     `json:"dropDistance" validate:"gte=0"`
	DismantleItems     [][]float64 `json:"dismantleItems" validate:"dive,len=2,dive,gte=0"`
	From               string      `json:"from" validate:"required"`
	To                 string      `json:"to" validate:"required"`
	PickupDate         string      `json:"pickupDate" validate:"required"`
	DeclaredGoodsValue float64     `json:"declaredGoodsValue" validate:"gte=0"`
	EmployeeCode       string      `json:"employeeCode"`
	EnquiryNumber      string      `json:"enquiryNumber"`
}

// QuoteResponse is the served six-day series.
type QuoteResponse struct {
	Rates     []pricing.DailyQuote `json:"rates"`
	UpdatedAt string               `json:"updatedAt"`
}

func (s *Server) handleCalculateRate(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.Quote("invalid_request")
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.metrics.Quote("invalid_request")
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	pickup, err := pricing.ParsePickupDate(req.PickupDate)
	if err != nil {
		s.metrics.Quote("invalid_request")
		writeErrorJSON(w, http.StatusBadRequest, "invalid_pickup_date", "pickupDate must be an ISO date")
		return
	}
	if err := s.engine.ValidateHorizon(pickup); err != nil {
		s.metrics.Quote("date_out_of_range")
		writeErrorJSON(w, http.StatusBadRequest, "date_out_of_range", "pickup date cannot be more than 2 years in the future")
		return
	}

	snap := s.store.Current()
	if snap == nil {
		s.metrics.Quote("rates_unloaded")
		writeErrorJSON(w, http.StatusServiceUnavailable, "rates_unavailable", "rate table not loaded yet")
		return
	}
	card, err := snap.CardFor(req.From, req.To, pickup)
	if err != nil {
		s.metrics.Quote("route_not_found")
		writeErrorJSON(w, http.StatusBadRequest, "route_not_found",
			fmt.Sprintf("no route found from %s to %s", req.From, req.To))
		return
	}

	series, err := s.engine.Forecast(req.toDomain(pickup), card, snap.Slabs())
	if err != nil {
		if errors.Is(err, pricing.ErrRateUnavailable) {
			// A tier the table does not price is a data gap, not a caller error.
			s.metrics.Quote("rate_gap")
			writeErrorJSON(w, http.StatusInternalServerError, "rate_table_gap", err.Error())
			return
		}
		s.metrics.Quote("error")
		writeErrorJSON(w, http.StatusInternalServerError, "internal_error", "failed to compute quote")
		return
	}

	resp := QuoteResponse{
		Rates:     series,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.recorder.Record(r.Context(), req, resp); err != nil {
		log.Println("quote history insert failed:", err)
	}
	s.metrics.Quote("ok")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (req QuoteRequest) toDomain(pickup time.Time) pricing.QuoteRequest {
	items := make([]pricing.DismantleItem, 0, len(req.DismantleItems))
	for _, pair := range req.DismantleItems {
		if len(pair) == 2 {
			items = append(items, pricing.DismantleItem{Rate: pair[0], Count: pair[1]})
		}
	}
	return pricing.QuoteRequest{
		Volume:         req.CFT,
		Vehicle:        pricing.VehicleClassOf(req.VehicleType),
		PickupDistance: req.PickupDistance,
		DropDistance:   req.DropDistance,
		DismantleItems: items,
		From:           strings.TrimSpace(req.From),
		To:             strings.TrimSpace(req.To),
		PickupDate:     pickup,
		DeclaredValue:  req.DeclaredGoodsValue,
	}
}

type locationSet struct {
	From []string `json:"from"`
	To   []string `json:"to"`
}

type locationsResponse struct {
	Status  string      `json:"status"`
	Weekend locationSet `json:"weekend"`
	Weekday locationSet `json:"weekday"`
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Current()
	if snap == nil {
		writeErrorJSON(w, http.StatusServiceUnavailable, "rates_unavailable", "rate table not loaded yet")
		return
	}
	weekendFrom, weekendTo := snap.Locations(true)
	weekdayFrom, weekdayTo := snap.Locations(false)
	resp := locationsResponse{
		Status:  "success",
		Weekend: locationSet{From: weekendFrom, To: weekendTo},
		Weekday: locationSet{From: weekdayFrom, To: weekdayTo},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if rid == "" {
			rid = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r)
	})
}
