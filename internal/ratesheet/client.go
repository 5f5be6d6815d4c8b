// Package ratesheet talks to the spreadsheet-backed rate API and converts its
// loosely typed rows into the strongly typed tables the engine consumes. The
// legacy column labels are mapped exactly once here; a row missing any cell
// fails the whole fetch rather than failing a quote later.
package ratesheet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"relocalc/internal/pricing"
	"relocalc/internal/ratestore"
)

// Client fetches the weekday and weekend rate sheets.
type Client struct {
	weekdayURL string
	weekendURL string
	http       *http.Client
}

func NewClient(weekdayURL, weekendURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{weekdayURL: weekdayURL, weekendURL: weekendURL, http: httpClient}
}

// envelope is one sheet response: route rows plus the global charge table.
type envelope struct {
	Data    []map[string]any `json:"data"`
	Charges map[string]any   `json:"charges"`
}

// payload is the combined raw form that gets cached between restarts.
type payload struct {
	Weekday   envelope  `json:"weekday"`
	Weekend   envelope  `json:"weekend"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Fetch retrieves both sheets concurrently and builds a snapshot. The raw
// combined payload is returned alongside for caching.
func (c *Client) Fetch(ctx context.Context) (*ratestore.Snapshot, []byte, error) {
	type result struct {
		env envelope
		err error
	}
	chWeekday := make(chan result, 1)
	chWeekend := make(chan result, 1)
	go func() {
		env, err := c.get(ctx, c.weekdayURL)
		chWeekday <- result{env: env, err: err}
	}()
	go func() {
		env, err := c.get(ctx, c.weekendURL)
		chWeekend <- result{env: env, err: err}
	}()

	wd := <-chWeekday
	if wd.err != nil {
		return nil, nil, fmt.Errorf("weekday sheet: %w", wd.err)
	}
	we := <-chWeekend
	if we.err != nil {
		return nil, nil, fmt.Errorf("weekend sheet: %w", we.err)
	}

	p := payload{Weekday: wd.env, Weekend: we.env, FetchedAt: time.Now().UTC()}
	snap, err := buildSnapshot(p)
	if err != nil {
		return nil, nil, err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}
	return snap, raw, nil
}

// Decode rebuilds a snapshot from a cached raw payload.
func (c *Client) Decode(raw []byte) (*ratestore.Snapshot, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("cached payload: %w", err)
	}
	return buildSnapshot(p)
}

func (c *Client) get(ctx context.Context, url string) (envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return envelope{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return envelope{}, fmt.Errorf("rate source returned %d: %s", resp.StatusCode, string(b))
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, err
	}
	return env, nil
}

func buildSnapshot(p payload) (*ratestore.Snapshot, error) {
	weekday, err := parseRows(p.Weekday.Data)
	if err != nil {
		return nil, fmt.Errorf("weekday sheet: %w", err)
	}
	weekend, err := parseRows(p.Weekend.Data)
	if err != nil {
		return nil, fmt.Errorf("weekend sheet: %w", err)
	}
	// Both sheets publish the same charge table; the weekend copy wins.
	slabs, err := parseCharges(p.Weekend.Charges)
	if err != nil {
		return nil, err
	}
	fetchedAt := p.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	return ratestore.NewSnapshot(weekday, weekend, slabs, fetchedAt)
}

func parseRows(rows []map[string]any) ([]pricing.RouteCard, error) {
	cards := make([]pricing.RouteCard, 0, len(rows))
	for i, row := range rows {
		card, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}
