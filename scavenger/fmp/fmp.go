// Package fmp fetches earnings rows, company market caps and macroeconomic
// events from the Financial Modeling Prep "stable" API.
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samgozman/fin-board/utils"
)

const DefaultBaseURL = "https://financialmodelingprep.com/stable"

// Client is the FMP API client.
type Client struct {
	APIKey        string
	BaseURL       string
	MacroKeywords []string // high-signal macro filter, empty keeps every event
	client        *http.Client
}

func NewClient(apiKey string, macroKeywords []string) *Client {
	return &Client{
		APIKey:        apiKey,
		BaseURL:       DefaultBaseURL,
		MacroKeywords: macroKeywords,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Earning is one normalized earnings calendar row.
type Earning struct {
	Symbol string    // ticker symbol
	Date   time.Time // announcement date (midnight UTC)
	Time   string    // bmo/amc tag if the endpoint provided one
	Name   string    // company name if the endpoint provided one
}

// Earnings is the slice of earnings calendar rows.
type Earnings []*Earning

// Symbols returns the distinct ticker symbols of the rows, in order of appearance.
func (e Earnings) Symbols() []string {
	seen := make(map[string]bool, len(e))
	var out []string
	for _, row := range e {
		if !seen[row.Symbol] {
			seen[row.Symbol] = true
			out = append(out, row.Symbol)
		}
	}
	return out
}

// MacroEvent is one normalized economic calendar entry.
type MacroEvent struct {
	Date  time.Time // release date (midnight UTC)
	Clock string    // "HH:MM" if the timestamp carried a clock time
	Label string    // event title
}

// MacroEvents is the slice of economic calendar entries.
type MacroEvents []*MacroEvent

// Earnings fetches the earnings calendar for the given date range.
func (c *Client) Earnings(ctx context.Context, from, to time.Time) (Earnings, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("from", from.Format(time.DateOnly))
	params.Set("to", to.Format(time.DateOnly))
	params.Set("apikey", c.APIKey)

	var rows []earningsRow
	if err := c.getJSON(ctx, "earnings-calendar", params, &rows); err != nil {
		return nil, fmt.Errorf("error fetching earnings calendar: %w", err)
	}

	var out Earnings
	for _, row := range rows {
		e, ok := parseEarningsRow(&row)
		if !ok {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// MarketCaps fetches market capitalization for each symbol via the profile
// endpoint. Symbols that fail to resolve are skipped, not fatal: the result
// is a join table and the aggregator drops unknown caps anyway.
func (c *Client) MarketCaps(ctx context.Context, symbols []string) (map[string]int64, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	caps := make(map[string]int64, len(symbols))
	for _, sym := range symbols {
		params := url.Values{}
		params.Set("symbol", sym)
		params.Set("apikey", c.APIKey)

		var rows []profileRow
		if err := c.getJSON(ctx, "profile", params, &rows); err != nil {
			continue
		}
		if len(rows) == 0 {
			continue
		}

		if mcap, ok := parseProfileCap(&rows[0]); ok {
			caps[sym] = mcap
		}
	}
	return caps, nil
}

// EconomicEvents fetches the economic calendar for the given date range,
// keeping only US events that match the client's macro keywords.
func (c *Client) EconomicEvents(ctx context.Context, from, to time.Time) (MacroEvents, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("from", from.Format(time.DateOnly))
	params.Set("to", to.Format(time.DateOnly))
	params.Set("apikey", c.APIKey)

	var rows []economicRow
	if err := c.getJSON(ctx, "economic-calendar", params, &rows); err != nil {
		return nil, fmt.Errorf("error fetching economic calendar: %w", err)
	}

	var out MacroEvents
	for _, row := range rows {
		ev, ok := parseEconomicRow(&row, c.MacroKeywords)
		if !ok {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() || from.After(to) {
		return fmt.Errorf("%w: from %v, to %v", ErrInvalidDateRange, from, to)
	}
	if to.Sub(from) > 14*24*time.Hour {
		return fmt.Errorf("%w (more than 14 days): from %v, to %v", ErrInvalidDateRange, from, to)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, v any) error {
	u := fmt.Sprintf("%s/%s?%s", c.BaseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("error creating request for %s: %w", endpoint, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	res, err := c.client.Do(req) //nolint:bodyclose
	if err != nil {
		return fmt.Errorf("error requesting %s: %w", endpoint, err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(res.Body)

	if res.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 300))
		return fmt.Errorf("%s returned status %d: %s", endpoint, res.StatusCode, string(snippet))
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("error decoding %s response: %w", endpoint, err)
	}
	return nil
}

// earningsRow is the raw earnings calendar object.
type earningsRow struct {
	Symbol string `json:"symbol"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Name   string `json:"company"`
}

func parseEarningsRow(row *earningsRow) (*Earning, bool) {
	if row.Symbol == "" || len(row.Date) < 10 {
		return nil, false
	}
	d, err := utils.ParseDate(row.Date[:10])
	if err != nil {
		return nil, false
	}
	return &Earning{
		Symbol: row.Symbol,
		Date:   d,
		Time:   row.Time,
		Name:   row.Name,
	}, true
}

// profileRow is the raw company profile object. The market cap key has
// changed names across API revisions, so all known spellings are kept and
// coerced in one place.
type profileRow struct {
	Symbol       string `json:"symbol"`
	MktCap       any    `json:"mktCap"`
	MarketCap    any    `json:"marketCap"`
	MarketCapAlt any    `json:"market_cap"`
}

func parseProfileCap(row *profileRow) (int64, bool) {
	for _, raw := range []any{row.MktCap, row.MarketCap, row.MarketCapAlt} {
		if mcap, ok := utils.ParseMarketCap(raw); ok {
			return mcap, true
		}
	}
	return 0, false
}

// economicRow is the raw economic calendar object with every known key
// variant for the title and timestamp fields.
type economicRow struct {
	Country       string `json:"country"`
	Event         string `json:"event"`
	Name          string `json:"name"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	Date          string `json:"date"`
	Datetime      string `json:"datetime"`
	PublishedDate string `json:"publishedDate"`
}

func parseEconomicRow(row *economicRow, keywords []string) (*MacroEvent, bool) {
	dt := firstNonEmpty(row.Date, row.Datetime, row.PublishedDate)
	if len(dt) < 10 {
		return nil, false
	}

	// Only US macro matters for this board
	country := strings.ToLower(strings.TrimSpace(row.Country))
	if country != "" && country != "united states" && country != "us" && country != "usa" {
		return nil, false
	}

	event := strings.TrimSpace(firstNonEmpty(row.Event, row.Name, row.Title))
	category := strings.TrimSpace(row.Category)

	text := event
	if category != "" && !strings.Contains(event, category) {
		text = fmt.Sprintf("%s (%s)", event, category)
	}
	if !matchesAnyKeyword(text, keywords) {
		return nil, false
	}

	label := firstNonEmpty(event, category, "Macro event")

	date, err := utils.ParseDate(dt[:10])
	if err != nil {
		return nil, false
	}

	// "HH:MM" when the timestamp carries a clock component
	clock := ""
	if len(dt) >= 16 && (dt[10] == 'T' || dt[10] == ' ') {
		clock = dt[11:16]
	}

	return &MacroEvent{
		Date:  date,
		Clock: clock,
		Label: label,
	}, true
}

func matchesAnyKeyword(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
