package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"BTSTRadar/internal/model"
)

// HTTPProvider implements BarProvider against a REST history API.
type HTTPProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPProvider creates a provider with optional proxy support.
func NewHTTPProvider(baseURL, apiKey, proxyURL string) *HTTPProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (p *HTTPProvider) Name() string { return "http" }

// apiBar is the expected JSON shape from the history API.
type apiBar struct {
	Timestamp   int64   `json:"timestamp"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      int64   `json:"volume"`
	Trades      int     `json:"trades"`
	ValueTraded int64   `json:"value_traded"`
}

func (p *HTTPProvider) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.Bar, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&from=%s&to=%s",
		p.BaseURL, url.QueryEscape(symbol), from.Format("2006-01-02"), to.Format("2006-01-02"))
	return p.fetchBars(ctx, symbol, endpoint)
}

func (p *HTTPProvider) IntradayBars(ctx context.Context, symbol string, from, to time.Time) ([]model.Bar, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/intraday?symbol=%s&from=%d&to=%d",
		p.BaseURL, url.QueryEscape(symbol), from.Unix(), to.Unix())
	bars, err := p.fetchBars(ctx, symbol, endpoint)
	if err != nil {
		return nil, err
	}
	// The API treats both bounds as inclusive; trim to [from, to).
	out := bars[:0]
	for _, b := range bars {
		if !b.Timestamp.Before(from) && b.Timestamp.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (p *HTTPProvider) fetchBars(ctx context.Context, symbol, endpoint string) ([]model.Bar, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if p.APIKey != "" {
		req.Header.Set("X-API-Key", p.APIKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("history API status %d: %s", resp.StatusCode, string(body))
	}

	var raw []apiBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}

	bars := make([]model.Bar, 0, len(raw))
	for _, rb := range raw {
		bars = append(bars, model.Bar{
			Symbol:      symbol,
			Timestamp:   time.Unix(rb.Timestamp, 0),
			Open:        decimal.NewFromFloat(rb.Open).Round(2),
			High:        decimal.NewFromFloat(rb.High).Round(2),
			Low:         decimal.NewFromFloat(rb.Low).Round(2),
			Close:       decimal.NewFromFloat(rb.Close).Round(2),
			Volume:      rb.Volume,
			Trades:      rb.Trades,
			ValueTraded: rb.ValueTraded,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}
