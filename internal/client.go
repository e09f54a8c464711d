package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

var ErrMissingField = errors.New("missing field")

// FetchError is returned for any failed price lookup.
type FetchError struct {
	Symbol Symbol
	Cause  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("price fetch failed [%s]: %v", e.Symbol, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

type tickerResponse struct {
	Symbol string      `json:"symbol"`
	Price  json.Number `json:"price"`
}

type fiatRateResponse struct {
	Rates map[string]json.Number `json:"rates"`
}

// PriceClient issues one GET per lookup against either the Binance ticker or
// the fiat rate endpoint.
type PriceClient struct {
	httpClient  *http.Client
	binanceURL  string
	fiatRateURL string
	now         func() time.Time
}

func NewPriceClient(httpClient *http.Client, s Settings) *PriceClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &PriceClient{
		httpClient:  httpClient,
		binanceURL:  s.BinanceAPI,
		fiatRateURL: s.FiatRateURL,
		now:         time.Now,
	}
}

// FetchPrice returns the latest price for sym.
func (c *PriceClient) FetchPrice(ctx context.Context, sym Symbol) (PriceObservation, error) {
	var (
		price     decimal.Decimal
		precision int32
		err       error
	)
	if sym == FiatRateSentinel {
		price, err = c.fiatRate(ctx)
		precision = FiatPrecision
	} else {
		price, err = c.tickerPrice(ctx, sym)
		precision = TickerPrecision
	}
	if err != nil {
		return PriceObservation{}, &FetchError{Symbol: sym, Cause: err}
	}
	return PriceObservation{Symbol: sym, Price: price, Precision: precision, At: c.now()}, nil
}

func (c *PriceClient) tickerPrice(ctx context.Context, sym Symbol) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", c.binanceURL, url.QueryEscape(sym))

	var resp tickerResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return decimal.Zero, err
	}
	if resp.Price == "" {
		return decimal.Zero, fmt.Errorf("price: %w", ErrMissingField)
	}
	price, err := decimal.NewFromString(resp.Price.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price format %q: %w", resp.Price, err)
	}
	return price, nil
}

func (c *PriceClient) fiatRate(ctx context.Context) (decimal.Decimal, error) {
	var resp fiatRateResponse
	if err := c.getJSON(ctx, c.fiatRateURL, &resp); err != nil {
		return decimal.Zero, err
	}
	raw, ok := resp.Rates[FiatCurrency]
	if !ok || raw == "" {
		return decimal.Zero, fmt.Errorf("rates.%s: %w", FiatCurrency, ErrMissingField)
	}
	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate format %q: %w", raw, err)
	}
	return rate, nil
}

func (c *PriceClient) getJSON(ctx context.Context, u string, out any) error {
	return getJSON(ctx, c.httpClient, u, out)
}

func getJSON(ctx context.Context, client *http.Client, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("body read error: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("API error: %s - %s", resp.Status, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("JSON parse error: %w, Received Data: %s", err, truncate(string(body), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
