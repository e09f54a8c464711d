package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// roundTripFunc lets a test answer HTTP requests without a server.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func testSettings(base string) Settings {
	s := DefaultSettings()
	s.BinanceAPI = base
	s.FiatRateURL = base + "/v4/latest/USD"
	return s
}

func TestFetchPrice_Ticker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/api/v3/ticker/price" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("Unexpected symbol: %s", got)
		}
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"67012.34000000"}`))
	}))
	defer srv.Close()

	c := NewPriceClient(srv.Client(), testSettings(srv.URL))
	obs, err := c.FetchPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("FetchPrice failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected exactly 1 request, got %d", calls.Load())
	}
	if obs.Symbol != "BTCUSDT" {
		t.Errorf("Expected symbol BTCUSDT, got %s", obs.Symbol)
	}
	if obs.Text() != "67012.3400" {
		t.Errorf("Expected 67012.3400, got %s", obs.Text())
	}
}

func TestFetchPrice_NumericPrice(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"price": 0.5}`), nil
	})}
	c := NewPriceClient(client, testSettings("http://binance.test"))
	obs, err := c.FetchPrice(context.Background(), "DOGEUSDT")
	if err != nil {
		t.Fatalf("FetchPrice failed: %v", err)
	}
	if obs.Text() != "0.5000" {
		t.Errorf("Expected 0.5000, got %s", obs.Text())
	}
}

func TestFetchPrice_FiatSentinel(t *testing.T) {
	var paths []string
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		paths = append(paths, req.URL.Path)
		return jsonResponse(200, `{"base":"USD","rates":{"USD":1,"KRW":1385.456}}`), nil
	})}
	c := NewPriceClient(client, testSettings("http://binance.test"))

	obs, err := c.FetchPrice(context.Background(), FiatRateSentinel)
	if err != nil {
		t.Fatalf("FetchPrice failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/v4/latest/USD" {
		t.Fatalf("Expected a single fiat rate request, got %v", paths)
	}
	if obs.Text() != "1385.46" {
		t.Errorf("Expected 1385.46, got %s", obs.Text())
	}
}

func TestFetchPrice_Errors(t *testing.T) {
	tests := []struct {
		name   string
		sym    Symbol
		status int
		body   string
		err    error
	}{
		{name: "server error", sym: "BTCUSDT", status: 500, body: `oops`},
		{name: "unknown symbol", sym: "NOPEUSDT", status: 400, body: `{"code":-1121,"msg":"Invalid symbol."}`},
		{name: "missing price", sym: "BTCUSDT", status: 200, body: `{"symbol":"BTCUSDT"}`, err: ErrMissingField},
		{name: "bad price", sym: "BTCUSDT", status: 200, body: `{"price":"abc"}`},
		{name: "not json", sym: "BTCUSDT", status: 200, body: `<html>`},
		{name: "missing rate", sym: FiatRateSentinel, status: 200, body: `{"rates":{"EUR":0.9}}`, err: ErrMissingField},
		{name: "no rates", sym: FiatRateSentinel, status: 200, body: `{}`, err: ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return jsonResponse(tt.status, tt.body), nil
			})}
			c := NewPriceClient(client, testSettings("http://binance.test"))

			_, err := c.FetchPrice(context.Background(), tt.sym)
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("Expected *FetchError, got %v", err)
			}
			if fe.Symbol != tt.sym {
				t.Errorf("Expected symbol %s in error, got %s", tt.sym, fe.Symbol)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("Expected %v in chain, got %v", tt.err, err)
			}
		})
	}
}

func TestFetchPrice_TransportError(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}
	c := NewPriceClient(client, testSettings("http://binance.test"))

	_, err := c.FetchPrice(context.Background(), "ETHUSDT")
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("Expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "[ETHUSDT]") {
		t.Errorf("Expected symbol in message, got %q", err.Error())
	}
}
