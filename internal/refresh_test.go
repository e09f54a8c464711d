package internal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// scriptedFetcher returns queued prices per symbol and records call order.
type scriptedFetcher struct {
	prices map[Symbol][]string
	fail   map[Symbol]bool
	calls  []Symbol
	before func(sym Symbol)
}

func (f *scriptedFetcher) FetchPrice(_ context.Context, sym Symbol) (PriceObservation, error) {
	f.calls = append(f.calls, sym)
	if f.before != nil {
		f.before(sym)
	}
	if f.fail[sym] {
		return PriceObservation{}, &FetchError{Symbol: sym, Cause: errors.New("boom")}
	}
	queue := f.prices[sym]
	if len(queue) == 0 {
		return PriceObservation{}, &FetchError{Symbol: sym, Cause: errors.New("no price scripted")}
	}
	f.prices[sym] = queue[1:]
	return PriceObservation{Symbol: sym, Price: decimal.RequireFromString(queue[0]), Precision: TickerPrecision, At: time.Now()}, nil
}

func TestCompareHint(t *testing.T) {
	prev := func(p string) *PriceObservation {
		return &PriceObservation{Price: decimal.RequireFromString(p)}
	}
	tests := []struct {
		prev *PriceObservation
		next string
		want ColorHint
	}{
		{prev("100"), "105", HintUp},
		{prev("105"), "100", HintDown},
		{prev("100"), "100.0", HintNeutral},
		{nil, "100", HintNeutral},
	}
	for _, tt := range tests {
		if got := CompareHint(tt.prev, decimal.RequireFromString(tt.next)); got != tt.want {
			t.Errorf("CompareHint(%v, %s) = %s, want %s", tt.prev, tt.next, got, tt.want)
		}
	}
}

func TestTick_ColorsAgainstPreviousObservation(t *testing.T) {
	app, _ := newTestApp("BTCUSDT")
	f := &scriptedFetcher{prices: map[Symbol][]string{"BTCUSDT": {"100", "105", "100", "100"}}}
	r := NewRefresher(app, f, time.Hour, DiscardLogger())

	want := []struct {
		hint  ColorHint
		delta string
	}{
		{HintNeutral, ""},
		{HintUp, "+5.00%"},
		{HintDown, "-4.76%"},
		{HintNeutral, ""},
	}
	for i, w := range want {
		r.Tick(context.Background())
		row := app.Rows()[0]
		if row.Hint != w.hint || row.Delta != w.delta {
			t.Errorf("tick %d: got hint=%s delta=%q, want hint=%s delta=%q", i, row.Hint, row.Delta, w.hint, w.delta)
		}
	}
}

func TestTick_FailureDoesNotStopCycle(t *testing.T) {
	app, _ := newTestApp("BTCUSDT", "BADUSDT", "ETHUSDT")
	f := &scriptedFetcher{
		prices: map[Symbol][]string{"BTCUSDT": {"1"}, "ETHUSDT": {"2"}},
		fail:   map[Symbol]bool{"BADUSDT": true},
	}
	NewRefresher(app, f, time.Hour, DiscardLogger()).Tick(context.Background())

	if strings.Join(f.calls, ",") != "BTCUSDT,BADUSDT,ETHUSDT" {
		t.Errorf("Expected sequential fetch in selection order, got %v", f.calls)
	}
	rows := app.Rows()
	if rows[0].Value != "1.0000" || rows[2].Value != "2.0000" {
		t.Errorf("Expected healthy rows priced, got %+v", rows)
	}
	if rows[1].Value != ErrorText || rows[1].Hint != HintError || rows[1].Label != "BADUSDT" {
		t.Errorf("Expected error row, got %+v", rows[1])
	}
}

func TestTick_FailureKeepsLastObservation(t *testing.T) {
	app, _ := newTestApp("BTCUSDT")
	f := &scriptedFetcher{prices: map[Symbol][]string{"BTCUSDT": {"100"}}}
	r := NewRefresher(app, f, time.Hour, DiscardLogger())

	r.Tick(context.Background())
	f.fail = map[Symbol]bool{"BTCUSDT": true}
	r.Tick(context.Background())
	if app.Rows()[0].Value != ErrorText {
		t.Fatalf("Expected error row, got %+v", app.Rows()[0])
	}
	f.fail = nil
	f.prices["BTCUSDT"] = []string{"90"}
	r.Tick(context.Background())
	if row := app.Rows()[0]; row.Hint != HintDown {
		t.Errorf("Expected down against last good price, got %+v", row)
	}
}

func TestTick_SelectionChangedMidCycle(t *testing.T) {
	app, _ := newTestApp("BTCUSDT", "ETHUSDT", "XRPUSDT")
	f := &scriptedFetcher{prices: map[Symbol][]string{"BTCUSDT": {"1"}, "ETHUSDT": {"2"}, "XRPUSDT": {"3"}}}
	f.before = func(sym Symbol) {
		if sym == "BTCUSDT" {
			app.RemoveRow(0)
		}
	}
	NewRefresher(app, f, time.Hour, DiscardLogger()).Tick(context.Background())

	rows := app.Rows()
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %+v", rows)
	}
	for _, row := range rows {
		if row.Label != row.Symbol {
			t.Errorf("Row shows another symbol's data: %+v", row)
		}
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, _ := newTestApp()
	r := NewRefresher(app, &scriptedFetcher{}, 10*time.Millisecond, DiscardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	r.Trigger()
	r.Trigger()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if r.Refreshing() {
		t.Error("Expected refresher to be idle")
	}
}

func TestEndToEnd_AddAndRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/ticker/price":
			w.Write([]byte(`{"symbol":"` + r.URL.Query().Get("symbol") + `","price":"64123.5"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	app, _ := newTestApp()
	r := NewRefresher(app, NewPriceClient(srv.Client(), testSettings(srv.URL)), time.Hour, DiscardLogger())
	app.SetRefreshTrigger(r.Trigger)

	app.AddSymbol("BTCUSDT")
	r.Tick(context.Background())

	row := app.Rows()[0]
	if row.Label != "BTCUSDT" {
		t.Errorf("Expected label BTCUSDT, got %s", row.Label)
	}
	if !regexp.MustCompile(`^\d+\.\d{4}$`).MatchString(row.Value) {
		t.Errorf("Expected price with 4 decimals, got %q", row.Value)
	}

	srv.Close()
	r.Tick(context.Background())
	if got := app.Rows()[0].Value; got != ErrorText {
		t.Errorf("Expected Error after network failure, got %q", got)
	}
}
