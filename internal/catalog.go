package internal

import (
	"context"
	"net/http"
	"strings"
)

type exchangeInfoResponse struct {
	Symbols []struct {
		Symbol string `json:"symbol"`
		Status string `json:"status"`
	} `json:"symbols"`
}

// Catalog is the ordered list of symbols a user can add, sentinel first.
// It is read-only after FetchCatalog returns.
type Catalog struct {
	symbols []Symbol
}

func NewCatalog(symbols ...Symbol) Catalog {
	return Catalog{symbols: append([]Symbol(nil), symbols...)}
}

// FetchCatalog loads the exchange's symbol list once. Only pairs containing
// suffix are kept. On error the returned catalog is empty.
func FetchCatalog(ctx context.Context, client *http.Client, s Settings) (Catalog, error) {
	if client == nil {
		client = &http.Client{}
	}
	var resp exchangeInfoResponse
	if err := getJSON(ctx, client, s.BinanceAPI+"/api/v3/exchangeInfo", &resp); err != nil {
		return Catalog{}, err
	}

	symbols := make([]Symbol, 0, len(resp.Symbols)+1)
	symbols = append(symbols, FiatRateSentinel)
	for _, d := range resp.Symbols {
		if d.Status != "" && d.Status != "TRADING" {
			continue
		}
		if strings.Contains(d.Symbol, s.QuoteSuffix) {
			symbols = append(symbols, d.Symbol)
		}
	}
	return Catalog{symbols: symbols}, nil
}

func (c Catalog) Len() int { return len(c.symbols) }

func (c Catalog) Symbols() []Symbol {
	return append([]Symbol(nil), c.symbols...)
}

// Filter returns the symbols containing query, ignoring case, in catalog order.
func (c Catalog) Filter(query string) []Symbol {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return c.Symbols()
	}
	var out []Symbol
	for _, s := range c.symbols {
		if strings.Contains(strings.ToUpper(s), q) {
			out = append(out, s)
		}
	}
	return out
}
