package internal

import (
	"fmt"
	"strings"

	"github.com/pkg/browser"
)

const FiatChartURL = "https://www.tradingview.com/chart/?symbol=FX_IDC%3AUSD" + FiatCurrency

// TradingURL resolves the page opened when a row is activated. Pairs are
// written BASE_QUOTE under tradeBase, e.g. BTCUSDT becomes BTC_USDT.
func TradingURL(sym Symbol, quoteSuffix, tradeBase string) string {
	if sym == FiatRateSentinel {
		return FiatChartURL
	}
	s := strings.ToUpper(sym)
	q := strings.ToUpper(quoteSuffix)
	if q != "" && strings.HasSuffix(s, q) && len(s) > len(q) {
		return tradeBase + strings.TrimSuffix(s, q) + "_" + q
	}
	return tradeBase + s
}

// URLOpener hands a URL to the platform's default handler.
type URLOpener func(url string) error

// OpenURL opens url in the default browser.
func OpenURL(url string) error {
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}
