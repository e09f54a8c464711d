package internal

import "testing"

func TestTradingURL(t *testing.T) {
	base := DefaultSettings().TradeURL
	tests := []struct {
		sym  Symbol
		base string
		want string
	}{
		{FiatRateSentinel, base, "https://www.tradingview.com/chart/?symbol=FX_IDC%3AUSDKRW"},
		{"BTCUSDT", base, "https://www.binance.com/en/trade/BTC_USDT"},
		{"ethusdt", base, "https://www.binance.com/en/trade/ETH_USDT"},
		{"ETHBTC", base, "https://www.binance.com/en/trade/ETHBTC"},
		{"USDT", base, "https://www.binance.com/en/trade/USDT"},
		{"SOLUSDT", "https://www.binance.us/spot-trade/", "https://www.binance.us/spot-trade/SOL_USDT"},
	}
	for _, tt := range tests {
		if got := TradingURL(tt.sym, "USDT", tt.base); got != tt.want {
			t.Errorf("TradingURL(%q) = %s, want %s", tt.sym, got, tt.want)
		}
	}
}

func TestFiatSentinelMatchesRateKey(t *testing.T) {
	if FiatRateSentinel != "KRW-USD" {
		t.Errorf("Sentinel changed to %s; saved selections would no longer match", FiatRateSentinel)
	}
}
