package internal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Symbol is an exchange trading pair such as "BTCUSDT", or FiatRateSentinel.
type Symbol = string

// FiatCurrency is the currency quoted against USD by FiatRateSentinel.
const FiatCurrency = "KRW"

// FiatRateSentinel stands for the USD/KRW exchange rate rather than a
// tradable pair. It is persisted verbatim in config.json.
const FiatRateSentinel Symbol = FiatCurrency + "-USD"

const (
	FiatPrecision   int32 = 2
	TickerPrecision int32 = 4
)

// ErrorText is the value shown in a row whose last fetch failed.
const ErrorText = "Error"

// ColorHint tells the display how to tint a row's value.
type ColorHint int

const (
	HintNeutral ColorHint = iota
	HintUp
	HintDown
	HintError
)

func (h ColorHint) String() string {
	switch h {
	case HintUp:
		return "up"
	case HintDown:
		return "down"
	case HintError:
		return "error"
	default:
		return "neutral"
	}
}

// PriceObservation is the latest price seen for a symbol.
type PriceObservation struct {
	Symbol    Symbol
	Price     decimal.Decimal
	Precision int32
	At        time.Time
}

// Text formats the price with the precision of its source endpoint.
func (o PriceObservation) Text() string {
	return o.Price.StringFixed(o.Precision)
}

// Row is one line of the display surface.
type Row struct {
	Symbol Symbol
	Label  string
	Value  string
	Delta  string
	Hint   ColorHint
}

// CompareHint resolves the colour of a new price against the previous one.
// A nil previous observation is neutral.
func CompareHint(prev *PriceObservation, next decimal.Decimal) ColorHint {
	if prev == nil {
		return HintNeutral
	}
	switch next.Cmp(prev.Price) {
	case 1:
		return HintUp
	case -1:
		return HintDown
	default:
		return HintNeutral
	}
}

// DeltaText renders the percent change from prev to next, e.g. "+1.25%".
// It is empty when there is nothing to compare against or no change.
func DeltaText(prev *PriceObservation, next decimal.Decimal) string {
	if prev == nil || prev.Price.IsZero() || next.Equal(prev.Price) {
		return ""
	}
	pct := next.Sub(prev.Price).Div(prev.Price).Mul(decimal.NewFromInt(100))
	s := pct.StringFixed(2) + "%"
	if pct.IsPositive() {
		s = "+" + s
	}
	return s
}
