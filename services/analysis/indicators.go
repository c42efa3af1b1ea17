package analysis

import (
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	fifty   = decimal.NewFromInt(50)
)

// SMASeries computes the simple moving average over the given window for an
// ascending series of closing prices. Entries before a full window is
// available are nil (undefined). The mean is sum/window, matching a rolling
// mean with min_periods == window.
func SMASeries(closes []decimal.Decimal, window int) []*decimal.Decimal {
	out := make([]*decimal.Decimal, len(closes))
	if window <= 0 || len(closes) < window {
		return out
	}

	sum := decimal.Zero
	for i, c := range closes {
		sum = sum.Add(c)
		if i >= window {
			sum = sum.Sub(closes[i-window])
		}
		if i >= window-1 {
			sma := sum.Div(decimal.NewFromInt(int64(window)))
			out[i] = &sma
		}
	}
	return out
}

// RSISeries computes the relative strength index over the given window for
// an ascending series of closing prices, using simple means of gains and
// losses over the trailing `window` price differences (no exponential
// smoothing). Defined from index `window` onward; earlier entries are nil.
//
// Edge cases: when the average loss is zero RSI is 100 (maximal strength);
// when both averages are zero (flat series) RSI is 50, a neutral tie-break
// that avoids 0/0.
func RSISeries(closes []decimal.Decimal, window int) []*decimal.Decimal {
	out := make([]*decimal.Decimal, len(closes))
	if window <= 0 || len(closes) < window+1 {
		return out
	}

	gains := make([]decimal.Decimal, len(closes))
	losses := make([]decimal.Decimal, len(closes))
	for i := 1; i < len(closes); i++ {
		diff := closes[i].Sub(closes[i-1])
		if diff.IsPositive() {
			gains[i] = diff
		} else {
			losses[i] = diff.Neg()
		}
	}

	windowDec := decimal.NewFromInt(int64(window))
	gainSum := decimal.Zero
	lossSum := decimal.Zero
	for i := 1; i < len(closes); i++ {
		gainSum = gainSum.Add(gains[i])
		lossSum = lossSum.Add(losses[i])
		if i > window {
			gainSum = gainSum.Sub(gains[i-window])
			lossSum = lossSum.Sub(losses[i-window])
		}
		if i < window {
			continue
		}

		avgGain := gainSum.Div(windowDec)
		avgLoss := lossSum.Div(windowDec)

		var rsi decimal.Decimal
		switch {
		case avgLoss.IsZero() && avgGain.IsZero():
			rsi = fifty
		case avgLoss.IsZero():
			rsi = hundred
		default:
			rs := avgGain.Div(avgLoss)
			rsi = hundred.Sub(hundred.Div(decimal.NewFromInt(1).Add(rs)))
		}
		out[i] = &rsi
	}
	return out
}
