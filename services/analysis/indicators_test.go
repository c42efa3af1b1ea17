package analysis

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func closesFromFloats(values ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

// risingCloses returns n closes starting at start and rising by 1 each bar.
func risingCloses(start float64, n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		out[i] = decimal.NewFromFloat(start + float64(i))
	}
	return out
}

func TestSMASeries_UndefinedBelowWindow(t *testing.T) {
	closes := risingCloses(100, 19)
	sma := SMASeries(closes, 20)

	require.Len(t, sma, 19)
	for i, v := range sma {
		require.Nilf(t, v, "SMA should be undefined at index %d", i)
	}
}

func TestSMASeries_ExactArithmetic(t *testing.T) {
	// Daily closes rising by $1 from $100: 101, 102, ..., 125.
	closes := risingCloses(101, 25)
	sma := SMASeries(closes, 20)

	for i := 0; i < 19; i++ {
		require.Nil(t, sma[i])
	}

	// At the 20th bar: mean(101..120) = 110.50 exactly.
	require.NotNil(t, sma[19])
	require.True(t, sma[19].Equal(decimal.RequireFromString("110.5")),
		"SMA at index 19 = %s, want 110.5", sma[19])

	// Window slides by one bar, mean rises by exactly $1.
	require.True(t, sma[20].Equal(decimal.RequireFromString("111.5")),
		"SMA at index 20 = %s, want 111.5", sma[20])
	require.True(t, sma[24].Equal(decimal.RequireFromString("115.5")),
		"SMA at index 24 = %s, want 115.5", sma[24])
}

func TestRSISeries_UndefinedBelowWindow(t *testing.T) {
	closes := risingCloses(100, 14) // only 13 differences available
	rsi := RSISeries(closes, 14)

	for i, v := range rsi {
		require.Nilf(t, v, "RSI should be undefined at index %d", i)
	}
}

func TestRSISeries_StrictlyIncreasingIsMaximal(t *testing.T) {
	closes := risingCloses(100, 20)
	rsi := RSISeries(closes, 14)

	for i := 0; i < 14; i++ {
		require.Nil(t, rsi[i])
	}
	for i := 14; i < len(rsi); i++ {
		require.NotNil(t, rsi[i])
		require.Truef(t, rsi[i].Equal(decimal.NewFromInt(100)),
			"RSI at index %d = %s, want 100 (avgLoss = 0)", i, rsi[i])
	}
}

func TestRSISeries_FlatSeriesIsNeutral(t *testing.T) {
	closes := make([]decimal.Decimal, 20)
	for i := range closes {
		closes[i] = decimal.NewFromInt(42)
	}
	rsi := RSISeries(closes, 14)

	for i := 14; i < len(rsi); i++ {
		require.NotNil(t, rsi[i])
		require.Truef(t, rsi[i].Equal(decimal.NewFromInt(50)),
			"RSI at index %d = %s, want 50 (0/0 tie-break)", i, rsi[i])
	}
}

func TestRSISeries_MixedMoves(t *testing.T) {
	// 14 differences: +1 x7, -1 x7 -> avgGain == avgLoss -> RS = 1 -> RSI = 50.
	closes := closesFromFloats(
		100, 101, 100, 101, 100, 101, 100, 101, 100, 101, 100, 101, 100, 101, 100,
	)
	rsi := RSISeries(closes, 14)

	require.NotNil(t, rsi[14])
	require.True(t, rsi[14].Equal(decimal.NewFromInt(50)),
		"RSI = %s, want 50 for equal gains and losses", rsi[14])
}

func TestRSISeries_StrictlyDecreasingIsMinimal(t *testing.T) {
	closes := make([]decimal.Decimal, 16)
	for i := range closes {
		closes[i] = decimal.NewFromInt(int64(200 - i))
	}
	rsi := RSISeries(closes, 14)

	require.NotNil(t, rsi[14])
	require.True(t, rsi[14].Equal(decimal.Zero),
		"RSI = %s, want 0 for strictly decreasing series", rsi[14])
}
