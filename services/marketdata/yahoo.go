package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// YahooClient implements Source using the Yahoo Finance public API.
type YahooClient struct {
	BaseURL string
	client  *http.Client
}

// NewYahooClient creates a Yahoo Finance client.
func NewYahooClient() *YahooClient {
	return &YahooClient{
		BaseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (y *YahooClient) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
// Quote arrays contain nulls for missing observations, hence *float64.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooQuoteSummary is the response structure from the quoteSummary API.
type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail *struct {
				TrailingPE    *rawValue `json:"trailingPE"`
				DividendYield *rawValue `json:"dividendYield"`
				MarketCap     *rawValue `json:"marketCap"`
			} `json:"summaryDetail"`
			Price *struct {
				MarketCap *rawValue `json:"marketCap"`
			} `json:"price"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

// rangeForPeriod maps ingestion periods to the range values the chart API
// accepts. Unknown periods are passed through unchanged.
func rangeForPeriod(period string) string {
	switch period {
	case "1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max":
		return period
	case "60d":
		return "3mo"
	default:
		return period
	}
}

// FetchBars fetches OHLCV bars from the chart API.
func (y *YahooClient) FetchBars(ctx context.Context, symbol, period, interval string) ([]Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		y.BaseURL, url.PathEscape(symbol), url.QueryEscape(interval), url.QueryEscape(rangeForPeriod(period)))

	body, err := y.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 ||
		len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		bars = append(bars, Bar{
			Timestamp: ts,
			Open:      at(quote.Open, i),
			High:      at(quote.High, i),
			Low:       at(quote.Low, i),
			Close:     at(quote.Close, i),
			Volume:    at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	return bars, nil
}

// FetchFundamentals fetches market cap, trailing P/E and dividend yield
// from the quoteSummary API. Metrics absent upstream stay nil.
func (y *YahooClient) FetchFundamentals(ctx context.Context, symbol string) (*Fundamentals, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=summaryDetail%%2Cprice",
		y.BaseURL, url.PathEscape(symbol))

	body, err := y.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var summary yahooQuoteSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if summary.QuoteSummary.Error != nil {
		if summary.QuoteSummary.Error.Code == "Not Found" {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("yahoo api error: %s", summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, ErrNoData
	}

	result := summary.QuoteSummary.Result[0]
	f := &Fundamentals{}
	if detail := result.SummaryDetail; detail != nil {
		f.PERatio = rawFloat(detail.TrailingPE)
		f.DividendYield = rawFloat(detail.DividendYield)
		f.MarketCap = rawFloat(detail.MarketCap)
	}
	if f.MarketCap == nil && result.Price != nil {
		f.MarketCap = rawFloat(result.Price.MarketCap)
	}
	return f, nil
}

func (y *YahooClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func rawFloat(v *rawValue) *float64 {
	if v == nil {
		return nil
	}
	return v.Raw
}
