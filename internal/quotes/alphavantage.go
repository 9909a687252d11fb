// Package quotes implements the market-data client against the Alpha Vantage
// REST API. It performs a single attempt per call with a bounded timeout and
// reports every failure mode as QUOTE_UNAVAILABLE so callers can fail fast
// without retry logic.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"stockfolio/internal/config"
	apperrors "stockfolio/internal/errors"
	"stockfolio/internal/logger"
	"stockfolio/internal/models"
)

const dateLayout = "2006-01-02"

// AlphaVantage is a quote client for the Alpha Vantage HTTP API.
type AlphaVantage struct {
	client *resty.Client
	apiKey string
}

// NewAlphaVantage creates a client from application configuration.
func NewAlphaVantage(cfg *config.Config) *AlphaVantage {
	client := resty.New().
		SetBaseURL(cfg.AlphaVantageURL).
		SetTimeout(cfg.QuoteTimeout)
	return &AlphaVantage{client: client, apiKey: cfg.AlphaVantageKey}
}

// globalQuotePayload mirrors Alpha Vantage's GLOBAL_QUOTE response. All
// numeric fields arrive as strings.
type globalQuotePayload struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// dailySeriesPayload mirrors the TIME_SERIES_DAILY response.
type dailySeriesPayload struct {
	TimeSeries map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
}

// overviewPayload mirrors the OVERVIEW response fields we pass through.
type overviewPayload struct {
	Name          string `json:"Name"`
	Description   string `json:"Description"`
	Sector        string `json:"Sector"`
	PERatio       string `json:"PERatio"`
	MarketCap     string `json:"MarketCapitalization"`
	DividendYield string `json:"DividendYield"`
}

// GetQuote fetches the current price, change, and percent change for a symbol.
func (a *AlphaVantage) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	log := logger.Named("quotes")

	body, err := a.query(ctx, "GLOBAL_QUOTE", symbol)
	if err != nil {
		return nil, err
	}

	var payload globalQuotePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Errorw("malformed quote response", "symbol", symbol, "error", err)
		return nil, apperrors.Wrap(apperrors.ErrQuoteUnavailable, err)
	}
	if payload.GlobalQuote.Price == "" {
		// Unknown symbols and exhausted API quotas both come back as an
		// empty or missing "Global Quote" object, not an HTTP error.
		log.Warnw("no quote data in response", "symbol", symbol)
		return nil, apperrors.WithMessage(apperrors.ErrQuoteUnavailable,
			fmt.Sprintf("Could not fetch data for symbol %s", symbol))
	}

	price, err := strconv.ParseFloat(payload.GlobalQuote.Price, 64)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQuoteUnavailable, fmt.Errorf("parsing price %q: %w", payload.GlobalQuote.Price, err))
	}
	change := 0.0
	if payload.GlobalQuote.Change != "" {
		// Change fields are informational; a parse failure should not fail
		// the quote.
		change, _ = strconv.ParseFloat(payload.GlobalQuote.Change, 64)
	}

	return &models.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: payload.GlobalQuote.ChangePercent,
	}, nil
}

// GetDailySeries fetches the daily OHLCV series for a symbol, newest first.
func (a *AlphaVantage) GetDailySeries(ctx context.Context, symbol string) ([]models.Candle, error) {
	body, err := a.query(ctx, "TIME_SERIES_DAILY", symbol)
	if err != nil {
		return nil, err
	}

	var payload dailySeriesPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQuoteUnavailable, err)
	}
	if len(payload.TimeSeries) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrQuoteUnavailable,
			fmt.Sprintf("Could not fetch historical data for symbol %s", symbol))
	}

	candles := make([]models.Candle, 0, len(payload.TimeSeries))
	for dateStr, bar := range payload.TimeSeries {
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrQuoteUnavailable, fmt.Errorf("parsing date %q: %w", dateStr, err))
		}
		open, err1 := strconv.ParseFloat(bar.Open, 64)
		high, err2 := strconv.ParseFloat(bar.High, 64)
		low, err3 := strconv.ParseFloat(bar.Low, 64)
		closePx, err4 := strconv.ParseFloat(bar.Close, 64)
		volume, err5 := strconv.ParseInt(bar.Volume, 10, 64)
		for _, perr := range []error{err1, err2, err3, err4, err5} {
			if perr != nil {
				return nil, apperrors.Wrap(apperrors.ErrQuoteUnavailable, fmt.Errorf("parsing bar for %s: %w", dateStr, perr))
			}
		}
		candles = append(candles, models.Candle{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePx,
			Volume: volume,
		})
	}

	// The provider keys bars by date in a JSON object, so order them here.
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date.After(candles[j].Date)
	})
	return candles, nil
}

// GetCompanyOverview fetches descriptive company data for a symbol.
func (a *AlphaVantage) GetCompanyOverview(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	body, err := a.query(ctx, "OVERVIEW", symbol)
	if err != nil {
		return nil, err
	}

	var payload overviewPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQuoteUnavailable, err)
	}
	if payload.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrQuoteUnavailable,
			fmt.Sprintf("Could not fetch company info for symbol %s", symbol))
	}

	return &models.CompanyProfile{
		Name:          payload.Name,
		Description:   payload.Description,
		Sector:        payload.Sector,
		PERatio:       payload.PERatio,
		MarketCap:     payload.MarketCap,
		DividendYield: payload.DividendYield,
	}, nil
}

// query performs a single GET against the Alpha Vantage query endpoint.
func (a *AlphaVantage) query(ctx context.Context, function, symbol string) ([]byte, error) {
	log := logger.Named("quotes")

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"function": function,
			"symbol":   symbol,
			"apikey":   a.apiKey,
		}).
		Get("/query")
	if err != nil {
		log.Errorw("quote request failed", "function", function, "symbol", symbol, "error", err)
		return nil, apperrors.Wrap(apperrors.ErrQuoteUnavailable, err)
	}
	if resp.StatusCode() != 200 {
		log.Errorw("quote request returned non-200", "function", function, "symbol", symbol, "status", resp.StatusCode())
		return nil, apperrors.Wrap(apperrors.ErrQuoteUnavailable, fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}
	return resp.Body(), nil
}
