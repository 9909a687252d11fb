package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "stockfolio/internal/errors"
	"stockfolio/internal/models"
	"stockfolio/internal/pagination"
	"stockfolio/internal/services"
	"stockfolio/internal/validator"
)

// --- mock portfolio service ---

type mockPortfolioService struct {
	buyFn               func(ctx context.Context, symbol string, shares int64) (*services.BuyReceipt, error)
	sellFn              func(ctx context.Context, symbol string, shares int64) (*services.SellReceipt, error)
	getPortfolioFn      func(ctx context.Context) ([]services.Holding, error)
	getPortfolioValueFn func(ctx context.Context) (*services.PortfolioValue, error)
	listLotsFn          func(ctx context.Context, symbol string, page pagination.PageRequest) (*pagination.PageResponse[models.Lot], error)
}

func (m *mockPortfolioService) Buy(ctx context.Context, symbol string, shares int64) (*services.BuyReceipt, error) {
	if m.buyFn != nil {
		return m.buyFn(ctx, symbol, shares)
	}
	return &services.BuyReceipt{}, nil
}

func (m *mockPortfolioService) Sell(ctx context.Context, symbol string, shares int64) (*services.SellReceipt, error) {
	if m.sellFn != nil {
		return m.sellFn(ctx, symbol, shares)
	}
	return &services.SellReceipt{}, nil
}

func (m *mockPortfolioService) GetPortfolio(ctx context.Context) ([]services.Holding, error) {
	if m.getPortfolioFn != nil {
		return m.getPortfolioFn(ctx)
	}
	return []services.Holding{}, nil
}

func (m *mockPortfolioService) GetPortfolioValue(ctx context.Context) (*services.PortfolioValue, error) {
	if m.getPortfolioValueFn != nil {
		return m.getPortfolioValueFn(ctx)
	}
	return &services.PortfolioValue{}, nil
}

func (m *mockPortfolioService) ListLots(ctx context.Context, symbol string, page pagination.PageRequest) (*pagination.PageResponse[models.Lot], error) {
	if m.listLotsFn != nil {
		return m.listLotsFn(ctx, symbol, page)
	}
	resp := pagination.NewPageResponse([]models.Lot{}, 1, 20, 0)
	return &resp, nil
}

var _ services.PortfolioServicer = (*mockPortfolioService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func setupPortfolioRouter(handler *PortfolioHandler) *gin.Engine {
	r := gin.New()
	r.GET("/portfolio", handler.GetPortfolio)
	r.GET("/portfolio/value", handler.GetPortfolioValue)
	r.GET("/portfolio/lots", handler.ListLots)
	r.POST("/portfolio/buy", handler.Buy)
	r.POST("/portfolio/sell", handler.Sell)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestPortfolioHandler_Buy(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockPortfolioService{
			buyFn: func(_ context.Context, symbol string, shares int64) (*services.BuyReceipt, error) {
				return &services.BuyReceipt{
					Symbol:        symbol,
					Shares:        shares,
					PricePerShare: 150.0,
					TotalCost:     150.0 * float64(shares),
				}, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc))

		rec := doRequest(r, "POST", "/portfolio/buy", `{"symbol":"AAPL","shares":10}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["symbol"] != "AAPL" {
			t.Errorf("expected AAPL, got %v", result["symbol"])
		}
		if result["total_cost"] != 1500.0 {
			t.Errorf("expected total_cost 1500, got %v", result["total_cost"])
		}
	})

	t.Run("uppercases the symbol", func(t *testing.T) {
		var gotSymbol string
		svc := &mockPortfolioService{
			buyFn: func(_ context.Context, symbol string, shares int64) (*services.BuyReceipt, error) {
				gotSymbol = symbol
				return &services.BuyReceipt{Symbol: symbol, Shares: shares}, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc))

		rec := doRequest(r, "POST", "/portfolio/buy", `{"symbol":"aapl","shares":1}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if gotSymbol != "AAPL" {
			t.Errorf("expected AAPL, got %q", gotSymbol)
		}
	})

	t.Run("returns 400 on missing shares", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}))

		rec := doRequest(r, "POST", "/portfolio/buy", `{"symbol":"AAPL"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on non-positive shares", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}))

		rec := doRequest(r, "POST", "/portfolio/buy", `{"symbol":"AAPL","shares":-3}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on bad ticker", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}))

		rec := doRequest(r, "POST", "/portfolio/buy", `{"symbol":"NOT A TICKER","shares":1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 502 when quote unavailable", func(t *testing.T) {
		svc := &mockPortfolioService{
			buyFn: func(_ context.Context, _ string, _ int64) (*services.BuyReceipt, error) {
				return nil, apperrors.ErrQuoteUnavailable
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc))

		rec := doRequest(r, "POST", "/portfolio/buy", `{"symbol":"AAPL","shares":1}`)

		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "QUOTE_UNAVAILABLE")
	})
}

func TestPortfolioHandler_Sell(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockPortfolioService{
			sellFn: func(_ context.Context, symbol string, shares int64) (*services.SellReceipt, error) {
				return &services.SellReceipt{
					Symbol:        symbol,
					SharesSold:    shares,
					PricePerShare: 150.0,
					TotalValue:    150.0 * float64(shares),
				}, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc))

		rec := doRequest(r, "POST", "/portfolio/sell", `{"symbol":"AAPL","shares":5}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["shares_sold"] != 5.0 {
			t.Errorf("expected shares_sold 5, got %v", result["shares_sold"])
		}
		if result["total_value"] != 750.0 {
			t.Errorf("expected total_value 750, got %v", result["total_value"])
		}
	})

	t.Run("returns 400 on insufficient shares", func(t *testing.T) {
		svc := &mockPortfolioService{
			sellFn: func(_ context.Context, _ string, _ int64) (*services.SellReceipt, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInsufficientShares,
					"Not enough shares to sell. You own 3 shares of AAPL")
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc))

		rec := doRequest(r, "POST", "/portfolio/sell", `{"symbol":"AAPL","shares":5}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "INSUFFICIENT_SHARES")
		errObj := result["error"].(map[string]interface{})
		if !strings.Contains(errObj["message"].(string), "You own 3 shares") {
			t.Errorf("expected owned quantity in message, got %v", errObj["message"])
		}
	})
}

func TestPortfolioHandler_GetPortfolio(t *testing.T) {
	t.Run("returns 200 with holdings", func(t *testing.T) {
		svc := &mockPortfolioService{
			getPortfolioFn: func(_ context.Context) ([]services.Holding, error) {
				return []services.Holding{
					{Symbol: "AAPL", Shares: 10, CurrentPrice: 150.0, CurrentValue: 1500.0},
				}, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc))

		rec := doRequest(r, "GET", "/portfolio", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var holdings []map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &holdings); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if len(holdings) != 1 || holdings[0]["symbol"] != "AAPL" {
			t.Errorf("unexpected holdings: %v", holdings)
		}
	})

	t.Run("returns empty array for empty portfolio", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}))

		rec := doRequest(r, "GET", "/portfolio", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
			t.Errorf("expected empty JSON array, got %s", body)
		}
	})

	t.Run("returns 502 on quote failure", func(t *testing.T) {
		svc := &mockPortfolioService{
			getPortfolioFn: func(_ context.Context) ([]services.Holding, error) {
				return nil, apperrors.ErrQuoteUnavailable
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc))

		rec := doRequest(r, "GET", "/portfolio", "")

		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
	})
}

func TestPortfolioHandler_GetPortfolioValue(t *testing.T) {
	t.Run("returns 200 with totals", func(t *testing.T) {
		svc := &mockPortfolioService{
			getPortfolioValueFn: func(_ context.Context) (*services.PortfolioValue, error) {
				return &services.PortfolioValue{
					TotalValue:           1200.0,
					TotalCost:            1000.0,
					TotalGainLoss:        200.0,
					TotalGainLossPercent: 20.0,
				}, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc))

		rec := doRequest(r, "GET", "/portfolio/value", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["total_gain_loss_percent"] != 20.0 {
			t.Errorf("expected 20 percent, got %v", result["total_gain_loss_percent"])
		}
	})
}

func TestPortfolioHandler_ListLots(t *testing.T) {
	t.Run("passes symbol filter and pagination", func(t *testing.T) {
		var gotSymbol string
		var gotPage pagination.PageRequest
		svc := &mockPortfolioService{
			listLotsFn: func(_ context.Context, symbol string, page pagination.PageRequest) (*pagination.PageResponse[models.Lot], error) {
				gotSymbol = symbol
				gotPage = page
				resp := pagination.NewPageResponse([]models.Lot{}, page.Page, page.PageSize, 0)
				return &resp, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc))

		rec := doRequest(r, "GET", "/portfolio/lots?symbol=AAPL&page=2&page_size=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotSymbol != "AAPL" {
			t.Errorf("expected symbol AAPL, got %q", gotSymbol)
		}
		if gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("expected page 2/size 5, got %d/%d", gotPage.Page, gotPage.PageSize)
		}
	})

	t.Run("returns 400 on invalid page size", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}))

		rec := doRequest(r, "GET", "/portfolio/lots?page_size=9999", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
