package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "stockfolio/internal/errors"
	"stockfolio/internal/services"
)

// StockHandler handles symbol-level market data requests.
type StockHandler struct {
	stockService services.StockServicer
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockService services.StockServicer) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// symbolParam extracts and normalizes the :symbol path parameter.
func symbolParam(c *gin.Context) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid symbol")
	}
	return symbol, nil
}

// GetStockInfo handles the live quote lookup.
// @Summary     Get stock info
// @Description Get the current quote for a symbol
// @Tags        stocks
// @Produce     json
// @Param       symbol path string true "Ticker symbol"
// @Success     200 {object} models.Quote "Current quote"
// @Failure     400 {object} ErrorResponse "Invalid symbol"
// @Failure     502 {object} ErrorResponse "Quote unavailable"
// @Router      /stocks/{symbol} [get]
func (h *StockHandler) GetStockInfo(c *gin.Context) {
	symbol, err := symbolParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	quote, err := h.stockService.GetStockInfo(c.Request.Context(), symbol)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// GetCompanyInfo handles the company profile lookup.
// @Summary     Get company info
// @Description Get descriptive company data for a symbol
// @Tags        stocks
// @Produce     json
// @Param       symbol path string true "Ticker symbol"
// @Success     200 {object} models.CompanyProfile "Company profile"
// @Failure     400 {object} ErrorResponse "Invalid symbol"
// @Failure     502 {object} ErrorResponse "Quote unavailable"
// @Router      /stocks/{symbol}/company [get]
func (h *StockHandler) GetCompanyInfo(c *gin.Context) {
	symbol, err := symbolParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	profile, err := h.stockService.GetCompanyInfo(c.Request.Context(), symbol)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetHistory handles the daily price history lookup.
// @Summary     Get price history
// @Description Get the daily OHLCV series for a symbol, newest first
// @Tags        stocks
// @Produce     json
// @Param       symbol path string true "Ticker symbol"
// @Success     200 {array} models.Candle "Daily candles"
// @Failure     400 {object} ErrorResponse "Invalid symbol"
// @Failure     502 {object} ErrorResponse "Quote unavailable"
// @Router      /stocks/{symbol}/history [get]
func (h *StockHandler) GetHistory(c *gin.Context) {
	symbol, err := symbolParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	candles, err := h.stockService.GetHistory(c.Request.Context(), symbol)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, candles)
}
