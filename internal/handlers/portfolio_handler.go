package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "stockfolio/internal/errors"
	"stockfolio/internal/pagination"
	"stockfolio/internal/services"
)

// PortfolioHandler handles portfolio ledger requests.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// OrderRequest represents the request payload for buying or selling shares.
type OrderRequest struct {
	Symbol string `json:"symbol" binding:"required,ticker"`
	Shares int64  `json:"shares" binding:"required,gt=0"`
}

// lotsQuery holds the query parameters accepted by the lot listing endpoint.
type lotsQuery struct {
	Symbol string `form:"symbol" binding:"omitempty,ticker"`
	pagination.PageRequest
}

// Buy handles purchasing shares at the current quoted price.
// @Summary     Buy shares
// @Description Buy shares of a stock at the current market price
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Param       request body OrderRequest true "Symbol and share count"
// @Success     201 {object} services.BuyReceipt "Purchase recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     502 {object} ErrorResponse "Quote unavailable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/buy [post]
func (h *PortfolioHandler) Buy(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	receipt, err := h.portfolioService.Buy(c.Request.Context(), strings.ToUpper(req.Symbol), req.Shares)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// Sell handles selling shares, consuming the oldest lots first.
// @Summary     Sell shares
// @Description Sell shares of a stock at the current market price
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Param       request body OrderRequest true "Symbol and share count"
// @Success     200 {object} services.SellReceipt "Sale recorded"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient shares"
// @Failure     502 {object} ErrorResponse "Quote unavailable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/sell [post]
func (h *PortfolioHandler) Sell(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	receipt, err := h.portfolioService.Sell(c.Request.Context(), strings.ToUpper(req.Symbol), req.Shares)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// GetPortfolio handles listing current holdings with live valuations.
// @Summary     Get portfolio
// @Description Get current holdings joined with live quotes
// @Tags        portfolio
// @Produce     json
// @Success     200 {array} services.Holding "Holdings"
// @Failure     502 {object} ErrorResponse "Quote unavailable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio [get]
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	holdings, err := h.portfolioService.GetPortfolio(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, holdings)
}

// GetPortfolioValue handles the aggregate valuation endpoint.
// @Summary     Get portfolio value
// @Description Get total portfolio value and gain/loss metrics
// @Tags        portfolio
// @Produce     json
// @Success     200 {object} services.PortfolioValue "Aggregate valuation"
// @Failure     502 {object} ErrorResponse "Quote unavailable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/value [get]
func (h *PortfolioHandler) GetPortfolioValue(c *gin.Context) {
	value, err := h.portfolioService.GetPortfolioValue(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, value)
}

// ListLots handles the raw ledger inspection endpoint.
// @Summary     List lots
// @Description Get a paginated list of ledger lots, optionally filtered by symbol
// @Tags        portfolio
// @Produce     json
// @Param       symbol    query string false "Filter by symbol"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Lot] "Paginated lots"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/lots [get]
func (h *PortfolioHandler) ListLots(c *gin.Context) {
	var query lotsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.portfolioService.ListLots(c.Request.Context(), strings.ToUpper(query.Symbol), query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
