// Package investmentdelivery manages delivery layer of investments.
package investmentdelivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/internal/middleware"
	"github.com/go-petr/lifemanager/pkg/web"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the layout of dates in requests.
	DateLayout = "2006-01-02"

	defaultPageSize = 50
)

// Service provides service layer interface needed by investment delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package investmentdelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateInvestmentParams) (domain.Investment, error)
	Get(ctx context.Context, owner uuid.UUID, id int64) (domain.Investment, error)
	List(ctx context.Context, arg domain.ListInvestmentsParams) ([]domain.Investment, error)
	UpdateCurrentPrice(ctx context.Context, owner uuid.UUID, id int64, price decimal.Decimal) (domain.Investment, error)
	Delete(ctx context.Context, owner uuid.UUID, id int64) error
}

// Handler facilitates investment delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns investment handler.
func NewHandler(is Service) *Handler {
	return &Handler{service: is}
}

type investmentData struct {
	Investment domain.Investment `json:"investment"`
}

type investmentsData struct {
	Investments []domain.Investment `json:"investments"`
}

type createRequest struct {
	InvestmentType string `json:"investment_type" binding:"omitempty,investmenttype"`
	Name           string `json:"name" binding:"required,max=255"`
	Symbol         string `json:"symbol" binding:"max=10"`
	PurchaseDate   string `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
	Quantity       string `json:"quantity" binding:"required"`
	PurchasePrice  string `json:"purchase_price" binding:"required"`
	CurrentPrice   string `json:"current_price"`
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	return d, nil
}

// Create handles http request to create an investment.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	arg := domain.CreateInvestmentParams{
		Owner:          middleware.UserID(gctx),
		InvestmentType: req.InvestmentType,
		Name:           req.Name,
		Symbol:         req.Symbol,
	}

	var err error

	if arg.Quantity, err = parseDecimal(req.Quantity); err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	if arg.PurchasePrice, err = parseDecimal(req.PurchasePrice); err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	if req.CurrentPrice != "" {
		price, err := parseDecimal(req.CurrentPrice)
		if err != nil {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		arg.CurrentPrice = &price
	}

	if req.PurchaseDate != "" {
		// already validated by the datetime rule
		arg.PurchaseDate, _ = time.Parse(DateLayout, req.PurchaseDate)
	}

	inv, err := h.service.Create(ctx, arg)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(web.StatusOf(err), web.Error(err))

		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: investmentData{inv}})
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get an investment.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	inv, err := h.service.Get(ctx, middleware.UserID(gctx), req.ID)
	if err != nil {
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: investmentData{inv}})
}

type listRequest struct {
	InvestmentType string `form:"investment_type" binding:"omitempty,investmenttype"`
	PageID         int32  `form:"page_id" binding:"omitempty,min=1"`
	PageSize       int32  `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// List handles http request to list investments of the user.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	if req.PageID == 0 {
		req.PageID = 1
	}

	if req.PageSize == 0 {
		req.PageSize = defaultPageSize
	}

	investments, err := h.service.List(ctx, domain.ListInvestmentsParams{
		Owner:          middleware.UserID(gctx),
		InvestmentType: req.InvestmentType,
		Limit:          req.PageSize,
		Offset:         (req.PageID - 1) * req.PageSize,
	})
	if err != nil {
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: investmentsData{investments}})
}

type priceRequest struct {
	CurrentPrice string `json:"current_price" binding:"required"`
}

// UpdateCurrentPrice handles http request to set the current price of an investment.
func (h *Handler) UpdateCurrentPrice(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	var req priceRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	price, err := parseDecimal(req.CurrentPrice)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	inv, err := h.service.UpdateCurrentPrice(ctx, middleware.UserID(gctx), uri.ID, price)
	if err != nil {
		l.Info().Err(err).Int64("investment_id", uri.ID).Send()
		gctx.JSON(web.StatusOf(err), web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: investmentData{inv}})
}

// Delete handles http request to delete an investment.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	if err := h.service.Delete(ctx, middleware.UserID(gctx), req.ID); err != nil {
		l.Info().Err(err).Int64("investment_id", req.ID).Send()
		gctx.JSON(web.StatusOf(err), web.Error(err))

		return
	}

	gctx.Status(http.StatusNoContent)
}
