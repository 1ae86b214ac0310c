// Package recurringdelivery manages delivery layer of recurring transactions.
package recurringdelivery

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
)

// DateLayout is the layout of dates in requests.
const DateLayout = "2006-01-02"

// Service provides service layer interface needed by recurring delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package recurringdelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateRecurringParams) (domain.Recurring, error)
	List(ctx context.Context, owner uuid.UUID, pageSize, pageID int32) ([]domain.Recurring, error)
}

// Handler facilitates recurring delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns recurring handler.
func NewHandler(rs Service) *Handler {
	return &Handler{service: rs}
}

type recurringData struct {
	Recurring domain.Recurring `json:"recurring"`
}

type recurringListData struct {
	Recurring []domain.Recurring `json:"recurring"`
}

type createRequest struct {
	AccountID   int64  `json:"account_id" binding:"required,min=1"`
	Name        string `json:"name" binding:"required,max=100"`
	Amount      string `json:"amount" binding:"required"`
	EntryType   string `json:"entry_type" binding:"required,oneof=INCOME EXPENSE PAYMENT"`
	Description string `json:"description" binding:"max=255"`
	Frequency   string `json:"frequency" binding:"required,frequency"`
	StartDate   string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

// Create handles http request to create a recurring transaction.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	arg := domain.CreateRecurringParams{
		Owner:       middleware.UserID(gctx),
		AccountID:   req.AccountID,
		Name:        req.Name,
		Amount:      amount,
		EntryType:   req.EntryType,
		Description: req.Description,
		Frequency:   req.Frequency,
	}

	// dates are already validated by the datetime rule
	if req.StartDate != "" {
		arg.StartDate, _ = time.Parse(DateLayout, req.StartDate)
	}

	if req.EndDate != "" {
		end, _ := time.Parse(DateLayout, req.EndDate)
		arg.EndDate = &end
	}

	rec, err := h.service.Create(ctx, arg)
	if err != nil {
		l.Info().Err(err).Int64("account_id", req.AccountID).Send()
		gctx.JSON(web.StatusOf(err), web.Error(err))

		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: recurringData{rec}})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"omitempty,min=1"`
	PageSize int32 `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// List handles http request to list recurring transactions of the user.
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
		req.PageSize = 50
	}

	list, err := h.service.List(ctx, middleware.UserID(gctx), req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: recurringListData{list}})
}
