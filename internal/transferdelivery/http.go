// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/internal/middleware"
	"github.com/go-petr/lifemanager/pkg/web"
)

const (
	// DateLayout is the layout of dates in requests.
	DateLayout = "2006-01-02"

	defaultPageSize = 50
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferTxResult, error)
	Get(ctx context.Context, owner uuid.UUID, id int64) (domain.Transfer, error)
	List(ctx context.Context, arg domain.ListTransfersParams) ([]domain.Transfer, error)
	Delete(ctx context.Context, owner uuid.UUID, id int64) error
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type request struct {
	SourceAccountID      int64  `json:"source_account_id" binding:"required,min=1"`
	DestinationAccountID int64  `json:"destination_account_id" binding:"required,min=1"`
	Amount               string `json:"amount" binding:"required"`
	Description          string `json:"description" binding:"max=255"`
	Date                 string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

type txData struct {
	Transfer domain.TransferTxResult `json:"transfer"`
}

type transferData struct {
	Transfer domain.Transfer `json:"transfer"`
}

type transfersData struct {
	Transfers []domain.Transfer `json:"transfers"`
}

// Create handles http request to create a transfer between two accounts.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
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

	arg := domain.CreateTransferParams{
		Owner:                middleware.UserID(gctx),
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               amount,
		Description:          req.Description,
	}

	if req.Date != "" {
		// already validated by the datetime rule
		arg.Date, _ = time.Parse(DateLayout, req.Date)
	}

	result, err := h.service.Transfer(ctx, arg)
	if err != nil {
		l.Info().Err(err).
			Int64("source_account_id", arg.SourceAccountID).
			Int64("destination_account_id", arg.DestinationAccountID).
			Send()
		gctx.JSON(web.StatusOf(err), web.Error(err))

		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: txData{result}})
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get transfer.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	transfer, err := h.service.Get(ctx, middleware.UserID(gctx), req.ID)
	if err != nil {
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: transferData{transfer}})
}

type listRequest struct {
	AccountID int64 `form:"account_id" binding:"omitempty,min=1"`
	PageID    int32 `form:"page_id" binding:"omitempty,min=1"`
	PageSize  int32 `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// List handles http request to list transfers of the user.
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

	arg := domain.ListTransfersParams{
		Owner:  middleware.UserID(gctx),
		Limit:  req.PageSize,
		Offset: (req.PageID - 1) * req.PageSize,
	}

	if req.AccountID != 0 {
		arg.AccountID = &req.AccountID
	}

	transfers, err := h.service.List(ctx, arg)
	if err != nil {
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: transfersData{transfers}})
}

// Delete handles http request to hide a transfer from the history.
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
		l.Info().Err(err).Int64("transfer_id", req.ID).Send()
		gctx.JSON(web.StatusOf(err), web.Error(err))

		return
	}

	gctx.Status(http.StatusNoContent)
}
