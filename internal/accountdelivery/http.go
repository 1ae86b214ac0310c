// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

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

// DateLayout is the layout of dates in requests.
const DateLayout = "2006-01-02"

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, owner uuid.UUID, id int64) (domain.Account, error)
	List(ctx context.Context, owner uuid.UUID, pageSize, pageID int32) ([]domain.Account, error)
	Delete(ctx context.Context, owner uuid.UUID, id int64) error
	Deposit(ctx context.Context, arg domain.BalanceChangeParams) (domain.AccountTxResult, error)
	Withdraw(ctx context.Context, arg domain.BalanceChangeParams) (domain.AccountTxResult, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) *Handler {
	return &Handler{service: as}
}

type accountData struct {
	Account domain.Account `json:"account"`
}

type accountsData struct {
	Accounts []domain.Account `json:"accounts"`
}

type createRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	AccountNumber  string `json:"account_number" binding:"required,max=50"`
	BankName       string `json:"bank_name" binding:"required,max=100"`
	OpeningBalance string `json:"opening_balance"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	openingBalance := decimal.Zero

	if req.OpeningBalance != "" {
		var err error

		openingBalance, err = decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))
			return
		}
	}

	account, err := h.service.Create(ctx, domain.CreateAccountParams{
		Owner:          middleware.UserID(gctx),
		Name:           req.Name,
		AccountNumber:  req.AccountNumber,
		BankName:       req.BankName,
		OpeningBalance: openingBalance,
	})
	if err != nil {
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: accountData{account}})
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get account.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	account, err := h.service.Get(ctx, middleware.UserID(gctx), req.ID)
	if err != nil {
		l.Info().Err(err).Int64("account_id", req.ID).Send()
		gctx.JSON(web.StatusOf(err), web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountData{account}})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

// List handles http request to list accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	accounts, err := h.service.List(ctx, middleware.UserID(gctx), req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountsData{accounts}})
}

// Delete handles http request to deactivate account.
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
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.Status(http.StatusNoContent)
}

type balanceChangeRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Category    string `json:"category" binding:"max=100"`
	Description string `json:"description" binding:"max=255"`
	Date        string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// Deposit handles http request to add money to account.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.changeBalance(gctx, h.service.Deposit)
}

// Withdraw handles http request to take money from account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.changeBalance(gctx, h.service.Withdraw)
}

func (h *Handler) changeBalance(gctx *gin.Context, change func(context.Context, domain.BalanceChangeParams) (domain.AccountTxResult, error)) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	var req balanceChangeRequest
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

	var date time.Time
	if req.Date != "" {
		// already validated by the datetime rule
		date, _ = time.Parse(DateLayout, req.Date)
	}

	result, err := change(ctx, domain.BalanceChangeParams{
		Owner:       middleware.UserID(gctx),
		AccountID:   uri.ID,
		Amount:      amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		l.Info().Err(err).Int64("account_id", uri.ID).Send()
		gctx.JSON(web.StatusOf(err), web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: result})
}
