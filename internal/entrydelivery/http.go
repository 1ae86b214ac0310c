// Package entrydelivery manages delivery layer of entries.
package entrydelivery

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

const (
	// DateLayout is the layout of dates in requests.
	DateLayout = "2006-01-02"

	defaultPageSize = 50
)

// Service provides service layer interface needed by entry delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package entrydelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateEntryParams) (domain.AccountTxResult, error)
	Get(ctx context.Context, owner uuid.UUID, id int64) (domain.Entry, error)
	List(ctx context.Context, arg domain.ListEntriesParams) ([]domain.Entry, error)
	Delete(ctx context.Context, owner uuid.UUID, id int64) error
	Summary(ctx context.Context, arg domain.SummaryParams) (domain.Summary, error)
}

// Handler facilitates entry delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns entry handler.
func NewHandler(es Service) *Handler {
	return &Handler{service: es}
}

type entryData struct {
	Entry domain.Entry `json:"entry"`
}

type entriesData struct {
	Entries []domain.Entry `json:"entries"`
}

type summaryData struct {
	Summary domain.Summary `json:"summary"`
}

type createRequest struct {
	AccountID   int64  `json:"account_id" binding:"required,min=1"`
	Amount      string `json:"amount" binding:"required"`
	EntryType   string `json:"entry_type" binding:"required,entrytype"`
	Category    string `json:"category" binding:"max=100"`
	Subcategory string `json:"subcategory" binding:"max=100"`
	Description string `json:"description" binding:"max=255"`
	Date        string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// Create handles http request to book a manual entry.
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

	result, err := h.service.Create(ctx, domain.CreateEntryParams{
		Owner:       middleware.UserID(gctx),
		AccountID:   req.AccountID,
		Amount:      amount,
		EntryType:   req.EntryType,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Description: req.Description,
		Date:        parseDate(req.Date),
	})
	if err != nil {
		l.Info().Err(err).Int64("account_id", req.AccountID).Send()
		gctx.JSON(web.StatusOf(err), web.Error(err))

		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: result})
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get entry.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	entry, err := h.service.Get(ctx, middleware.UserID(gctx), req.ID)
	if err != nil {
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: entryData{entry}})
}

type listRequest struct {
	AccountID int64  `form:"account_id" binding:"omitempty,min=1"`
	EntryType string `form:"entry_type" binding:"omitempty,oneof=INCOME EXPENSE TRANSFER PAYMENT"`
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	PageID    int32  `form:"page_id" binding:"omitempty,min=1"`
	PageSize  int32  `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// List handles http request to list entries of the user.
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

	arg := domain.ListEntriesParams{
		Owner:     middleware.UserID(gctx),
		EntryType: req.EntryType,
		From:      parseOptionalDate(req.From),
		To:        parseOptionalDate(req.To),
		Limit:     req.PageSize,
		Offset:    (req.PageID - 1) * req.PageSize,
	}

	if req.AccountID != 0 {
		arg.AccountID = &req.AccountID
	}

	entries, err := h.service.List(ctx, arg)
	if err != nil {
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: entriesData{entries}})
}

// Delete handles http request to hide entry from history.
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

type summaryRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// Summary handles http request to total entries of the user.
func (h *Handler) Summary(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req summaryRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	summary, err := h.service.Summary(ctx, domain.SummaryParams{
		Owner: middleware.UserID(gctx),
		From:  parseOptionalDate(req.From),
		To:    parseOptionalDate(req.To),
	})
	if err != nil {
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: summaryData{summary}})
}

// parseDate expects s to be validated by the datetime rule.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	t, _ := time.Parse(DateLayout, s)

	return t
}

func parseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}

	t := parseDate(s)

	return &t
}
