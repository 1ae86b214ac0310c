package domain

import (
	"time"

	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recurring frequencies.
const (
	FrequencyDaily     = "DAILY"
	FrequencyWeekly    = "WEEKLY"
	FrequencyMonthly   = "MONTHLY"
	FrequencyQuarterly = "QUARTERLY"
	FrequencyAnnually  = "ANNUALLY"
)

// FrequencyDays maps a frequency to the number of days between two runs.
var FrequencyDays = map[string]int{
	FrequencyDaily:     1,
	FrequencyWeekly:    7,
	FrequencyMonthly:   30,
	FrequencyQuarterly: 90,
	FrequencyAnnually:  365,
}

var (
	// ErrRecurringNotFound indicates that the schedule is not found.
	ErrRecurringNotFound = errorspkg.New(errorspkg.KindNotFound, "recurring transaction not found")
	// ErrInvalidFrequency indicates an unknown frequency.
	ErrInvalidFrequency = errorspkg.New(errorspkg.KindValidation, "invalid frequency")
	// ErrInvalidDateRange indicates an end date before the start date.
	ErrInvalidDateRange = errorspkg.New(errorspkg.KindValidation, "end date must not be before start date")
	// ErrAlreadyProcessed indicates that the schedule already ran for the period.
	ErrAlreadyProcessed = errorspkg.New(errorspkg.KindConflict, "recurring transaction already processed for the period")
)

// Recurring is a schedule that books an entry every period.
type Recurring struct {
	ID            int64           `json:"id"`
	Owner         uuid.UUID       `json:"owner"`
	AccountID     int64           `json:"account_id"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	EntryType     string          `json:"entry_type"`
	Description   string          `json:"description"`
	Frequency     string          `json:"frequency"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       *time.Time      `json:"end_date"`
	LastProcessed *time.Time      `json:"last_processed"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IsDue reports whether the schedule should book an entry on day.
func (r Recurring) IsDue(day time.Time) bool {
	day = truncateDay(day)

	if !r.IsActive || day.Before(truncateDay(r.StartDate)) {
		return false
	}

	if r.EndDate != nil && day.After(truncateDay(*r.EndDate)) {
		return false
	}

	if r.LastProcessed == nil {
		return true
	}

	days := int(day.Sub(truncateDay(*r.LastProcessed)).Hours() / 24)

	return days >= FrequencyDays[r.Frequency]
}

// EntryFor returns the entry the schedule books on day.
func (r Recurring) EntryFor(day time.Time) CreateEntryParams {
	return CreateEntryParams{
		Owner:       r.Owner,
		AccountID:   r.AccountID,
		Amount:      r.Amount,
		EntryType:   r.EntryType,
		Category:    "Recurring",
		Subcategory: r.Name,
		Description: r.Description,
		Date:        truncateDay(day),
	}
}

// CreateRecurringParams is the input data to create a schedule.
type CreateRecurringParams struct {
	Owner       uuid.UUID
	AccountID   int64
	Name        string
	Amount      decimal.Decimal
	EntryType   string
	Description string
	Frequency   string
	StartDate   time.Time
	EndDate     *time.Time
}

// ProcessResult reports what a processing run did.
type ProcessResult struct {
	Processed int
	Skipped   int
	Failed    int
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
