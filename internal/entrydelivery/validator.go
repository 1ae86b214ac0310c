package entrydelivery

import (
	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidEntryType validates whether the entry type can be booked manually.
var ValidEntryType validator.Func = func(fl validator.FieldLevel) bool {
	if t, ok := fl.Field().Interface().(string); ok {
		switch t {
		case domain.EntryTypeIncome, domain.EntryTypeExpense, domain.EntryTypePayment:
			return true
		}
	}
	return false
}
