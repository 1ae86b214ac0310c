package recurringdelivery

import (
	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidFrequency validates whether the schedule frequency is supported.
var ValidFrequency validator.Func = func(fl validator.FieldLevel) bool {
	if f, ok := fl.Field().Interface().(string); ok {
		_, supported := domain.FrequencyDays[f]
		return supported
	}
	return false
}
