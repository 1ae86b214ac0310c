package investmentdelivery

import (
	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidInvestmentType validates whether the investment type is supported.
var ValidInvestmentType validator.Func = func(fl validator.FieldLevel) bool {
	if it, ok := fl.Field().Interface().(string); ok {
		_, supported := domain.InvestmentTypes[it]
		return supported
	}
	return false
}
