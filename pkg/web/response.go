// Package web defines common components for a web application.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/go-playground/validator/v10"
)

// JSONError provides type for explicit json encoded error response.
type JSONError struct {
	Kind    errorspkg.Kind `json:"kind"`
	Message string         `json:"message"`
}

// Response holds the common response type for all APIs.
type Response struct {
	Message               string     `json:"message,omitempty"`
	AccessToken           string     `json:"access_token,omitempty"`
	AccessTokenExpiresAt  *time.Time `json:"access_token_expires_at,omitempty"`
	RefreshToken          string     `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
	Data                  any        `json:"data,omitempty"`
	Error                 *JSONError `json:"error,omitempty"`
}

// Error wraps a given err into json frinedly response.
// Errors without a kind are reported as internal without their message.
func Error(err error) Response {
	kind := errorspkg.KindOf(err)

	msg := err.Error()
	if kind == errorspkg.KindInternal {
		msg = errorspkg.ErrInternal.Error()
	}

	return Response{
		Error: &JSONError{
			Kind:    kind,
			Message: msg,
		},
	}
}

var kindStatus = map[errorspkg.Kind]int{
	errorspkg.KindValidation:         http.StatusBadRequest,
	errorspkg.KindOwnership:          http.StatusForbidden,
	errorspkg.KindNotFound:           http.StatusNotFound,
	errorspkg.KindConflict:           http.StatusConflict,
	errorspkg.KindSameAccount:        http.StatusBadRequest,
	errorspkg.KindInsufficientFunds:  http.StatusBadRequest,
	errorspkg.KindInvalidCredentials: http.StatusUnauthorized,
	errorspkg.KindInvalidOTP:         http.StatusBadRequest,
	errorspkg.KindExpiredOTP:         http.StatusBadRequest,
	errorspkg.KindUnauthorized:       http.StatusUnauthorized,
	errorspkg.KindMailUnavailable:    http.StatusServiceUnavailable,
	errorspkg.KindTransient:          http.StatusServiceUnavailable,
}

// StatusOf returns the HTTP status code for the kind of err.
func StatusOf(err error) int {
	if status, ok := kindStatus[errorspkg.KindOf(err)]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// BindError wraps a request binding error into a validation error response.
func BindError(err error) Response {
	msg := err.Error()

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		msg = GetErrorMsg(ve)
	}

	return Response{
		Error: &JSONError{
			Kind:    errorspkg.KindValidation,
			Message: msg,
		},
	}
}

// GetErrorMsg returns human readable messages for the failed validation rules.
func GetErrorMsg(ve validator.ValidationErrors) string {
	msgs := make([]string, 0, len(ve))

	for _, fe := range ve {
		msgs = append(msgs, fieldErrorMsg(fe))
	}

	return strings.Join(msgs, "; ")
}

func fieldErrorMsg(fe validator.FieldError) string {
	field := toSnakeCase(fe.Field())

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "alphanum":
		return field + " must contain only letters and digits"
	case "entrytype":
		return field + " must be one of INCOME, EXPENSE, PAYMENT"
	case "frequency":
		return field + " must be one of DAILY, WEEKLY, MONTHLY, QUARTERLY, ANNUALLY"
	case "investmenttype":
		return field + " must be one of STOCK, BOND, MUTUAL_FUND, ETF, REAL_ESTATE, CRYPTO, GOLD, OTHER"
	}

	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

func toSnakeCase(s string) string {
	var sb strings.Builder

	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				sb.WriteByte('_')
			}

			r += 'a' - 'A'
		}

		sb.WriteRune(r)
	}

	return sb.String()
}
