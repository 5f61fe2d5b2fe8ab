package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/models"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// GetValidator returns the shared validator with the billing tags
// registered: paymentmethod, billstatus and role.
func GetValidator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("paymentmethod", func(fl validator.FieldLevel) bool {
			return models.PaymentMethod(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("billstatus", func(fl validator.FieldLevel) bool {
			return models.BillStatus(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).IsValid()
		})
		validate = v
	})
	return validate
}

// ValidateRequest runs struct validation and converts failures into an
// ierr.ErrValidation with a readable hint.
func ValidateRequest(req any) error {
	err := GetValidator().Struct(req)
	if err == nil {
		return nil
	}

	details := make(map[string]any)
	hints := []string{}
	var validateErrs validator.ValidationErrors
	if ierr.As(err, &validateErrs) {
		for _, fe := range validateErrs {
			details[fe.Field()] = fe.Error()
			hints = append(hints, describe(fe))
		}
	}
	if len(hints) == 0 {
		hints = append(hints, "Request validation failed")
	}

	return ierr.WithError(err).
		WithHint(strings.Join(hints, "; ")).
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "paymentmethod":
		return fmt.Sprintf("%s must be one of cash, card, upi, bank-transfer", fe.Field())
	case "billstatus":
		return fmt.Sprintf("%s must be one of paid, pending, cancelled", fe.Field())
	case "role":
		return fmt.Sprintf("%s must be admin or staff", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
