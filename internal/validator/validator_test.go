package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/models"
)

type sample struct {
	Name    string               `json:"customerName" validate:"required"`
	Method  models.PaymentMethod `json:"paymentMethod" validate:"omitempty,paymentmethod"`
	Status  models.BillStatus    `json:"status" validate:"omitempty,billstatus"`
	Role    models.Role          `json:"role" validate:"omitempty,role"`
	Comment string               `json:"notes" validate:"max=5"`
}

func TestValidateRequest_OK(t *testing.T) {
	assert.NoError(t, ValidateRequest(sample{Name: "Asha", Method: models.PaymentMethodUPI, Status: models.BillStatusPending}))
	assert.NoError(t, ValidateRequest(sample{Name: "Asha"}))
}

func TestValidateRequest_Failures(t *testing.T) {
	err := ValidateRequest(sample{Method: "cheque", Status: "void", Role: "guest", Comment: "too long"})
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	msg := ierr.DisplayMessage(err)
	assert.Contains(t, msg, "customerName is required")
	assert.Contains(t, msg, "paymentMethod must be one of cash, card, upi, bank-transfer")
	assert.Contains(t, msg, "status must be one of paid, pending, cancelled")
	assert.Contains(t, msg, "role must be admin or staff")
	assert.Contains(t, msg, "notes must be at most 5")
}
