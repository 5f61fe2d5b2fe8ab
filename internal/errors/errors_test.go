package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkAndStatus(t *testing.T) {
	cases := []struct {
		sentinel error
		status   int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{ErrAllocationConflict, http.StatusConflict},
		{ErrFatalAllocation, http.StatusServiceUnavailable},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrPermissionDenied, http.StatusForbidden},
		{ErrDatabase, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err := NewError("boom").Mark(tc.sentinel)
		assert.True(t, Is(err, tc.sentinel))
		assert.Equal(t, tc.status, HTTPStatusFromErr(err), tc.sentinel.Error())
	}

	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromErr(fmt.Errorf("plain")))
}

func TestFatalAllocationWinsOverConflict(t *testing.T) {
	conflict := NewError("dup").Mark(ErrAllocationConflict)
	fatal := WithError(conflict).Mark(ErrFatalAllocation)

	assert.True(t, IsAllocationConflict(fatal))
	assert.True(t, IsFatalAllocation(fatal))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatusFromErr(fatal))
}

func TestDisplayMessage(t *testing.T) {
	err := NewError("checkout before checkin").
		WithHint("checkOut must be after checkIn").
		Mark(ErrValidation)
	assert.Equal(t, "checkOut must be after checkIn", DisplayMessage(err))

	assert.Equal(t, "resource not found", DisplayMessage(NewError("x").Mark(ErrNotFound)))
	assert.Equal(t, "internal server error", DisplayMessage(fmt.Errorf("plain")))
	assert.False(t, IsNotFound(NewError("x").Mark(ErrValidation)))
}
