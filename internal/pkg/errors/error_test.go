package xerrors_test

import (
	"fmt"
	"testing"

	xerrors "userhub-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		code string
	}{
		"validation":     {xerrors.ErrValidation, "VALIDATION_ERROR"},
		"email exists":   {xerrors.ErrEmailExists, "EMAIL_EXISTS"},
		"locked":         {xerrors.ErrAccountLocked, "ACCOUNT_LOCKED"},
		"email delivery": {xerrors.ErrEmailDelivery, "ACCOUNT_CREATED_EMAIL_FAILED"},
		"unknown":        {fmt.Errorf("pq: connection refused"), "INTERNAL_ERROR"},
		"nil":            {nil, "INTERNAL_ERROR"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.code, xerrors.Code(tc.err))
		})
	}
}

func TestCodeSeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", xerrors.ErrInvalidCredentials)
	assert.Equal(t, "INVALID_CREDENTIALS", xerrors.Code(wrapped))

	validation := xerrors.Validation("nickname %q is reserved", "admin")
	assert.Equal(t, "VALIDATION_ERROR", xerrors.Code(validation))
	assert.Contains(t, validation.Error(), "admin")
}
