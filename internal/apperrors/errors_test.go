package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.Kind
	}{
		{"structured", apperrors.NewTransferError(apperrors.KindInsufficientBalance, "balance too low"), apperrors.KindInsufficientBalance},
		{"wrapped structured", fmt.Errorf("run 4: %w", apperrors.NewAccountError(apperrors.KindAccountLocked, "busy")), apperrors.KindAccountLocked},
		{"sentinel wrapped with fmt", fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation), apperrors.KindValidation},
		{"not found sentinel", apperrors.ErrNotFound, apperrors.KindNotFound},
		{"plain error", errors.New("boom"), apperrors.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.KindOf(tt.err))
		})
	}
}

func TestError_IsMatchesSentinelByKind(t *testing.T) {
	err := apperrors.NewScheduleError(apperrors.KindNotFound, "schedule 9 not found")

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.False(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, "schedule 9 not found", apperrors.MessageOf(err))
}

func TestNewAppError_KindFromStatus(t *testing.T) {
	err := apperrors.NewAppError(http.StatusInternalServerError, "failed to begin transaction", errors.New("conn reset"))

	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.ErrorContains(t, err, "conn reset")
	assert.Equal(t, http.StatusLocked, apperrors.KindAccountLocked.HTTPStatus())
	assert.Equal(t, http.StatusForbidden, apperrors.KindUnauthorized.HTTPStatus())
}
