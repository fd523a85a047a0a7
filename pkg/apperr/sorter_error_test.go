package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing field", MissingField("email_text"), http.StatusBadRequest},
		{"wrapped app error", fmt.Errorf("handler: %w", NotFound("folder")), http.StatusNotFound},
		{"model not ready", ModelNotReady(errors.New("untrained")), http.StatusServiceUnavailable},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetHTTPStatus(tt.err); got != tt.want {
				t.Errorf("GetHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppError_CopyOnWrite(t *testing.T) {
	req := require.New(t)
	cause := errors.New("redis down")

	e := ErrRateLimited.WithDetail("retry_after", 1).WithError(cause)

	req.Nil(ErrRateLimited.Details)
	req.Nil(ErrRateLimited.Err)
	req.Equal(1, e.Details["retry_after"])
	req.ErrorIs(e, cause)
	req.Equal("[RATE_LIMITED] too many requests: redis down", e.Error())
}

func TestAsAppError(t *testing.T) {
	req := require.New(t)

	plain := AsAppError(errors.New("boom"))
	req.Equal(CodeInternalError, plain.Code)

	bad := BadRequest("nope")
	req.Same(bad, AsAppError(fmt.Errorf("wrap: %w", bad)))
	req.True(IsAppError(bad))
}
