package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"frontdesk-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"rpc error: code = NotFound desc = process not found", false},
		{"rpc error: code = InvalidArgument desc = bad variables", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(stderrors.New(tt.msg)))
		})
	}
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		code errors.ErrorCode
	}{
		{"context deadline exceeded", errors.ErrCodeTimeout},
		{"Expected to find process definition with process ID 'frontdesk-turn', but none found", errors.ErrCodeExternalService},
		{"rpc error: code = NotFound desc = not found", errors.ErrCodeNotFound},
		{"rpc error: code = Unauthenticated desc = unauthenticated", errors.ErrCodeAuthentication},
		{"rpc error: code = Unavailable desc = unavailable", errors.ErrCodeExternalService},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := mapZeebeError(stderrors.New(tt.msg), "create-instance", 0)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestExecuteWithRetry(t *testing.T) {
	c := &Client{config: &ClientConfig{RetryConfig: &RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   2 * time.Millisecond,
	}}}

	t.Run("retries transient errors until success", func(t *testing.T) {
		calls := 0
		result, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
			calls++
			if calls < 3 {
				return nil, stderrors.New("connection refused")
			}
			return "ok", nil
		}, "deploy")

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		calls := 0
		_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
			calls++
			return nil, stderrors.New("invalid argument")
		}, "deploy")

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}
