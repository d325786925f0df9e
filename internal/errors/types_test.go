package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHTTPStatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantQuota bool
		wantTrans bool
	}{
		{name: "429 is quota", status: 429, body: "slow down", wantQuota: true},
		{name: "quota text in 500 body", status: 500, body: "monthly QUOTA exhausted", wantQuota: true},
		{name: "rate limit text", status: 403, body: "Rate Limit reached", wantQuota: true},
		{name: "capacity text", status: 503, body: "model at capacity", wantQuota: true},
		{name: "500 transient", status: 500, body: "internal error", wantTrans: true},
		{name: "502 transient", status: 502, body: "bad gateway", wantTrans: true},
		{name: "503 transient", status: 503, body: "unavailable", wantTrans: true},
		{name: "504 transient", status: 504, body: "gateway timeout", wantTrans: true},
		{name: "400 permanent", status: 400, body: "bad request"},
		{name: "401 permanent", status: 401, body: "missing key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromHTTPStatus("score text", tt.status, []byte(tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.wantQuota, IsQuota(err))
			assert.Equal(t, tt.wantTrans, IsTransient(err))
		})
	}
}

func TestQuotaErrorMessage(t *testing.T) {
	err := FromHTTPStatus("score text", 429, []byte("too many requests"))
	require.True(t, IsQuota(err))

	// Quota carries the one prescribed user-facing message; the upstream
	// cause stays reachable through Unwrap.
	assert.Equal(t, quotaMessage, err.Error())
	assert.Contains(t, errors.Unwrap(err).Error(), "status 429")
}

func TestQuotaIsNeverTransient(t *testing.T) {
	quota := NewQuotaError(errors.New("429"))
	assert.False(t, IsTransient(quota))

	wrapped := fmt.Errorf("aggregate: %w", quota)
	assert.False(t, IsTransient(wrapped))
	assert.True(t, IsQuota(wrapped))
}

func TestClassifiersSeeThroughWrapping(t *testing.T) {
	malformed := NewMalformedError(errors.New("missing field"), "")
	assert.True(t, IsMalformed(fmt.Errorf("score: %w", malformed)))
	assert.False(t, IsTransient(malformed))

	incomplete := NewIncompleteError(errors.New("3 examples"), "")
	assert.True(t, IsIncomplete(fmt.Errorf("generate: %w", incomplete)))

	assert.True(t, IsNotFound(fmt.Errorf("delete: %w", ErrNotFound)))
	assert.False(t, IsNotFound(errors.New("something else")))
}

func TestNetworkErrorsAreTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.New("dial tcp: connection refused")))
	assert.True(t, IsTransient(errors.New("context deadline exceeded")))
	assert.False(t, IsTransient(errors.New("invalid request")))
	assert.False(t, IsTransient(nil))
}
