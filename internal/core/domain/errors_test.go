package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("reassign endpoint: %w", &RemoteError{StatusCode: 409, Message: "endpoint busy"})

	assert.ErrorIs(t, err, ErrRemoteRejected)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 409, remote.StatusCode)
	assert.Equal(t, "endpoint busy", remote.Message)
}

func TestRemoteError_DoesNotMatchOtherSentinels(t *testing.T) {
	err := &RemoteError{StatusCode: 500, Message: "boom"}

	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrCredentialMissing, ErrCredentialExpired, ErrStorageUnavailable,
		ErrUnauthorized, ErrTimeout, ErrUnreachable, ErrMalformedResponse,
		ErrRemoteRejected, ErrBusy, ErrWorkerClosed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}
