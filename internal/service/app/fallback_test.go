package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "chain_chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialStopsAtFirstSuccess(t *testing.T) {
	var attempted []string
	policy := &Sequential{}

	err := policy.Do(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, endpoint string) error {
		attempted = append(attempted, endpoint)
		if endpoint == "b" {
			return nil
		}
		return fmt.Errorf("%s unreachable", endpoint)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, attempted)
}

func TestSequentialStopsOnApplicationError(t *testing.T) {
	var attempted []string
	policy := &Sequential{}

	// A node that answered with a validation error is healthy; the other
	// endpoints would only repeat the same answer.
	err := policy.Do(context.Background(), []string{"a", "b"}, func(_ context.Context, endpoint string) error {
		attempted = append(attempted, endpoint)
		return apperrors.ErrMessageNotFound
	})
	require.ErrorIs(t, err, apperrors.ErrMessageNotFound)
	assert.Equal(t, []string{"a"}, attempted)
}

func TestSequentialAllFail(t *testing.T) {
	policy := &Sequential{}
	err := policy.Do(context.Background(), []string{"a", "b"}, func(_ context.Context, endpoint string) error {
		return fmt.Errorf("%s unreachable", endpoint)
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnavailable, apperrors.CodeOf(err))
}

func TestSequentialEmptyEndpointList(t *testing.T) {
	for name, policy := range map[string]FallbackPolicy{
		"sequential": &Sequential{},
		"fanout":     &FanOut{},
	} {
		t.Run(name, func(t *testing.T) {
			err := policy.Do(context.Background(), nil, func(context.Context, string) error {
				t.Fatal("call must not run without endpoints")
				return nil
			})
			require.ErrorIs(t, err, apperrors.ErrUnavailable)
		})
	}
}

func TestFanOutFirstSuccessCancelsRest(t *testing.T) {
	policy := &FanOut{}

	err := policy.Do(context.Background(), []string{"fast", "slow"}, func(ctx context.Context, endpoint string) error {
		if endpoint == "fast" {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return fmt.Errorf("slow endpoint was not cancelled")
		}
	})
	require.NoError(t, err)
}

func TestFanOutDefinitiveErrorWins(t *testing.T) {
	policy := &FanOut{}

	err := policy.Do(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, endpoint string) error {
		if endpoint == "b" {
			return apperrors.ErrUnauthorizedAccess
		}
		return fmt.Errorf("%s unreachable", endpoint)
	})
	require.ErrorIs(t, err, apperrors.ErrUnauthorizedAccess)
}

func TestFanOutAllFail(t *testing.T) {
	policy := &FanOut{}
	var mu sync.Mutex
	attempted := map[string]bool{}

	err := policy.Do(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, endpoint string) error {
		mu.Lock()
		attempted[endpoint] = true
		mu.Unlock()
		return fmt.Errorf("%s unreachable", endpoint)
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnavailable, apperrors.CodeOf(err))
	assert.Len(t, attempted, 3)
}
