package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	apperrors "chain_chat/pkg/errors"
)

type (
	// FallbackPolicy decides how a read is spread across the ranked
	// endpoint list. Reads are pure and idempotent, so policies are free
	// to attempt several endpoints and keep the first success.
	FallbackPolicy interface {
		Do(ctx context.Context, endpoints []string, call func(ctx context.Context, endpoint string) error) error
	}

	// Sequential walks the endpoints in ranked order and stops at the
	// first success.
	Sequential struct{}

	// FanOut tries every endpoint at once, keeps the first success and
	// cancels the rest.
	FanOut struct{}
)

func (p *Sequential) Do(ctx context.Context, endpoints []string, call func(ctx context.Context, endpoint string) error) error {
	if len(endpoints) == 0 {
		return apperrors.ErrUnavailable
	}

	var lastErr error
	for _, endpoint := range endpoints {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := call(ctx, endpoint); err != nil {
			// Application errors are definitive answers from a healthy
			// node; trying the next endpoint would just repeat them.
			if apperrors.CodeOf(err) != apperrors.CodeUnknown {
				return err
			}
			lastErr = err
			continue
		}
		return nil
	}
	return apperrors.Wrap(apperrors.CodeUnavailable, "all endpoints failed", lastErr)
}

func (p *FanOut) Do(ctx context.Context, endpoints []string, call func(ctx context.Context, endpoint string) error) error {
	if len(endpoints) == 0 {
		return apperrors.ErrUnavailable
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan error, len(endpoints))
	for _, endpoint := range endpoints {
		wg.Add(1)
		go func(endpoint string) {
			defer wg.Done()
			results <- call(ctx, endpoint)
		}(endpoint)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var lastErr error
	for err := range results {
		if err == nil {
			cancel() // discard the slower attempts
			return nil
		}
		// Ignore cancellation noise from attempts we abandoned.
		if !errors.Is(err, context.Canceled) {
			if apperrors.CodeOf(err) != apperrors.CodeUnknown {
				// Drain remaining attempts before returning the
				// definitive application error.
				cancel()
				for range results {
				}
				return err
			}
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("all attempts cancelled")
	}
	return apperrors.Wrap(apperrors.CodeUnavailable, "all endpoints failed", lastErr)
}
