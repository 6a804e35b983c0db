package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassString(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.class.String())
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"malformed descriptor is invalid", ErrMalformedDescriptor, ErrorInvalid},
		{"malformed relation is invalid", ErrMalformedRelation, ErrorInvalid},
		{"malformed fact is invalid", ErrMalformedFact, ErrorInvalid},
		{"cyclic plan is fatal", ErrCyclicPlan, ErrorFatal},
		{"invalid config is fatal", ErrInvalidConfig, ErrorFatal},
		{"store unavailable is transient", ErrStoreUnavailable, ErrorTransient},
		{"deadline exceeded is transient", context.DeadlineExceeded, ErrorTransient},
		{"wrapped sentinel keeps class", fmt.Errorf("build: %w", ErrMalformedDescriptor), ErrorInvalid},
		{"unknown defaults to transient", errors.New("something odd"), ErrorTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestWrapHelpers(t *testing.T) {
	base := errors.New("boom")

	wrapped := WrapInvalid(base, "GraphIndex", "Build", "validate descriptor")
	require.Error(t, wrapped)
	assert.True(t, IsInvalid(wrapped))
	assert.False(t, IsTransient(wrapped))
	assert.ErrorIs(t, wrapped, base)
	assert.Contains(t, wrapped.Error(), "GraphIndex.Build: validate descriptor failed")

	assert.NoError(t, Wrap(nil, "a", "b", "c"))
	assert.NoError(t, WrapTransient(nil, "a", "b", "c"))
	assert.NoError(t, WrapFatal(nil, "a", "b", "c"))
	assert.NoError(t, WrapInvalid(nil, "a", "b", "c"))
}

func TestNoRouteError(t *testing.T) {
	err := NewNoRouteError("http://onto.example/Z", []string{"http://onto.example/Y", "http://onto.example/X"})

	assert.ErrorIs(t, err, ErrNoRouteFound)
	// Snapshot is sorted for stable log output.
	assert.Equal(t, []string{"http://onto.example/X", "http://onto.example/Y"}, err.Available)
	assert.Contains(t, err.Error(), `"http://onto.example/Z"`)
	assert.Contains(t, err.Error(), "http://onto.example/X, http://onto.example/Y")
}

func TestRetryConfig(t *testing.T) {
	rc := DefaultRetryConfig()
	assert.Equal(t, 3, rc.MaxRetries)

	assert.True(t, rc.ShouldRetry(ErrStoreUnavailable, 0))
	assert.False(t, rc.ShouldRetry(ErrStoreUnavailable, 3))
	assert.False(t, rc.ShouldRetry(ErrMalformedFact, 0))
	assert.False(t, rc.ShouldRetry(nil, 0))

	cfg := rc.ToRetryConfig()
	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.InitialDelay)
	assert.True(t, cfg.AddJitter)
}
