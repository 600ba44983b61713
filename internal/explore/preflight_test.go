package explore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikelab/optionscan/internal/contracts"
	"github.com/strikelab/optionscan/pkg/logger"
)

func TestPreflight_FiltersToWindow(t *testing.T) {
	source := &fakeSource{
		expirations: []time.Time{expAt(7), expAt(35), expAt(49), expAt(120)},
	}
	stage := NewPreflight(source, logger.NewNop())

	window := contracts.DTEWindow{Min: 30, Max: 60, Target: 45}
	result, err := stage.Preflight(context.Background(), "TEST", window, testAsOf)
	require.NoError(t, err)

	assert.True(t, result.Viable)
	assert.Equal(t, []time.Time{expAt(35), expAt(49)}, result.Expirations)
	assert.Empty(t, source.chainCalls, "preflight must never fetch a chain")
}

func TestPreflight_NoViableExpirations(t *testing.T) {
	source := &fakeSource{
		expirations: []time.Time{expAt(7), expAt(400)},
	}
	stage := NewPreflight(source, logger.NewNop())

	window := contracts.DTEWindow{Min: 30, Max: 60, Target: 45}
	result, err := stage.Preflight(context.Background(), "TEST", window, testAsOf)
	require.NoError(t, err)

	assert.False(t, result.Viable)
	assert.Contains(t, result.Reason, "30-60 DTE")
	assert.Empty(t, result.Expirations)
}

func TestPreflight_EmptyListing(t *testing.T) {
	source := &fakeSource{}
	stage := NewPreflight(source, logger.NewNop())

	result, err := stage.Preflight(context.Background(), "TEST",
		contracts.DTEWindow{Min: 30, Max: 60, Target: 45}, testAsOf)
	require.NoError(t, err)

	assert.False(t, result.Viable, "zero listed expirations is non-viable, not an error")
}

func TestPreflight_ProviderErrorSurfaces(t *testing.T) {
	boom := errors.New("listing failed")
	source := &fakeSource{listErr: boom}
	stage := NewPreflight(source, logger.NewNop())

	_, err := stage.Preflight(context.Background(), "TEST",
		contracts.DTEWindow{Min: 30, Max: 60, Target: 45}, testAsOf)
	require.ErrorIs(t, err, boom, "provider errors pass through for classification")
}
