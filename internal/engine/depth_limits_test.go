package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/kindred/internal/storage"
)

func TestDepthLimits_Resolve(t *testing.T) {
	l := ClassifyLimits()

	d, err := l.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, d)

	d, err = l.Resolve(intPtr(6))
	require.NoError(t, err)
	assert.Equal(t, 6, d)

	for _, bad := range []int{0, -1, 7, 100} {
		_, err := l.Resolve(intPtr(bad))
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, ErrInvalidDepth), bad)
		assert.True(t, errors.Is(err, storage.ErrInvalidInput), bad)
	}
}

func TestDepthLimits_ResolveDefaults(t *testing.T) {
	l := ResolveLimits()
	d, err := l.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, 10, d)

	_, err = l.Resolve(intPtr(16))
	assert.ErrorIs(t, err, ErrInvalidDepth)
}

func TestDepthLimits_Normalize(t *testing.T) {
	tests := []struct {
		in   DepthLimits
		want DepthLimits
	}{
		{DepthLimits{}, DepthLimits{Default: 10, Ceiling: 15}},
		{DepthLimits{Default: 4, Ceiling: 8}, DepthLimits{Default: 4, Ceiling: 8}},
		{DepthLimits{Default: 4, Ceiling: 99}, DepthLimits{Default: 4, Ceiling: 15}},
		{DepthLimits{Default: 12, Ceiling: 8}, DepthLimits{Default: 8, Ceiling: 8}},
		{DepthLimits{Default: -3, Ceiling: 5}, DepthLimits{Default: 5, Ceiling: 5}},
	}
	for _, tt := range tests {
		got := tt.in
		got.Normalize(ResolveLimits())
		assert.Equal(t, tt.want, got, "%+v", tt.in)
	}
}
