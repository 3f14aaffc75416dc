package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStyle_KindMapping verifies every style maps to its tag.
func TestStyle_KindMapping(t *testing.T) {
	tests := []struct {
		style Style
		want  Kind
	}{
		{LineStyle{}, KindLine},
		{AreaStyle{}, KindArea},
		{BarStyle{}, KindBar},
		{PieStyle{}, KindPie},
		{ScatterStyle{}, KindScatter},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.style.Kind())
	}
}

// TestValidateStyle covers kind-specific constraints and the nil guard.
func TestValidateStyle(t *testing.T) {
	assert.NoError(t, ValidateStyle(LineStyle{StrokeWidth: 2}))
	assert.NoError(t, ValidateStyle(AreaStyle{Opacity: 0.5}))
	assert.NoError(t, ValidateStyle(PieStyle{InnerRadius: 0.6}))

	assert.Error(t, ValidateStyle(nil))
	assert.Error(t, ValidateStyle(LineStyle{StrokeWidth: -1}))
	assert.Error(t, ValidateStyle(AreaStyle{Opacity: 1.5}))
	assert.Error(t, ValidateStyle(PieStyle{InnerRadius: 1}))
	assert.Error(t, ValidateStyle(BarStyle{BarGap: -2}))
	assert.Error(t, ValidateStyle(ScatterStyle{PointSize: -1}))
}

// TestStyleFor verifies round-tripping tags and rejecting unknown kinds.
func TestStyleFor(t *testing.T) {
	for _, kind := range []Kind{KindLine, KindArea, KindBar, KindPie, KindScatter} {
		s, err := StyleFor(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, s.Kind())
	}

	_, err := StyleFor("sparkline")
	assert.Error(t, err)
}
