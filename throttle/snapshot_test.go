package throttle

import (
	"errors"
	"math"
	"testing"

	"github.com/mobile-next/windowthrottle/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrollPercent(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		document int
		viewport int
		want     float64
	}{
		{"top", 0, 3000, 1000, 0},
		{"middle", 1000, 3000, 1000, 50},
		{"bottom", 2000, 3000, 1000, 100},
		{"overscroll clamps high", 2500, 3000, 1000, 100},
		{"negative offset clamps low", -40, 3000, 1000, 0},
		{"document equals viewport", 0, 1000, 1000, 0},
		{"document shrank below viewport", 300, 800, 1000, 0},
		{"empty document", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scrollPercent(tt.offset, tt.document, tt.viewport)
			assert.False(t, math.IsNaN(got))
			assert.False(t, math.IsInf(got, 0))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0.0, clampPercent(math.NaN()))
	assert.Equal(t, 0.0, clampPercent(math.Inf(-1)))
	assert.Equal(t, 100.0, clampPercent(math.Inf(1)))
	assert.Equal(t, 42.5, clampPercent(42.5))
}

type stubMeasurer struct {
	viewport    types.Size
	document    types.Size
	scroll      types.Point
	orientation types.Orientation
	err         error
}

func (s stubMeasurer) MeasureViewport() (types.Size, error) { return s.viewport, s.err }
func (s stubMeasurer) MeasureDocument() (types.Size, error) { return s.document, nil }
func (s stubMeasurer) MeasureScroll() (types.Point, error)  { return s.scroll, nil }
func (s stubMeasurer) QueryOrientation() (types.Orientation, bool) {
	return s.orientation, s.orientation != ""
}

func TestComputeResize(t *testing.T) {
	prior := types.WindowState{Width: 1000, Height: 800}

	tests := []struct {
		name     string
		measurer stubMeasurer
		want     types.ResizeSnapshot
	}{
		{
			name:     "grow both",
			measurer: stubMeasurer{viewport: types.Size{Width: 1200, Height: 900}},
			want: types.ResizeSnapshot{
				Changed:     types.ChangedFlags{Width: true, Height: true},
				Dimensions:  types.Size{Width: 1200, Height: 900},
				Delta:       types.Size{Width: 200, Height: 100},
				Orientation: types.OrientationLandscape,
			},
		},
		{
			name:     "shrink width to portrait",
			measurer: stubMeasurer{viewport: types.Size{Width: 600, Height: 800}},
			want: types.ResizeSnapshot{
				Changed:     types.ChangedFlags{Width: true},
				Dimensions:  types.Size{Width: 600, Height: 800},
				Delta:       types.Size{Width: -400},
				Orientation: types.OrientationPortrait,
			},
		},
		{
			name:     "square is landscape",
			measurer: stubMeasurer{viewport: types.Size{Width: 800, Height: 800}},
			want: types.ResizeSnapshot{
				Changed:     types.ChangedFlags{Width: true},
				Dimensions:  types.Size{Width: 800, Height: 800},
				Delta:       types.Size{Width: -200},
				Orientation: types.OrientationLandscape,
			},
		},
		{
			name:     "capability overrides dimensions",
			measurer: stubMeasurer{viewport: types.Size{Width: 1000, Height: 800}, orientation: types.OrientationPortrait},
			want: types.ResizeSnapshot{
				Dimensions:  types.Size{Width: 1000, Height: 800},
				Orientation: types.OrientationPortrait,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := computeResize(tt.measurer, prior)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeResize_MeasurementError(t *testing.T) {
	_, err := computeResize(stubMeasurer{err: errors.New("detached")}, types.WindowState{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMeasurement))
	assert.Contains(t, err.Error(), "detached")
}

func TestComputeScroll(t *testing.T) {
	prior := types.WindowState{ScrollX: 100, ScrollY: 900}
	m := stubMeasurer{
		viewport: types.Size{Width: 1000, Height: 800},
		document: types.Size{Width: 1500, Height: 2800},
		scroll:   types.Point{X: 50, Y: 1000},
	}

	got, document, err := computeScroll(m, prior)
	require.NoError(t, err)
	assert.Equal(t, types.Size{Width: 1500, Height: 2800}, document)
	assert.Equal(t, types.ScrollSnapshot{
		Delta:    types.Point{X: -50, Y: 100},
		Percent:  types.Percent{X: 10, Y: 50},
		Position: types.Point{X: 50, Y: 1000},
	}, got)
}
