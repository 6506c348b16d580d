package throttle

import (
	"fmt"
	"math"

	"github.com/mobile-next/windowthrottle/types"
)

// computeResize measures the viewport and derives a resize snapshot relative to prior.
func computeResize(m Measurer, prior types.WindowState) (types.ResizeSnapshot, error) {
	size, err := m.MeasureViewport()
	if err != nil {
		return types.ResizeSnapshot{}, fmt.Errorf("%w: viewport: %v", ErrMeasurement, err)
	}

	return types.ResizeSnapshot{
		Changed: types.ChangedFlags{
			Width:  size.Width != prior.Width,
			Height: size.Height != prior.Height,
		},
		Dimensions: size,
		Delta: types.Size{
			Width:  size.Width - prior.Width,
			Height: size.Height - prior.Height,
		},
		Orientation: orientation(m, size),
	}, nil
}

// computeScroll measures scroll offsets and extents and derives a scroll snapshot
// relative to prior. It also returns the measured document size.
func computeScroll(m Measurer, prior types.WindowState) (types.ScrollSnapshot, types.Size, error) {
	position, err := m.MeasureScroll()
	if err != nil {
		return types.ScrollSnapshot{}, types.Size{}, fmt.Errorf("%w: scroll: %v", ErrMeasurement, err)
	}
	document, err := m.MeasureDocument()
	if err != nil {
		return types.ScrollSnapshot{}, types.Size{}, fmt.Errorf("%w: document: %v", ErrMeasurement, err)
	}
	viewport, err := m.MeasureViewport()
	if err != nil {
		return types.ScrollSnapshot{}, types.Size{}, fmt.Errorf("%w: viewport: %v", ErrMeasurement, err)
	}

	snapshot := types.ScrollSnapshot{
		Delta: types.Point{
			X: position.X - prior.ScrollX,
			Y: position.Y - prior.ScrollY,
		},
		Percent: types.Percent{
			X: scrollPercent(position.X, document.Width, viewport.Width),
			Y: scrollPercent(position.Y, document.Height, viewport.Height),
		},
		Position: position,
	}
	return snapshot, document, nil
}

func orientation(m Measurer, size types.Size) types.Orientation {
	if o, ok := m.QueryOrientation(); ok {
		return o
	}
	return types.OrientationOf(size)
}

// scrollPercent is offset / (documentExtent - viewportExtent) * 100, clamped to [0,100].
// A document that does not overflow the viewport is at 0.
func scrollPercent(offset, documentExtent, viewportExtent int) float64 {
	scrollable := documentExtent - viewportExtent
	if scrollable <= 0 {
		return 0
	}
	return clampPercent(float64(offset) / float64(scrollable) * 100)
}

func clampPercent(value float64) float64 {
	switch {
	case math.IsNaN(value), value < 0:
		return 0
	case value > 100:
		return 100
	}
	return value
}
