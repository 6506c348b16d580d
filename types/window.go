package types

// StreamKind identifies one of the two raw event streams.
type StreamKind string

const (
	StreamResize StreamKind = "resize"
	StreamScroll StreamKind = "scroll"
)

// Orientation of the viewport.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// ParseOrientation validates an orientation string.
func ParseOrientation(value string) (Orientation, bool) {
	switch Orientation(value) {
	case OrientationLandscape, OrientationPortrait:
		return Orientation(value), true
	}
	return "", false
}

// OrientationOf derives the orientation from dimensions. Square viewports are landscape.
func OrientationOf(size Size) Orientation {
	if size.Width >= size.Height {
		return OrientationLandscape
	}
	return OrientationPortrait
}

// Size represents width and height dimensions.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point represents a horizontal and vertical offset.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Percent is a scroll progress pair, each axis in [0,100].
type Percent struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WindowState is the last published view of the window.
type WindowState struct {
	Width          int         `json:"width"`
	Height         int         `json:"height"`
	DocumentWidth  int         `json:"documentWidth"`
	DocumentHeight int         `json:"documentHeight"`
	ScrollX        int         `json:"scrollX"`
	ScrollY        int         `json:"scrollY"`
	Orientation    Orientation `json:"orientation,omitempty"`
	IsScrolling    bool        `json:"isScrolling"`
	IsResizing     bool        `json:"isResizing"`
}
