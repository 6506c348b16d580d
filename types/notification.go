package types

// EventName is the name of a published notification.
type EventName string

const (
	EventResize    EventName = "resize"
	EventResizeEnd EventName = "resizeEnd"
	EventScroll    EventName = "scroll"
	EventScrollEnd EventName = "scrollEnd"
)

// ParseEventName validates a notification name.
func ParseEventName(value string) (EventName, bool) {
	switch EventName(value) {
	case EventResize, EventResizeEnd, EventScroll, EventScrollEnd:
		return EventName(value), true
	}
	return "", false
}

// ChangedFlags tells which dimensions differ from the previous snapshot.
type ChangedFlags struct {
	Width  bool `json:"width"`
	Height bool `json:"height"`
}

// ResizeSnapshot is the payload of resize and resizeEnd notifications.
type ResizeSnapshot struct {
	Changed     ChangedFlags `json:"changed"`
	Dimensions  Size         `json:"dimensions"`
	Delta       Size         `json:"delta"`
	Orientation Orientation  `json:"orientation"`
}

// ScrollSnapshot is the payload of scroll and scrollEnd notifications.
type ScrollSnapshot struct {
	Delta    Point   `json:"delta"`
	Percent  Percent `json:"percent"`
	Position Point   `json:"position"`
}

// Notification is a single published event. Exactly one of Resize or Scroll is set.
type Notification struct {
	Name   EventName       `json:"name"`
	Resize *ResizeSnapshot `json:"resize,omitempty"`
	Scroll *ScrollSnapshot `json:"scroll,omitempty"`
}
