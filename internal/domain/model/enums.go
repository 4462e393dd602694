package model

// InteractionKind identifies a user interaction that counts as activity.
type InteractionKind string

const (
	InteractionClick      InteractionKind = "click"
	InteractionKeyDown    InteractionKind = "keydown"
	InteractionMouseMove  InteractionKind = "mousemove"
	InteractionScroll     InteractionKind = "scroll"
	InteractionTouchStart InteractionKind = "touchstart"
)

// InteractionKinds lists every interaction the activity listener observes.
var InteractionKinds = []InteractionKind{
	InteractionClick,
	InteractionKeyDown,
	InteractionMouseMove,
	InteractionScroll,
	InteractionTouchStart,
}

// ParseInteractionKind maps a browser event name onto an InteractionKind.
func ParseInteractionKind(s string) (InteractionKind, bool) {
	for _, k := range InteractionKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}
