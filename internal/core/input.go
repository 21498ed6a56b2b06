package core

import "fmt"

// Action is a controller intent for one simulation step. The numeric codes are
// the wire values of the discrete action space.
type Action int

const (
	ActionUp    Action = iota // 0
	ActionDown                // 1
	ActionLeft                // 2
	ActionRight               // 3
	ActionNone                // 4 - keep the current heading
)

// NumActions is the size of the discrete action space.
const NumActions = 5

// ValidAction reports whether code is inside the action space.
func ValidAction(code int) bool {
	return code >= 0 && code < NumActions
}

// Direction returns the heading selected by this action.
// ok is false for ActionNone.
func (a Action) Direction() (d Direction, ok bool) {
	if a >= ActionUp && a <= ActionRight {
		return Direction(a), true
	}
	return 0, false
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionNone:
		return "None"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// resolveOrder is the priority used when several direction keys are held.
var resolveOrder = [...]Action{ActionUp, ActionDown, ActionLeft, ActionRight}

// InputFrame collects the direction keys held or pressed since the last poll.
type InputFrame struct {
	// held is indexed by the direction action codes.
	held [4]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{}
}

// Set marks an action as held for this frame. ActionNone and unknown codes are
// ignored.
func (f *InputFrame) Set(a Action) {
	if _, ok := a.Direction(); ok {
		f.held[a] = true
	}
}

// Has returns true if the given action was held this frame.
func (f InputFrame) Has(a Action) bool {
	if _, ok := a.Direction(); !ok {
		return false
	}
	return f.held[a]
}

// Resolve picks the single action to send this poll: up, down, left, right in
// that order, ActionNone if nothing is held.
func (f InputFrame) Resolve() Action {
	for _, a := range resolveOrder {
		if f.held[a] {
			return a
		}
	}
	return ActionNone
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	f.held = [4]bool{}
}
