package types

// TapAction represents a single action in a pointer sequence.
// Uses the W3C pointer action vocabulary (pointerMove, pointerDown, pause, pointerUp).
type TapAction struct {
	Type     string `json:"type" plist:"type"`
	Duration int    `json:"duration,omitempty" plist:"duration,omitempty"`
	X        int    `json:"x,omitempty" plist:"x,omitempty"`
	Y        int    `json:"y,omitempty" plist:"y,omitempty"`
	Button   int    `json:"button,omitempty" plist:"button,omitempty"`
}

// Action types understood by the input converter
const (
	ActionPointerMove = "pointerMove"
	ActionPointerDown = "pointerDown"
	ActionPointerUp   = "pointerUp"
	ActionPause       = "pause"
)

type PointerParameters struct {
	PointerType string `json:"pointerType" plist:"pointerType"`
}

// Pointer is one input source (a finger or the mouse) with its action list.
type Pointer struct {
	Type       string            `json:"type" plist:"type"`
	ID         string            `json:"id" plist:"id"`
	Parameters PointerParameters `json:"parameters" plist:"parameters"`
	Actions    []TapAction       `json:"actions" plist:"actions"`
}

type ActionsRequest struct {
	Actions []Pointer `json:"actions"`
}

// NewTouchPointer returns a touch pointer with the given id and actions
func NewTouchPointer(id string, actions ...TapAction) Pointer {
	return Pointer{
		Type: "pointer",
		ID:   id,
		Parameters: PointerParameters{
			PointerType: "touch",
		},
		Actions: actions,
	}
}
