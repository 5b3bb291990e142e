package action

// Action represents input actions that can be performed in a game
type Action int

const (
	// Game controls
	ButtonUp Action = iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonA
	ButtonB
	ButtonStart

	// Engine features
	EngineSnapshot
	EnginePauseToggle
	EngineStepFrame
	EngineProfileToggle
	EngineQuit

	actionCount
)

// Count is the number of defined actions.
const Count = int(actionCount)

// IsGameInput reports whether the action is a game control, as opposed to
// an engine feature. Game controls track held state and are not debounced.
func (a Action) IsGameInput() bool {
	return a >= ButtonUp && a <= ButtonStart
}

// IsDirection reports whether the action is one of the four directions.
func (a Action) IsDirection() bool {
	return a >= ButtonUp && a <= ButtonRight
}

var names = [...]string{
	ButtonUp:            "Up",
	ButtonDown:          "Down",
	ButtonLeft:          "Left",
	ButtonRight:         "Right",
	ButtonA:             "A",
	ButtonB:             "B",
	ButtonStart:         "Start",
	EngineSnapshot:      "Snapshot",
	EnginePauseToggle:   "Pause",
	EngineStepFrame:     "Step frame",
	EngineProfileToggle: "Profile",
	EngineQuit:          "Quit",
}

func (a Action) String() string {
	if a >= 0 && int(a) < len(names) {
		return names[a]
	}
	return "Unknown"
}
