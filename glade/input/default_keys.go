package input

import "github.com/valerio/go-glade/glade/input/action"

// DefaultKeyMap provides default key mappings that work across backends.
// Backends can use these mappings as a base and override/extend as needed.
var DefaultKeyMap = map[string]action.Action{
	// Game controls
	"Up":    action.ButtonUp,
	"Down":  action.ButtonDown,
	"Left":  action.ButtonLeft,
	"Right": action.ButtonRight,
	"z":     action.ButtonA,
	"x":     action.ButtonB,
	"Enter": action.ButtonStart,

	// Alternative arrow keys (WASD)
	"w": action.ButtonUp,
	"s": action.ButtonDown,
	"a": action.ButtonLeft,
	"d": action.ButtonRight,

	// Engine controls
	"Space":  action.EnginePauseToggle,
	"p":      action.EnginePauseToggle,
	"o":      action.EngineStepFrame,
	"F9":     action.EngineSnapshot,
	"F12":    action.EngineSnapshot,
	"F10":    action.EngineProfileToggle,
	"Escape": action.EngineQuit,
	"q":      action.EngineQuit,
}

// GetDefaultMapping returns the default action for a key, if one exists
func GetDefaultMapping(key string) (action.Action, bool) {
	act, ok := DefaultKeyMap[key]
	return act, ok
}
