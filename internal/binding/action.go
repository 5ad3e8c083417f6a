// Package binding defines keybindings and the actions they trigger.
package binding

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is reported for keybinding types that do not exist.
var ErrUnknownAction = errors.New("unknown keybinding type")

// Direction is a cardinal direction for focus, swap and resize.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

var directionNames = map[Direction]string{Left: "Left", Right: "Right", Up: "Up", Down: "Down"}

func (d Direction) String() string { return directionNames[d] }

// ParseDirection accepts Left, Right, Up or Down in any case.
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if strings.EqualFold(s, name) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid direction %q", s)
}

// SplitDirection is the axis of a tile split.
type SplitDirection int

const (
	Horizontal SplitDirection = iota
	Vertical
)

func (d SplitDirection) String() string {
	if d == Vertical {
		return "Vertical"
	}
	return "Horizontal"
}

// ParseSplitDirection accepts Horizontal or Vertical in any case.
func ParseSplitDirection(s string) (SplitDirection, error) {
	switch strings.ToLower(s) {
	case "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	}
	return 0, fmt.Errorf("invalid split direction %q", s)
}

// Kind tags an Action variant.
type Kind int

const (
	Launch Kind = iota + 1
	CloseTile
	IgnoreTile
	MinimizeTile
	ResetRow
	ResetColumn
	Quit
	ChangeWorkspace
	MoveToWorkspace
	MoveWorkspaceToMonitor
	ToggleFloatingMode
	ToggleFullscreen
	ToggleWorkMode
	IncrementConfig
	DecrementConfig
	ToggleConfig
	Focus
	Resize
	Swap
	Split
	Callback
)

var kindNames = map[Kind]string{
	Launch:                 "Launch",
	CloseTile:              "CloseTile",
	IgnoreTile:             "IgnoreTile",
	MinimizeTile:           "MinimizeTile",
	ResetRow:               "ResetRow",
	ResetColumn:            "ResetColumn",
	Quit:                   "Quit",
	ChangeWorkspace:        "ChangeWorkspace",
	MoveToWorkspace:        "MoveToWorkspace",
	MoveWorkspaceToMonitor: "MoveWorkspaceToMonitor",
	ToggleFloatingMode:     "ToggleFloatingMode",
	ToggleFullscreen:       "ToggleFullscreen",
	ToggleWorkMode:         "ToggleWorkMode",
	IncrementConfig:        "IncrementConfig",
	DecrementConfig:        "DecrementConfig",
	ToggleConfig:           "ToggleConfig",
	Focus:                  "Focus",
	Resize:                 "Resize",
	Swap:                   "Swap",
	Split:                  "Split",
	Callback:               "Callback",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a configuration type name to its Kind. Callback is not
// accepted here because callbacks only exist in scripts.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s && k != Callback {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownAction, s)
}

// Action is one variant of the closed set of things a keybinding can do.
// Only the fields relevant to Kind are meaningful.
type Action struct {
	Kind      Kind
	Command   string
	ID        int32
	Monitor   int32
	Field     string
	Value     int32
	Direction Direction
	Split     SplitDirection
	Amount    int32
	// CallbackID refers to a function held by the script engine.
	CallbackID int
}

func (a Action) String() string {
	switch a.Kind {
	case Launch:
		return fmt.Sprintf("Launch(%s)", a.Command)
	case ChangeWorkspace, MoveToWorkspace:
		return fmt.Sprintf("%s(%d)", a.Kind, a.ID)
	case MoveWorkspaceToMonitor:
		return fmt.Sprintf("%s(%d)", a.Kind, a.Monitor)
	case IncrementConfig, DecrementConfig:
		return fmt.Sprintf("%s(%s, %d)", a.Kind, a.Field, a.Value)
	case ToggleConfig:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Field)
	case Focus, Swap:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Direction)
	case Resize:
		return fmt.Sprintf("%s(%s, %d)", a.Kind, a.Direction, a.Amount)
	case Split:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Split)
	case Callback:
		return fmt.Sprintf("%s(%d)", a.Kind, a.CallbackID)
	}
	return a.Kind.String()
}

// Keybinding associates a key chord with an action.
type Keybinding struct {
	Chord  Chord
	Action Action
}

// Dedupe keeps one binding per chord. A later binding for the same chord
// replaces the earlier one but keeps the earlier position.
func Dedupe(bindings []Keybinding) []Keybinding {
	index := make(map[string]int, len(bindings))
	out := make([]Keybinding, 0, len(bindings))
	for _, kb := range bindings {
		key := kb.Chord.String()
		if i, ok := index[key]; ok {
			out[i] = kb
			continue
		}
		index[key] = len(out)
		out = append(out, kb)
	}
	return out
}
