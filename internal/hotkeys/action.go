package hotkeys

import (
	"fmt"
	"strings"
)

// ActionKind is what a bound chord does.
type ActionKind int

const (
	// ActionApply arranges windows with Action.Layout, or the active layout
	// when Layout is empty.
	ActionApply ActionKind = iota
	ActionUndo
	ActionCycle
	// ActionMenu lets the user pick one of the other actions from a
	// launcher menu.
	ActionMenu
)

// Action is a parsed hotkey action string.
type Action struct {
	Kind   ActionKind
	Layout string
	// Delta is +1 or -1 for ActionCycle.
	Delta int
}

// ParseAction parses the action strings accepted in the hotkeys config:
//
//	organize                  apply the active layout
//	undo | layout undo        restore pre-arrangement placements
//	<name> | layout apply <n> apply a named layout
//	layout cycle [next|prev]  switch the active layout and apply it
//	menu                      choose an action from a launcher menu
func ParseAction(s string) (Action, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return Action{}, fmt.Errorf("empty action")
	}
	if fields[0] == "layout" {
		fields = fields[1:]
		if len(fields) == 0 {
			return Action{}, fmt.Errorf("invalid action %q: missing layout command", s)
		}
	}

	switch fields[0] {
	case "organize":
		if len(fields) != 1 {
			break
		}
		return Action{Kind: ActionApply}, nil
	case "menu":
		if len(fields) != 1 {
			break
		}
		return Action{Kind: ActionMenu}, nil
	case "undo":
		if len(fields) != 1 {
			break
		}
		return Action{Kind: ActionUndo}, nil
	case "apply":
		if len(fields) != 2 {
			return Action{}, fmt.Errorf("invalid action %q: expected \"layout apply <name>\"", s)
		}
		return Action{Kind: ActionApply, Layout: fields[1]}, nil
	case "cycle":
		switch {
		case len(fields) == 1, len(fields) == 2 && fields[1] == "next":
			return Action{Kind: ActionCycle, Delta: 1}, nil
		case len(fields) == 2 && fields[1] == "prev":
			return Action{Kind: ActionCycle, Delta: -1}, nil
		}
		return Action{}, fmt.Errorf("invalid action %q: cycle direction must be next or prev", s)
	default:
		if len(fields) == 1 {
			return Action{Kind: ActionApply, Layout: fields[0]}, nil
		}
	}
	return Action{}, fmt.Errorf("invalid action %q", s)
}

func (a Action) String() string {
	switch a.Kind {
	case ActionUndo:
		return "layout undo"
	case ActionMenu:
		return "menu"
	case ActionCycle:
		if a.Delta < 0 {
			return "layout cycle prev"
		}
		return "layout cycle next"
	}
	if a.Layout == "" {
		return "organize"
	}
	return "layout apply " + a.Layout
}
