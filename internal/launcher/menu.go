package launcher

import (
	"fmt"

	"github.com/1broseidon/wintile/internal/hotkeys"
)

// LayoutMenu returns the arrange menu: one entry per layout followed by
// the organize, cycle and undo actions. Each Action is a hotkey action
// string.
func LayoutMenu(layouts []string, active string) []Entry {
	entries := []Entry{{Label: "Layouts", Header: true}}
	for _, name := range layouts {
		entries = append(entries, Entry{
			Label:  "Apply " + name,
			Action: hotkeys.Action{Kind: hotkeys.ActionApply, Layout: name}.String(),
			Icon:   "view-grid",
			Active: name == active,
		})
	}
	entries = append(entries,
		Entry{Label: "Actions", Header: true},
		Entry{Label: fmt.Sprintf("Organize (%s)", active), Action: hotkeys.Action{Kind: hotkeys.ActionApply}.String(), Icon: "view-restore"},
		Entry{Label: "Next layout", Action: hotkeys.Action{Kind: hotkeys.ActionCycle, Delta: 1}.String(), Icon: "go-next"},
		Entry{Label: "Previous layout", Action: hotkeys.Action{Kind: hotkeys.ActionCycle, Delta: -1}.String(), Icon: "go-previous"},
		Entry{Label: "Undo", Action: hotkeys.Action{Kind: hotkeys.ActionUndo}.String(), Icon: "edit-undo"},
	)
	return entries
}

// Pick shows the layout menu and returns the chosen action.
func Pick(c Chooser, layouts []string, active string) (hotkeys.Action, error) {
	e, err := c.Choose("wintile", LayoutMenu(layouts, active))
	if err != nil {
		return hotkeys.Action{}, err
	}
	return hotkeys.ParseAction(e.Action)
}
