package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/notedrill/internal/notes"
)

type keyMap struct {
	Notes  key.Binding
	Replay key.Binding
	Quit   key.Binding
}

func newKeyMap(km notes.KeyMap, scale notes.Scale) keyMap {
	keys := make([]string, 0, len(scale))
	for _, n := range scale {
		if k, ok := km.KeyFor(n); ok {
			keys = append(keys, k)
		}
	}
	return keyMap{
		Notes: key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, " "), "answer"),
		),
		Replay: key.NewBinding(
			key.WithKeys("r", " "),
			key.WithHelp("r/space", "play again"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Notes, k.Replay, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
