package notes

// Home row first, then the row above, so a seven-note scale sits under
// the fingers the way it does on a piano. "r" and space replay the target
// and are never bound to notes.
var qwertyKeys = []string{"a", "s", "d", "f", "g", "h", "j", "k", "l", ";", "q", "w", "e", "t", "y", "u", "i", "o", "p"}

// KeyMap binds keyboard keys to notes.
type KeyMap map[string]Note

// BindKeys maps keys to scale notes in canonical order. Notes beyond the
// available keys are left unbound.
func BindKeys(s Scale) KeyMap {
	km := make(KeyMap, len(s))
	for i, n := range s {
		if i >= len(qwertyKeys) {
			break
		}
		km[qwertyKeys[i]] = n
	}
	return km
}

// KeyFor returns the key bound to n, if any.
func (km KeyMap) KeyFor(n Note) (string, bool) {
	for k, bound := range km {
		if bound.MIDI == n.MIDI {
			return k, true
		}
	}
	return "", false
}
