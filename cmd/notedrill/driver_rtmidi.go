//go:build !nortmidi

package main

// Registers the RtMidi backend with gomidi. Build with -tags nortmidi to
// drop the cgo dependency; MIDI ports will then be unavailable.
import _ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
