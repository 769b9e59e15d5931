package vkbd

import (
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robottwo/typeahead/pkg/keyboard"
)

// Raw codes and names for keys the layout does not draw.
const (
	codePageUp     = 33
	codePageDown   = 34
	codeEnd        = 35
	codeHome       = 36
	codeArrowLeft  = 37
	codeArrowUp    = 38
	codeArrowRight = 39
	codeArrowDown  = 40

	nameUnidentified = "Unidentified"
)

var (
	shiftEvent   = keyboard.Event{Code: 16, Key: keyboard.NameShift}
	controlEvent = keyboard.Event{Code: 17, Key: keyboard.NameControl}
	altEvent     = keyboard.Event{Code: 18, Key: keyboard.NameAlt}
)

// stroke is one chord. Its events go down in order and come up in reverse.
type stroke []keyboard.Event

var namedKeys = map[tea.KeyType]keyboard.Event{
	tea.KeyEnter:     {Code: 13, Key: keyboard.NameEnter},
	tea.KeyCtrlJ:     {Code: 13, Key: keyboard.NameEnter},
	tea.KeyBackspace: {Code: 8, Key: keyboard.NameBackspace},
	tea.KeyCtrlH:     {Code: 8, Key: keyboard.NameBackspace},
	tea.KeyTab:       {Code: 9, Key: keyboard.NameTab},
	tea.KeyDelete:    {Code: 46, Key: keyboard.NameDelete},
	tea.KeyLeft:      {Code: codeArrowLeft, Key: "ArrowLeft"},
	tea.KeyUp:        {Code: codeArrowUp, Key: "ArrowUp"},
	tea.KeyRight:     {Code: codeArrowRight, Key: "ArrowRight"},
	tea.KeyDown:      {Code: codeArrowDown, Key: "ArrowDown"},
	tea.KeyHome:      {Code: codeHome, Key: "Home"},
	tea.KeyEnd:       {Code: codeEnd, Key: "End"},
	tea.KeyPgUp:      {Code: codePageUp, Key: "PageUp"},
	tea.KeyPgDown:    {Code: codePageDown, Key: "PageDown"},
}

// translateKey maps a terminal key message to the chords it stands for.
// capsLock is needed to tell whether an upper-case letter was typed with
// Shift held.
func translateKey(msg tea.KeyMsg, capsLock bool) []stroke {
	var strokes []stroke

	switch {
	case msg.Type == tea.KeyRunes:
		for _, r := range msg.Runes {
			strokes = append(strokes, runeStroke(r, capsLock))
		}
	case msg.Type == tea.KeySpace:
		strokes = append(strokes, runeStroke(' ', capsLock))
	case msg.Type == tea.KeyShiftTab:
		strokes = append(strokes, stroke{shiftEvent, namedKeys[tea.KeyTab]})
	case msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ && !isNamed(msg.Type):
		// The letter is drawn pressed but types nothing.
		letter := keyboard.Event{Code: 'A' + int(msg.Type-tea.KeyCtrlA), Key: nameUnidentified}
		strokes = append(strokes, stroke{controlEvent, letter})
	default:
		ev, ok := namedKeys[msg.Type]
		if !ok {
			ev = keyboard.Event{Key: nameUnidentified}
		}
		strokes = append(strokes, stroke{ev})
	}

	if msg.Alt && !msg.Paste {
		for i, s := range strokes {
			strokes[i] = append(stroke{altEvent}, s...)
		}
	}
	return strokes
}

func isNamed(t tea.KeyType) bool {
	_, ok := namedKeys[t]
	return ok
}

// runeStroke finds the key that types r. Printable characters that are not on
// the layout yield an event with no key code, which the keyboard ignores;
// anything else yields an event without a key name.
func runeStroke(r rune, capsLock bool) stroke {
	switch r {
	case '\n', '\r':
		return stroke{namedKeys[tea.KeyEnter]}
	case '\t':
		return stroke{namedKeys[tea.KeyTab]}
	}

	char := string(r)
	key, shifted, ok := keyboard.KeyForChar(char)
	if !ok {
		if unicode.IsPrint(r) {
			return stroke{{Key: char}}
		}
		return stroke{{}}
	}

	ev := keyboard.Event{Code: key.Code(), Key: char}
	needShift := shifted
	if key.Letter() {
		// caps lock inverts what Shift does to letters
		needShift = shifted != capsLock
	}
	if needShift {
		return stroke{shiftEvent, ev}
	}
	return stroke{ev}
}

// clearAllStroke is Shift held over Backspace.
func clearAllStroke() stroke {
	return stroke{shiftEvent, namedKeys[tea.KeyBackspace]}
}

// releases returns the key-ups for s, last pressed first.
func (s stroke) releases() []keyboard.Event {
	ups := make([]keyboard.Event, 0, len(s))
	for i := len(s) - 1; i >= 0; i-- {
		ups = append(ups, s[i])
	}
	return ups
}
