package keyboard

import (
	"fmt"
	"strings"
	"unicode"
)

// KeyID is the canonical identity of one drawn key. Several raw key codes may
// resolve to the same KeyID (left/right Shift, numpad minus, ...).
type KeyID string

const (
	KeyBackquote    KeyID = "backquote"
	KeyMinus        KeyID = "minus"
	KeyEqual        KeyID = "equal"
	KeyBackspace    KeyID = "backspace"
	KeyTab          KeyID = "tab"
	KeyBracketLeft  KeyID = "bracketleft"
	KeyBracketRight KeyID = "bracketright"
	KeyBackslash    KeyID = "backslash"
	KeyCapsLock     KeyID = "capslock"
	KeySemicolon    KeyID = "semicolon"
	KeyQuote        KeyID = "quote"
	KeyEnter        KeyID = "enter"
	KeyShift        KeyID = "shift"
	KeyComma        KeyID = "comma"
	KeyPeriod       KeyID = "period"
	KeySlash        KeyID = "slash"
	KeyDelete       KeyID = "delete"
	KeyCtrl         KeyID = "ctrl"
	KeyMeta         KeyID = "meta"
	KeyAlt          KeyID = "alt"
	KeySpace        KeyID = "space"
)

// Symbolic key names as reported by the host for non-printing keys.
const (
	NameBackspace = "Backspace"
	NameTab       = "Tab"
	NameCapsLock  = "CapsLock"
	NameEnter     = "Enter"
	NameShift     = "Shift"
	NameDelete    = "Delete"
	NameControl   = "Control"
	NameMeta      = "Meta"
	NameAlt       = "Alt"
)

// Key is one immutable entry of the static layout.
type Key struct {
	ID    KeyID
	Label string
	// Name is the symbolic key name the host reports for this key when no
	// modifier is applied. For printing keys it equals Char.
	Name string
	// Char is the produced character, empty for non-printing keys.
	Char string
	// Codes are the raw numeric key codes that resolve to this key. The first
	// one is used when synthesizing events.
	Codes []int
	// Width is the key-cap width in terminal cells.
	Width int
}

// Printing reports whether the key produces a character.
func (k Key) Printing() bool {
	return k.Char != ""
}

// Letter reports whether the key is an alphabetic key.
func (k Key) Letter() bool {
	if len(k.Char) != 1 {
		return false
	}
	return unicode.IsLetter(rune(k.Char[0]))
}

// Code returns the primary raw code of the key.
func (k Key) Code() int {
	if len(k.Codes) == 0 {
		return 0
	}
	return k.Codes[0]
}

const capWidth = 3

func letter(c rune) Key {
	s := string(c)
	return Key{
		ID:    KeyID(s),
		Label: s,
		Name:  s,
		Char:  s,
		Codes: []int{int(unicode.ToUpper(c))},
		Width: capWidth,
	}
}

func digit(d int) Key {
	s := fmt.Sprint(d)
	return Key{
		ID:    KeyID("digit" + s),
		Label: s,
		Name:  s,
		Char:  s,
		Codes: []int{48 + d, 96 + d},
		Width: capWidth,
	}
}

func symbol(id KeyID, char string, codes ...int) Key {
	return Key{ID: id, Label: char, Name: char, Char: char, Codes: codes, Width: capWidth}
}

func control(id KeyID, label, name string, width int, codes ...int) Key {
	return Key{ID: id, Label: label, Name: name, Codes: codes, Width: width}
}

func letters(s string) []Key {
	keys := make([]Key, 0, len(s))
	for _, c := range s {
		keys = append(keys, letter(c))
	}
	return keys
}

func concat(parts ...[]Key) []Key {
	var out []Key
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// usLayout is the US QWERTY layout drawn by the keyboard, row by row.
var usLayout = [][]Key{
	concat(
		[]Key{symbol(KeyBackquote, "`", 192)},
		[]Key{digit(1), digit(2), digit(3), digit(4), digit(5), digit(6), digit(7), digit(8), digit(9), digit(0)},
		// 173 is the Firefox minus code, 109 the numpad duplicate.
		[]Key{symbol(KeyMinus, "-", 189, 173, 109), symbol(KeyEqual, "=", 187, 61)},
		[]Key{control(KeyBackspace, "delete", NameBackspace, 9, 8)},
	),
	concat(
		[]Key{control(KeyTab, "tab", NameTab, 6, 9)},
		letters("qwertyuiop"),
		[]Key{symbol(KeyBracketLeft, "[", 219), symbol(KeyBracketRight, "]", 221), symbol(KeyBackslash, `\`, 220)},
	),
	concat(
		[]Key{control(KeyCapsLock, "caps lock", NameCapsLock, 11, 20)},
		letters("asdfghjkl"),
		[]Key{symbol(KeySemicolon, ";", 186, 59), symbol(KeyQuote, "'", 222)},
		[]Key{control(KeyEnter, "return", NameEnter, 8, 13)},
	),
	concat(
		[]Key{control(KeyShift, "shift", NameShift, 11, 16, 160, 161)},
		letters("zxcvbnm"),
		[]Key{symbol(KeyComma, ",", 188), symbol(KeyPeriod, ".", 190, 110), symbol(KeySlash, "/", 191)},
		[]Key{control(KeyDelete, "del", NameDelete, 5, 46)},
	),
	{
		control(KeyCtrl, "ctrl", NameControl, 6, 17, 162, 163),
		control(KeyMeta, "meta", NameMeta, 6, 91, 92, 93, 224),
		control(KeyAlt, "alt", NameAlt, 5, 18, 164, 165),
		{ID: KeySpace, Label: "", Name: " ", Char: " ", Codes: []int{32}, Width: 33},
	},
}

// shiftSubstitutions lists (key, shifted label) pairs for every non-alphabetic
// printing key, in layout order.
var shiftSubstitutions = []struct {
	ID      KeyID
	Shifted string
}{
	{KeyBackquote, "~"},
	{"digit1", "!"},
	{"digit2", "@"},
	{"digit3", "#"},
	{"digit4", "$"},
	{"digit5", "%"},
	{"digit6", "^"},
	{"digit7", "&"},
	{"digit8", "*"},
	{"digit9", "("},
	{"digit0", ")"},
	{KeyMinus, "_"},
	{KeyEqual, "+"},
	{KeyBracketLeft, "{"},
	{KeyBracketRight, "}"},
	{KeyBackslash, "|"},
	{KeySemicolon, ":"},
	{KeyQuote, `"`},
	{KeyComma, "<"},
	{KeyPeriod, ">"},
	{KeySlash, "?"},
}

var (
	keysByID   = map[KeyID]Key{}
	keysByCode = map[int]KeyID{}
	// keysByChar maps a produced character, base or shifted, to its key.
	keysByChar = map[string]charEntry{}
	shiftedOf  = map[KeyID]string{}
)

type charEntry struct {
	id      KeyID
	shifted bool
}

func init() {
	substitutable := 0
	for _, row := range usLayout {
		for _, k := range row {
			if _, dup := keysByID[k.ID]; dup {
				panic(fmt.Sprintf("keyboard: duplicate key %q in layout", k.ID))
			}
			keysByID[k.ID] = k
			for _, code := range k.Codes {
				if prev, dup := keysByCode[code]; dup {
					panic(fmt.Sprintf("keyboard: code %d maps to both %q and %q", code, prev, k.ID))
				}
				keysByCode[code] = k.ID
			}
			if k.Printing() {
				keysByChar[k.Char] = charEntry{id: k.ID}
				if k.Letter() {
					keysByChar[strings.ToUpper(k.Char)] = charEntry{id: k.ID, shifted: true}
				} else if k.ID != KeySpace {
					substitutable++
				}
			}
		}
	}

	if len(shiftSubstitutions) != substitutable {
		panic(fmt.Sprintf("keyboard: shift table has %d entries for %d substitutable keys", len(shiftSubstitutions), substitutable))
	}
	for _, s := range shiftSubstitutions {
		if _, ok := keysByID[s.ID]; !ok {
			panic(fmt.Sprintf("keyboard: shift table names unknown key %q", s.ID))
		}
		shiftedOf[s.ID] = s.Shifted
		keysByChar[s.Shifted] = charEntry{id: s.ID, shifted: true}
	}
}

// Resolve maps a raw key code to its canonical key.
func Resolve(code int) (KeyID, bool) {
	id, ok := keysByCode[code]
	return id, ok
}

// Lookup returns the layout entry for id.
func Lookup(id KeyID) (Key, bool) {
	k, ok := keysByID[id]
	return k, ok
}

// KeyForChar finds the key producing char and whether producing it needs
// Shift.
func KeyForChar(char string) (Key, bool, bool) {
	e, ok := keysByChar[char]
	if !ok {
		return Key{}, false, false
	}
	return keysByID[e.id], e.shifted, true
}

// Rows returns the layout rows in drawing order. The returned slices must not
// be modified.
func Rows() [][]Key {
	return usLayout
}

// Shifted returns the shifted label of a substitutable key.
func Shifted(id KeyID) (string, bool) {
	s, ok := shiftedOf[id]
	return s, ok
}
