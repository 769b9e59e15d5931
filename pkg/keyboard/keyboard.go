// Package keyboard holds the state of the virtual keyboard: which keys are
// drawn pressed, the shift and caps-lock toggles, the typed text and the three
// suggestion slots. It performs no I/O. Hosts feed it key events and run the
// prediction requests it hands back.
package keyboard

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Default texts shown by the content box.
const (
	DefaultPlaceholder = "Start typing..."
	DefaultApology     = "Sorry, your device is not supported: key events carry no character information."
)

// Event is a key-state notification from the host: a raw numeric key code and
// the symbolic key name. An empty Key means the host could not report what
// the key produces.
type Event struct {
	Code int
	Key  string
}

// Request is a prediction lookup to run. Seq orders requests; only the
// response for the latest Seq is applied.
type Request struct {
	Seq  uint64
	Text string
}

// Outcome describes what a key-down asks of the host.
type Outcome struct {
	// Key is the resolved key, empty when the code is not on the layout.
	Key KeyID
	// Degraded is set when the event carried no key name and the buffer now
	// holds the apology message.
	Degraded bool
	// PreventDefault asks the host to suppress its own handling (Tab focus
	// navigation).
	PreventDefault bool
	// Fetch is set when Request should be sent to the prediction endpoint.
	Fetch   bool
	Request Request
}

// Options configures a Keyboard.
type Options struct {
	Placeholder string
	Apology     string
}

// Keyboard is the single owner of all widget state. It is not safe for
// concurrent use; hosts drive it from one event loop.
type Keyboard struct {
	apology string

	pressed        map[KeyID]bool
	labels         map[KeyID]string
	shiftActive    bool
	capsLockActive bool

	buffer *Buffer
	slots  Slots
	seq    uint64
}

// New returns a keyboard with nothing pressed, both toggles off and an empty
// buffer.
func New(opts Options) *Keyboard {
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	if opts.Apology == "" {
		opts.Apology = DefaultApology
	}
	k := &Keyboard{
		apology: opts.Apology,
		pressed: map[KeyID]bool{},
		labels:  map[KeyID]string{},
		buffer:  NewBuffer(opts.Placeholder),
	}
	k.revertShiftLabels()
	return k
}

// ShiftActive reports whether Shift is held.
func (k *Keyboard) ShiftActive() bool { return k.shiftActive }

// CapsLockActive reports the caps-lock toggle.
func (k *Keyboard) CapsLockActive() bool { return k.capsLockActive }

// Uppercase reports whether letter keys are drawn in upper case.
func (k *Keyboard) Uppercase() bool {
	return k.shiftActive || k.capsLockActive
}

// Pressed reports whether id is drawn pressed.
func (k *Keyboard) Pressed(id KeyID) bool {
	return k.pressed[id]
}

// Label returns the current cap label of id.
func (k *Keyboard) Label(id KeyID) string {
	if l, ok := k.labels[id]; ok {
		return l
	}
	key, ok := Lookup(id)
	if !ok {
		return ""
	}
	if key.Letter() && k.Uppercase() {
		return strings.ToUpper(key.Label)
	}
	return key.Label
}

// Buffer exposes the text buffer for rendering.
func (k *Keyboard) Buffer() *Buffer { return k.buffer }

// Text returns the logical buffer content.
func (k *Keyboard) Text() string { return k.buffer.Text() }

// Display returns the content box text, the placeholder when empty.
func (k *Keyboard) Display() string { return k.buffer.Display() }

// Slots returns a copy of the suggestion row.
func (k *Keyboard) Slots() Slots { return k.slots }

// Seq returns the sequence number of the latest prediction request.
func (k *Keyboard) Seq() uint64 { return k.seq }

func (k *Keyboard) applyShiftLabels() {
	for _, s := range shiftSubstitutions {
		k.labels[s.ID] = s.Shifted
	}
}

func (k *Keyboard) revertShiftLabels() {
	for _, s := range shiftSubstitutions {
		k.labels[s.ID] = keysByID[s.ID].Label
	}
}

// KeyDown applies a key press. Events without a key name show the apology;
// events for keys the layout does not draw are ignored.
func (k *Keyboard) KeyDown(ev Event) Outcome {
	id, known := Resolve(ev.Code)
	out := Outcome{Key: id}
	if known {
		k.pressed[id] = true
	}

	if ev.Key == "" {
		k.buffer.replace(k.apology)
		out.Degraded = true
		return out
	}
	if !known {
		return out
	}

	switch id {
	case KeyCapsLock:
		k.capsLockActive = !k.capsLockActive
	case KeyShift:
		k.shiftActive = true
		k.applyShiftLabels()
	}

	switch {
	case ev.Key == NameBackspace:
		if k.shiftActive {
			k.buffer.Clear()
		} else {
			k.buffer.DeleteLast()
		}
	case ev.Key == NameEnter:
		k.buffer.AppendNewline()
	case utf8.RuneCountInString(ev.Key) == 1:
		k.buffer.AppendChar(ev.Key)
	}
	if ev.Key == NameTab {
		k.buffer.AppendTab()
		out.PreventDefault = true
	}

	if id == KeySpace {
		out.Request, out.Fetch = k.PreparePrediction(k.buffer.Text())
	}
	return out
}

// KeyUp applies a key release.
func (k *Keyboard) KeyUp(ev Event) {
	id, known := Resolve(ev.Code)
	if !known {
		return
	}
	delete(k.pressed, id)
	if id == KeyShift {
		k.shiftActive = false
		k.revertShiftLabels()
	}
}

// Synthesize builds the event a click on id would produce, using the current
// toggle state to pick the character.
func (k *Keyboard) Synthesize(id KeyID) (Event, bool) {
	key, ok := Lookup(id)
	if !ok {
		return Event{}, false
	}
	ev := Event{Code: key.Code(), Key: key.Name}
	if !key.Printing() {
		return ev, true
	}
	switch {
	case key.Letter():
		if k.Uppercase() {
			ev.Key = strings.ToUpper(key.Char)
		}
	case id != KeySpace:
		ev.Key = k.Label(id)
	}
	return ev, true
}

var (
	markupRe      = regexp.MustCompile(`<[^>]*>`)
	spaceReplacer = strings.NewReplacer("\u00a0", " ", "\u2002", " ", "\u2003", " ", "\u202f", " ")
)

// NormalizeQuery prepares buffer text for the prediction endpoint: markup is
// removed, non-breaking and em spaces become plain spaces and the result is
// trimmed.
func NormalizeQuery(text string) string {
	text = markupRe.ReplaceAllString(text, "")
	text = spaceReplacer.Replace(text)
	return strings.TrimFunc(text, unicode.IsSpace)
}

// PreparePrediction starts a prediction for text. When there is nothing to
// predict from, the slots are reset and ok is false. Otherwise every slot
// shows the loading marker and the returned request carries a new sequence
// number.
func (k *Keyboard) PreparePrediction(text string) (req Request, ok bool) {
	q := NormalizeQuery(text)
	k.seq++
	if q == "" || q == k.buffer.Placeholder() {
		k.slots = Slots{}
		return Request{}, false
	}
	k.slots = loadingSlots()
	return Request{Seq: k.seq, Text: q}, true
}

// ApplyPrediction stores the response for request seq. Responses for any
// request other than the latest are dropped and false is returned. A non-nil
// err shows the error marker in the first slot and clears the others.
func (k *Keyboard) ApplyPrediction(seq uint64, words []string, err error) bool {
	if seq != k.seq {
		return false
	}
	if err != nil {
		k.slots = errorSlots()
		return true
	}
	k.slots = filledSlots(words)
	return true
}

// ClickSuggestion accepts the suggestion in slot i (0-based). Only slots
// holding a predicted word react, whatever that word reads. It returns the
// follow-up prediction request, if any, and whether the click did anything.
func (k *Keyboard) ClickSuggestion(i int) (Request, bool, bool) {
	if i < 0 || i >= SlotCount || k.slots[i].State != SlotWord {
		return Request{}, false, false
	}
	return k.replaceLastWord(k.slots[i].Word)
}

// AcceptSuggestion replaces the last typed word with text. Markers and
// fallback labels are ignored. The returned request re-predicts from the new
// buffer; fetch is false when there is nothing to predict from.
func (k *Keyboard) AcceptSuggestion(text string) (req Request, fetch bool, accepted bool) {
	if !acceptable(text) || strings.TrimSpace(text) == k.buffer.Placeholder() {
		return Request{}, false, false
	}
	return k.replaceLastWord(strings.TrimSpace(text))
}

func (k *Keyboard) replaceLastWord(word string) (Request, bool, bool) {
	k.buffer.ReplaceLastWord(word)
	req, fetch := k.PreparePrediction(k.buffer.Text())
	return req, fetch, true
}

// ShortcutSuggestion handles the modifier+digit shortcut; n is 1..3. Only
// slots holding a real word react.
func (k *Keyboard) ShortcutSuggestion(n int) (Request, bool, bool) {
	return k.ClickSuggestion(n - 1)
}
