package vkbd

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robottwo/typeahead/pkg/keyboard"
	"github.com/stretchr/testify/assert"
)

func TestTranslateKey(t *testing.T) {
	a := keyboard.Event{Code: 65, Key: "a"}
	upperA := keyboard.Event{Code: 65, Key: "A"}
	backspace := keyboard.Event{Code: 8, Key: keyboard.NameBackspace}

	tests := []struct {
		name     string
		msg      tea.KeyMsg
		capsLock bool
		want     []stroke
	}{
		{"lower letter", runes("a"), false, []stroke{{a}}},
		{"upper letter holds shift", runes("A"), false, []stroke{{shiftEvent, upperA}}},
		{"upper letter under caps lock", runes("A"), true, []stroke{{upperA}}},
		{"lower letter under caps lock holds shift", runes("a"), true, []stroke{{shiftEvent, a}}},
		{"shifted digit", runes("!"), false, []stroke{{shiftEvent, {Code: 49, Key: "!"}}}},
		{"shifted digit ignores caps lock", runes("!"), true, []stroke{{shiftEvent, {Code: 49, Key: "!"}}}},
		{"plain symbol", runes("/"), false, []stroke{{{Code: 191, Key: "/"}}}},
		{"space key", tea.KeyMsg{Type: tea.KeySpace}, false, []stroke{{{Code: 32, Key: " "}}}},
		{"off-layout printable", runes("é"), false, []stroke{{{Key: "é"}}}},
		{"non-printable rune", runes("\x7f"), false, []stroke{{{}}}},
		{"several runes", runes("hi"), false, []stroke{{{Code: 72, Key: "h"}}, {{Code: 73, Key: "i"}}}},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, false, []stroke{{{Code: 13, Key: keyboard.NameEnter}}}},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, false, []stroke{{backspace}}},
		{"ctrl+h is backspace", tea.KeyMsg{Type: tea.KeyCtrlH}, false, []stroke{{backspace}}},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, false, []stroke{{{Code: 9, Key: keyboard.NameTab}}}},
		{"shift+tab", tea.KeyMsg{Type: tea.KeyShiftTab}, false, []stroke{{shiftEvent, {Code: 9, Key: keyboard.NameTab}}}},
		{"delete", tea.KeyMsg{Type: tea.KeyDelete}, false, []stroke{{{Code: 46, Key: keyboard.NameDelete}}}},
		{"arrow", tea.KeyMsg{Type: tea.KeyLeft}, false, []stroke{{{Code: codeArrowLeft, Key: "ArrowLeft"}}}},
		{"ctrl+letter", tea.KeyMsg{Type: tea.KeyCtrlA}, false, []stroke{{controlEvent, {Code: 65, Key: nameUnidentified}}}},
		{"function key", tea.KeyMsg{Type: tea.KeyF1}, false, []stroke{{{Key: nameUnidentified}}}},
		{"alt chord", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true}, false, []stroke{{altEvent, {Code: 88, Key: "x"}}}},
		{"newline rune", runes("\n"), false, []stroke{{{Code: 13, Key: keyboard.NameEnter}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translateKey(tt.msg, tt.capsLock))
		})
	}
}

func TestStrokeReleases(t *testing.T) {
	s := stroke{shiftEvent, {Code: 65, Key: "A"}}
	assert.Equal(t, []keyboard.Event{{Code: 65, Key: "A"}, shiftEvent}, s.releases())
	assert.Equal(t, stroke{shiftEvent, {Code: 8, Key: keyboard.NameBackspace}}, clearAllStroke())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
