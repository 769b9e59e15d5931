package vkbd

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robottwo/typeahead/pkg/keyboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakePredictor struct {
	mu      sync.Mutex
	answers map[string][]string
	err     error
	calls   []string
}

func (p *fakePredictor) Predict(ctx context.Context, text string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, text)
	if p.err != nil {
		return nil, p.err
	}
	return p.answers[text], nil
}

type acceptance struct {
	slot                      int
	input, prediction, actual string
}

type fakeAnalytics struct {
	entries []acceptance
}

func (a *fakeAnalytics) RecordAcceptance(slot int, input, prediction, actual string) {
	a.entries = append(a.entries, acceptance{slot, input, prediction, actual})
}

func newTestModel(t *testing.T, predictor Predictor, analytics SuggestionAnalytics) appModel {
	t.Helper()
	options := NewOptions()
	options.KeyUpDelay = time.Millisecond
	return initialModel(predictor, analytics, zaptest.NewLogger(t), options)
}

// runCmd executes cmd and everything it batches, returning the messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// send updates m with msg and feeds back every resulting message until the
// model is idle.
func send(m appModel, msg tea.Msg) appModel {
	next, cmd := m.Update(msg)
	m = next.(appModel)
	for _, out := range runCmd(cmd) {
		if _, quit := out.(tea.QuitMsg); quit {
			continue
		}
		m = send(m, out)
	}
	return m
}

func typeText(m appModel, s string) appModel {
	for _, r := range s {
		if r == ' ' {
			m = send(m, tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		m = send(m, runes(string(r)))
	}
	return m
}

// keyPosition returns a screen cell inside the drawn key id.
func keyPosition(t *testing.T, id keyboard.KeyID) (int, int) {
	t.Helper()
	for r, row := range keyboard.Rows() {
		left := 0
		for _, k := range row {
			if k.ID == id {
				return left + k.Width/2, keyboardTop + r
			}
			left += k.Width + keyGap
		}
	}
	t.Fatalf("key %q not drawn", id)
	return 0, 0
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestTypingFillsSuggestions(t *testing.T) {
	predictor := &fakePredictor{answers: map[string][]string{
		"I want": {"to", "a", "the"},
	}}
	m := newTestModel(t, predictor, nil)

	m = typeText(m, "I want ")

	assert.Equal(t, "I want ", m.kb.Text())
	assert.Equal(t, []string{"I", "I want"}, predictor.calls)
	slots := m.kb.Slots()
	assert.Equal(t, "to", slots.Label(0))
	assert.Equal(t, "a", slots.Label(1))
	assert.Equal(t, "the", slots.Label(2))
}

func TestKeyStaysPressedUntilReleased(t *testing.T) {
	m := newTestModel(t, &fakePredictor{}, nil)

	next, cmd := m.Update(runes("q"))
	m = next.(appModel)
	require.NotNil(t, cmd)
	assert.True(t, m.kb.Pressed("q"))

	// a release for an older press is ignored
	m = send(m, keyUpMsg{id: m.keyUpId - 1})
	assert.True(t, m.kb.Pressed("q"))

	m = send(m, keyUpMsg{id: m.keyUpId})
	assert.False(t, m.kb.Pressed("q"))
}

func TestNextPressReleasesShift(t *testing.T) {
	m := newTestModel(t, &fakePredictor{}, nil)
	m = typeText(m, "ab")

	next, _ := m.Update(runes("C"))
	m = next.(appModel)
	assert.True(t, m.kb.ShiftActive(), "shift is held for the upper-case letter")

	// Backspace right after must delete one character, not clear everything.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(appModel)
	assert.False(t, m.kb.ShiftActive())
	assert.Equal(t, "ab", m.kb.Text())
}

func TestClearAllChord(t *testing.T) {
	m := newTestModel(t, &fakePredictor{}, nil)
	m = typeText(m, "hello")

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlU})

	assert.True(t, m.kb.Buffer().IsPlaceholder())
	assert.False(t, m.kb.ShiftActive())
	assert.Equal(t, keyboard.DefaultPlaceholder, m.kb.Display())
}

func TestCapsLockByClick(t *testing.T) {
	m := newTestModel(t, &fakePredictor{}, nil)

	m = send(m, click(keyPosition(t, keyboard.KeyCapsLock)))
	assert.True(t, m.kb.CapsLockActive())
	assert.False(t, m.kb.Pressed(keyboard.KeyCapsLock), "released after the delay")

	m = send(m, click(keyPosition(t, "q")))
	assert.Equal(t, "Q", m.kb.Text())

	m = send(m, click(keyPosition(t, keyboard.KeyCapsLock)))
	m = send(m, click(keyPosition(t, "q")))
	assert.Equal(t, "Qq", m.kb.Text())
}

func TestClickSpaceRequestsPrediction(t *testing.T) {
	predictor := &fakePredictor{answers: map[string][]string{"hi": {"there"}}}
	m := newTestModel(t, predictor, nil)
	m = typeText(m, "hi")

	m = send(m, click(keyPosition(t, keyboard.KeySpace)))

	assert.Equal(t, "hi ", m.kb.Text())
	assert.Equal(t, "there", m.kb.Slots().Label(0))
	assert.Equal(t, "Pred 2", m.kb.Slots().Label(1))
}

func TestClickOutsideKeysDoesNothing(t *testing.T) {
	m := newTestModel(t, &fakePredictor{}, nil)
	m = send(m, click(boardWidth+5, keyboardTop))
	m = send(m, click(1, contentTop+1))
	m = send(m, tea.MouseMsg{X: 1, Y: keyboardTop, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.True(t, m.kb.Buffer().IsPlaceholder())
}

func TestAcceptSuggestionByClick(t *testing.T) {
	predictor := &fakePredictor{answers: map[string][]string{
		"hello wor":   {"world", "work", "word"},
		"hello world": {"peace"},
	}}
	analytics := &fakeAnalytics{}
	m := newTestModel(t, predictor, analytics)

	m = typeText(m, "hello wor")
	// predictions are requested on space; ask for this prefix directly
	req, ok := m.kb.PreparePrediction(m.kb.Text())
	require.True(t, ok)
	m = send(m, predictionMsg{seq: req.Seq, words: predictor.answers["hello wor"]})
	require.Equal(t, "world", m.kb.Slots().Label(0))

	m = send(m, click(1, suggestionRow))

	assert.Equal(t, "hello world ", m.kb.Text())
	assert.Equal(t, "peace", m.kb.Slots().Label(0), "new prediction after accepting")
	require.Len(t, analytics.entries, 1)
	assert.Equal(t, acceptance{0, "hello wor", "world", "hello world "}, analytics.entries[0])
}

func TestAcceptSuggestionByShortcut(t *testing.T) {
	predictor := &fakePredictor{answers: map[string][]string{"go": {"home", "away"}}}
	analytics := &fakeAnalytics{}
	m := newTestModel(t, predictor, analytics)
	m = typeText(m, "go ")
	require.Equal(t, "away", m.kb.Slots().Label(1))

	// slot 3 holds only the fallback label
	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3"), Alt: true})
	assert.Equal(t, "go ", m.kb.Text())

	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2"), Alt: true})
	assert.Equal(t, "away ", m.kb.Text())
	require.Len(t, analytics.entries, 1)
	assert.Equal(t, 1, analytics.entries[0].slot)
}

func TestStalePredictionDropped(t *testing.T) {
	m := newTestModel(t, &fakePredictor{}, nil)
	m = typeText(m, "a")
	first, ok := m.kb.PreparePrediction("a")
	require.True(t, ok)
	second, ok := m.kb.PreparePrediction("ab")
	require.True(t, ok)

	m = send(m, predictionMsg{seq: first.Seq, words: []string{"old"}})
	assert.Equal(t, keyboard.LoadingLabel, m.kb.Slots().Label(0))

	m = send(m, predictionMsg{seq: second.Seq, words: []string{"new"}})
	assert.Equal(t, "new", m.kb.Slots().Label(0))
}

func TestPredictionErrorShowsMarker(t *testing.T) {
	m := newTestModel(t, &fakePredictor{err: errors.New("connection refused")}, nil)
	m = typeText(m, "oops ")

	slots := m.kb.Slots()
	assert.Equal(t, keyboard.ErrorLabel, slots.Label(0))
	assert.Equal(t, "", slots.Label(1))
	assert.Contains(t, m.View(), keyboard.ErrorLabel)
}

func TestPredictionTimeout(t *testing.T) {
	slow := predictorFunc(func(ctx context.Context, text string) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	m := newTestModel(t, slow, nil)
	m.options.PredictionTimeout = 20 * time.Millisecond

	m = typeText(m, "wait ")
	assert.Equal(t, keyboard.ErrorLabel, m.kb.Slots().Label(0))
}

type predictorFunc func(ctx context.Context, text string) ([]string, error)

func (f predictorFunc) Predict(ctx context.Context, text string) ([]string, error) {
	return f(ctx, text)
}

func TestCopyAndPaste(t *testing.T) {
	var copied string
	oldWrite, oldRead := writeClipboard, readClipboard
	t.Cleanup(func() {
		writeClipboard, readClipboard = oldWrite, oldRead
	})
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	readClipboard = func() (string, error) {
		return "Hi there", nil
	}

	m := newTestModel(t, &fakePredictor{}, nil)
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlV})
	assert.Equal(t, "Hi there", m.kb.Text())
	assert.False(t, m.kb.ShiftActive())

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "Hi there", copied)
	assert.Equal(t, "copied to clipboard", m.status)
	assert.Contains(t, m.View(), "copied to clipboard")

	writeClipboard = func(string) error { return errors.New("no clipboard") }
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.True(t, strings.HasPrefix(m.status, "copy failed"))
}

func TestDoneAndQuit(t *testing.T) {
	m := newTestModel(t, &fakePredictor{}, nil)
	m = typeText(m, "bye")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	done := next.(appModel)
	require.NotNil(t, cmd)
	assert.Equal(t, Terminated, done.appState)
	assert.False(t, done.interrupted)
	assert.Empty(t, done.View())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, next.(appModel).interrupted)
}

func TestDegradedEventShowsApology(t *testing.T) {
	m := newTestModel(t, &fakePredictor{}, nil)
	m = typeText(m, "abc")

	m = send(m, runes("\x00"))
	assert.Equal(t, keyboard.DefaultApology, m.kb.Text())
}
