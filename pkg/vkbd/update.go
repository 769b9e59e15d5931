package vkbd

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robottwo/typeahead/pkg/keyboard"
	"go.uber.org/zap"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case keyUpMsg:
		if msg.id == m.keyUpId {
			m.flushKeyUps()
		}
		return m, nil

	case predictionMsg:
		if !m.kb.ApplyPrediction(msg.seq, msg.words, msg.err) {
			m.logger.Debug("vkbd dropped stale prediction", zap.Uint64("seq", msg.seq), zap.Uint64("latest", m.kb.Seq()))
		}
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case pasteMsg:
		return m.press(translateKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(msg.text), Paste: true}, m.kb.CapsLockActive()))

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.appState = Terminated
		m.interrupted = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Done):
		m.appState = Terminated
		return m, tea.Quit

	case key.Matches(msg, m.keys.Copy):
		text := m.kb.Text()
		return m, func() tea.Msg {
			if err := writeClipboard(text); err != nil {
				return statusMsg("copy failed: " + err.Error())
			}
			return statusMsg("copied to clipboard")
		}

	case key.Matches(msg, m.keys.Paste):
		return m, func() tea.Msg {
			text, err := readClipboard()
			if err != nil {
				return statusMsg("paste failed: " + err.Error())
			}
			return pasteMsg{text: text}
		}

	case key.Matches(msg, m.keys.ClearAll):
		return m.press([]stroke{clearAllStroke()})
	}

	for i, binding := range m.keys.Suggest {
		if key.Matches(msg, binding) {
			return m.acceptSuggestion(i, true)
		}
	}

	return m.press(translateKey(msg, m.kb.CapsLockActive()))
}

func (m appModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	if i, ok := chipAt(msg.X, msg.Y); ok {
		return m.acceptSuggestion(i, false)
	}

	id, ok := keyAt(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	ev, ok := m.kb.Synthesize(id)
	if !ok {
		return m, nil
	}
	return m.press([]stroke{{ev}})
}

// press applies each chord in turn. Releases of a chord happen when the next
// one goes down; the last chord is released after the key-up delay.
func (m appModel) press(strokes []stroke) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	for _, s := range strokes {
		m.flushKeyUps()
		for _, ev := range s {
			out := m.kb.KeyDown(ev)
			if out.Degraded {
				m.logger.Debug("vkbd key event without a key name", zap.Int("code", ev.Code))
			}
			if out.Fetch {
				cmds = append(cmds, m.predict(out.Request))
			}
		}
		m.pendingUps = s.releases()
	}

	if len(m.pendingUps) > 0 {
		m.keyUpId++
		id := m.keyUpId
		cmds = append(cmds, tea.Tick(m.options.KeyUpDelay, func(time.Time) tea.Msg {
			return keyUpMsg{id: id}
		}))
	}
	return m, tea.Batch(cmds...)
}

func (m *appModel) flushKeyUps() {
	for _, ev := range m.pendingUps {
		m.kb.KeyUp(ev)
	}
	m.pendingUps = nil
}

// acceptSuggestion replaces the last word with chip i. Shortcuts only accept
// chips holding a word; clicks follow the chip's own rules.
func (m appModel) acceptSuggestion(i int, shortcut bool) (tea.Model, tea.Cmd) {
	before := m.kb.Text()
	prediction := m.kb.Slots().Label(i)

	var (
		req      keyboard.Request
		fetch    bool
		accepted bool
	)
	if shortcut {
		req, fetch, accepted = m.kb.ShortcutSuggestion(i + 1)
	} else {
		req, fetch, accepted = m.kb.ClickSuggestion(i)
	}
	if !accepted {
		return m, nil
	}

	var cmds []tea.Cmd
	if fetch {
		cmds = append(cmds, m.predict(req))
	}
	if m.analytics != nil {
		analytics := m.analytics
		after := m.kb.Text()
		cmds = append(cmds, func() tea.Msg {
			analytics.RecordAcceptance(i, before, prediction, after)
			return nil
		})
	}
	return m, tea.Batch(cmds...)
}
