package vkbd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/robottwo/typeahead/pkg/keyboard"
)

// Screen geometry. Every element sits at a fixed offset so mouse clicks can
// be mapped back without keeping render state.
const (
	keyGap        = 1
	contentHeight = 4
	chipWidth     = 18
	chipGap       = 2

	contentTop    = 0
	suggestionRow = contentTop + contentHeight + 2 // box border top and bottom
	keyboardTop   = suggestionRow + 2
)

// boardWidth is the width of the widest keyboard row.
var boardWidth = func() int {
	widest := 0
	for _, row := range keyboard.Rows() {
		w := 0
		for i, k := range row {
			if i > 0 {
				w += keyGap
			}
			w += k.Width
		}
		widest = max(widest, w)
	}
	return widest
}()

// keyAt maps a screen cell to the key drawn there.
func keyAt(x, y int) (keyboard.KeyID, bool) {
	rows := keyboard.Rows()
	r := y - keyboardTop
	if r < 0 || r >= len(rows) || x < 0 {
		return "", false
	}
	left := 0
	for _, k := range rows[r] {
		if x < left {
			return "", false // in the gap
		}
		if x < left+k.Width {
			return k.ID, true
		}
		left += k.Width + keyGap
	}
	return "", false
}

// chipAt maps a screen cell to a suggestion chip index.
func chipAt(x, y int) (int, bool) {
	if y != suggestionRow || x < 0 {
		return 0, false
	}
	i := x / (chipWidth + chipGap)
	if i >= keyboard.SlotCount || x%(chipWidth+chipGap) >= chipWidth {
		return 0, false
	}
	return i, true
}

type styles struct {
	content     lipgloss.Style
	placeholder lipgloss.Style
	cursor      lipgloss.Style
	key         lipgloss.Style
	pressed     lipgloss.Style
	locked      lipgloss.Style
	chip        lipgloss.Style
	chipMuted   lipgloss.Style
	chipError   lipgloss.Style
	status      lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		content: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Width(boardWidth - 2),
		placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		cursor:      lipgloss.NewStyle().Reverse(true),
		key: lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Align(lipgloss.Center),
		pressed: lipgloss.NewStyle().
			Background(lipgloss.Color("33")).
			Foreground(lipgloss.Color("231")).
			Bold(true).
			Align(lipgloss.Center),
		locked: lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("214")).
			Bold(true).
			Align(lipgloss.Center),
		chip: lipgloss.NewStyle().
			Background(lipgloss.Color("22")).
			Foreground(lipgloss.Color("231")).
			Align(lipgloss.Center).
			Width(chipWidth),
		chipMuted: lipgloss.NewStyle().
			Background(lipgloss.Color("238")).
			Foreground(lipgloss.Color("245")).
			Align(lipgloss.Center).
			Width(chipWidth),
		chipError: lipgloss.NewStyle().
			Background(lipgloss.Color("52")).
			Foreground(lipgloss.Color("9")).
			Align(lipgloss.Center).
			Width(chipWidth),
		status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

func (m appModel) View() string {
	if m.appState == Terminated {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderSuggestions())
	b.WriteString("\n\n")
	b.WriteString(m.renderKeyboard())
	b.WriteString("\n\n")
	if m.status != "" {
		b.WriteString(m.styles.status.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderContent draws the content box, keeping the last lines in view.
func (m appModel) renderContent() string {
	inner := boardWidth - 2

	var body string
	if m.kb.Buffer().IsPlaceholder() {
		body = m.styles.placeholder.Render(m.kb.Display())
	} else {
		text := wrap.String(wordwrap.String(m.kb.Display(), inner-1), inner-1)
		lines := strings.Split(text, "\n")
		if len(lines) > contentHeight {
			lines = lines[len(lines)-contentHeight:]
		}
		lines[len(lines)-1] += m.styles.cursor.Render(" ")
		body = strings.Join(lines, "\n")
	}

	return m.styles.content.Height(contentHeight).MaxHeight(contentHeight + 2).Render(body)
}

func (m appModel) renderSuggestions() string {
	slots := m.kb.Slots()
	if slots.Hidden() {
		return ""
	}

	chips := make([]string, 0, keyboard.SlotCount)
	for i := 0; i < keyboard.SlotCount; i++ {
		label := runewidth.Truncate(slots.Label(i), chipWidth-2, keyboard.Ellipsis)
		style := m.styles.chip
		switch slots[i].State {
		case keyboard.SlotError:
			style = m.styles.chipError
		case keyboard.SlotWord:
		default:
			style = m.styles.chipMuted
		}
		chips = append(chips, style.Render(label))
	}
	return strings.Join(chips, strings.Repeat(" ", chipGap))
}

func (m appModel) renderKeyboard() string {
	rows := keyboard.Rows()
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		caps := make([]string, 0, len(row))
		for _, k := range row {
			caps = append(caps, m.renderKey(k))
		}
		lines = append(lines, strings.Join(caps, strings.Repeat(" ", keyGap)))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) renderKey(k keyboard.Key) string {
	style := m.styles.key
	switch {
	case m.kb.Pressed(k.ID):
		style = m.styles.pressed
	case k.ID == keyboard.KeyCapsLock && m.kb.CapsLockActive(),
		k.ID == keyboard.KeyShift && m.kb.ShiftActive():
		style = m.styles.locked
	}
	label := runewidth.Truncate(m.kb.Label(k.ID), k.Width, "")
	return style.Width(k.Width).Render(label)
}
