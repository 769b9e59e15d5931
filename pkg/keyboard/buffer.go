package keyboard

import (
	"strings"

	"github.com/samber/lo"
)

// TabWidth is the number of spaces a Tab press appends.
const TabWidth = 4

var angleStripper = strings.NewReplacer("<", "", ">", "")

// stripAngles removes angle brackets so buffer and suggestion text can never
// carry markup.
func stripAngles(s string) string {
	return angleStripper.Replace(s)
}

// Buffer is the typed text. An empty buffer shows its placeholder prompt
// instead of an empty string; the two states are kept distinct.
type Buffer struct {
	placeholder string
	text        []rune
	empty       bool
}

// NewBuffer returns an empty buffer showing placeholder.
func NewBuffer(placeholder string) *Buffer {
	return &Buffer{placeholder: placeholder, empty: true}
}

// Placeholder returns the prompt shown while the buffer is empty.
func (b *Buffer) Placeholder() string {
	return b.placeholder
}

// IsPlaceholder reports whether the buffer is logically empty.
func (b *Buffer) IsPlaceholder() bool {
	return b.empty
}

// Text returns the logical content, "" while the placeholder is shown.
func (b *Buffer) Text() string {
	if b.empty {
		return ""
	}
	return string(b.text)
}

// Display returns what the content box shows.
func (b *Buffer) Display() string {
	if b.empty {
		return b.placeholder
	}
	return string(b.text)
}

func (b *Buffer) clearPlaceholder() {
	if b.empty {
		b.text = b.text[:0]
		b.empty = false
	}
}

func (b *Buffer) append(s string) {
	if s == "" {
		return
	}
	b.clearPlaceholder()
	b.text = append(b.text, []rune(s)...)
}

// AppendChar appends a typed character after stripping markup characters.
func (b *Buffer) AppendChar(s string) {
	b.append(stripAngles(s))
}

// AppendNewline appends a line break.
func (b *Buffer) AppendNewline() {
	b.append("\n")
}

// AppendTab appends TabWidth spaces.
func (b *Buffer) AppendTab() {
	b.append(strings.Repeat(" ", TabWidth))
}

// DeleteLast removes the final character, restoring the placeholder when
// nothing is left.
func (b *Buffer) DeleteLast() {
	if b.empty {
		return
	}
	if len(b.text) > 0 {
		b.text = b.text[:len(b.text)-1]
	}
	if len(b.text) == 0 {
		b.empty = true
	}
}

// Clear drops all content and shows the placeholder again.
func (b *Buffer) Clear() {
	b.text = b.text[:0]
	b.empty = true
}

// ReplaceLastWord swaps the trailing word for word and leaves a trailing
// space. Whitespace runs collapse to single spaces. An empty buffer becomes
// word followed by a space.
func (b *Buffer) ReplaceLastWord(word string) {
	word = stripAngles(word)
	words := strings.Fields(b.Text())
	if len(words) == 0 {
		words = []string{word}
	} else {
		words = append(lo.DropRight(words, 1), word)
	}
	b.clearPlaceholder()
	b.text = []rune(strings.Join(words, " ") + " ")
}

// replace sets the content verbatim. Used for degraded-mode messages.
func (b *Buffer) replace(s string) {
	if s == "" {
		b.Clear()
		return
	}
	b.empty = false
	b.text = []rune(s)
}
