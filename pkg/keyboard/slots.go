package keyboard

import (
	"fmt"
	"regexp"
	"strings"
)

// SlotCount is the number of suggestion slots.
const SlotCount = 3

// Display markers for non-word slot states.
const (
	LoadingLabel = "..."
	ErrorLabel   = "Error"
	Ellipsis     = "…"
)

// SlotState is what a suggestion slot currently holds.
type SlotState int

const (
	SlotNoData SlotState = iota
	SlotLoading
	SlotError
	// SlotFallback holds the "Pred N" label shown when a response had no
	// entry for this position.
	SlotFallback
	SlotWord
)

func (s SlotState) String() string {
	switch s {
	case SlotNoData:
		return "no-data"
	case SlotLoading:
		return "loading"
	case SlotError:
		return "error"
	case SlotFallback:
		return "fallback"
	case SlotWord:
		return "word"
	}
	return fmt.Sprintf("SlotState(%d)", int(s))
}

// Slot is one suggestion position.
type Slot struct {
	State SlotState
	Word  string
}

// Slots is the full suggestion row. It is always replaced as a whole.
type Slots [SlotCount]Slot

// FallbackLabel is the label of slot i (0-based) when a response lacked it.
func FallbackLabel(i int) string {
	return fmt.Sprintf("Pred %d", i+1)
}

// Label is the text the slot shows.
func (s Slots) Label(i int) string {
	if i < 0 || i >= SlotCount {
		return ""
	}
	switch s[i].State {
	case SlotLoading:
		return LoadingLabel
	case SlotError:
		return ErrorLabel
	case SlotFallback:
		return FallbackLabel(i)
	case SlotWord:
		return s[i].Word
	}
	return ""
}

// Hidden reports whether the whole row has nothing to show.
func (s Slots) Hidden() bool {
	return s == Slots{}
}

func loadingSlots() Slots {
	return Slots{{State: SlotLoading}, {State: SlotLoading}, {State: SlotLoading}}
}

func errorSlots() Slots {
	return Slots{{State: SlotError}}
}

// filledSlots places words positionally. Missing or blank entries get the
// fallback label.
func filledSlots(words []string) Slots {
	var s Slots
	for i := range s {
		var w string
		if i < len(words) {
			w = strings.TrimSpace(stripAngles(words[i]))
		}
		if w == "" {
			s[i] = Slot{State: SlotFallback}
			continue
		}
		s[i] = Slot{State: SlotWord, Word: w}
	}
	return s
}

var fallbackLabelRe = regexp.MustCompile(`^Pred \d+$`)

// acceptable reports whether a clicked slot text is a real suggestion.
func acceptable(text string) bool {
	t := strings.TrimSpace(text)
	switch t {
	case "", LoadingLabel, Ellipsis, ErrorLabel:
		return false
	}
	return !fallbackLabelRe.MatchString(t)
}
