package predict

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

// commonCompletions maps a two-letter word prefix to likely words.
var commonCompletions = []struct {
	prefix string
	words  []string
}{
	{"th", []string{"the", "that", "this"}},
	{"he", []string{"hello", "help", "here"}},
	{"an", []string{"and", "any", "answer"}},
	{"in", []string{"into", "information", "include"}},
	{"on", []string{"only", "once", "online"}},
	{"at", []string{"about", "after", "around"}},
	{"be", []string{"because", "before", "between"}},
	{"ha", []string{"have", "has", "had"}},
	{"wi", []string{"with", "will", "would"}},
	{"yo", []string{"you", "your", "young"}},
}

// vocabulary feeds fuzzy matching when no prefix entry applies.
var vocabulary = []string{
	"a", "about", "after", "again", "all", "also", "always", "am", "an", "and",
	"another", "any", "are", "around", "as", "ask", "at", "away", "back", "be",
	"because", "been", "before", "being", "best", "better", "between", "both",
	"but", "by", "call", "came", "can", "come", "could", "day", "did", "do",
	"does", "down", "each", "even", "every", "find", "first", "for", "from",
	"get", "give", "go", "good", "great", "had", "has", "have", "he", "help",
	"her", "here", "him", "his", "home", "how", "if", "in", "into", "is", "it",
	"just", "keep", "know", "last", "like", "little", "long", "look", "make",
	"many", "may", "me", "more", "most", "much", "must", "my", "need", "never",
	"new", "next", "no", "not", "now", "of", "off", "old", "on", "once", "one",
	"only", "or", "other", "our", "out", "over", "people", "place", "please",
	"right", "said", "same", "say", "see", "she", "should", "so", "some",
	"still", "such", "take", "tell", "than", "thank", "that", "the", "their",
	"them", "then", "there", "these", "they", "thing", "think", "this", "time",
	"to", "today", "too", "two", "under", "up", "us", "use", "very", "want",
	"was", "way", "we", "well", "were", "what", "when", "where", "which",
	"while", "who", "why", "will", "with", "work", "world", "would", "write",
	"year", "yes", "you", "your",
}

var genericSuggestions = []string{"the", "and", "for"}

// FallbackPredictor completes the last word from a fixed table, then by fuzzy
// match against a small vocabulary, and finally offers generic words. It never
// fails and needs no model.
type FallbackPredictor struct{}

func (p *FallbackPredictor) Predict(ctx context.Context, text string) ([]string, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}
	last := strings.ToLower(words[len(words)-1])

	var out []string
	for _, c := range commonCompletions {
		if !strings.HasPrefix(last, c.prefix) {
			continue
		}
		for _, w := range c.words {
			if strings.HasPrefix(w, last) {
				out = append(out, w)
			}
		}
	}

	if len(out) == 0 {
		matches := fuzzy.Find(last, vocabulary)
		for _, m := range matches {
			if m.Str != last {
				out = append(out, m.Str)
			}
		}
	}

	if len(out) == 0 {
		out = genericSuggestions
	}
	out = lo.Uniq(out)
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out, nil
}
