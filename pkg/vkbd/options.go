package vkbd

import (
	"context"
	"time"
)

// Predictor returns up to three likely next words for text.
type Predictor interface {
	Predict(ctx context.Context, text string) ([]string, error)
}

// SuggestionAnalytics is told about every accepted suggestion. Slot is
// 0-based; input and actual are the buffer before and after the replacement.
type SuggestionAnalytics interface {
	RecordAcceptance(slot int, input, prediction, actual string)
}

type Options struct {
	Placeholder string
	Apology     string

	// PredictionTimeout bounds each prediction request.
	PredictionTimeout time.Duration
	// KeyUpDelay is how long a key stays drawn pressed. Terminals report no
	// key releases, so every press is released after this delay or at the
	// next press, whichever comes first.
	KeyUpDelay time.Duration

	// AltScreen runs the keyboard in the alternate screen buffer.
	AltScreen bool
}

func NewOptions() Options {
	return Options{
		PredictionTimeout: 3 * time.Second,
		KeyUpDelay:        100 * time.Millisecond,
		AltScreen:         true,
	}
}
