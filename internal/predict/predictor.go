// Package predict produces next-word suggestions. It holds the HTTP client the
// keyboard uses to reach the prediction endpoint and the engines the endpoint
// itself runs.
package predict

import (
	"context"
	"errors"
)

// MaxSuggestions is how many words a prediction yields at most.
const MaxSuggestions = 3

// ErrMalformedResponse is returned when the endpoint answers with something
// that is not a list of suggestion entries.
var ErrMalformedResponse = errors.New("malformed prediction response")

// Predictor suggests the words most likely to follow text. Implementations may
// return fewer than MaxSuggestions words; an empty string marks a missing
// position.
type Predictor interface {
	Predict(ctx context.Context, text string) ([]string, error)
}

// PredictorFunc adapts a function to the Predictor interface.
type PredictorFunc func(ctx context.Context, text string) ([]string, error)

func (f PredictorFunc) Predict(ctx context.Context, text string) ([]string, error) {
	return f(ctx, text)
}
