package predict

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// PredictRouter sends text to the primary predictor and falls back when it is
// missing, fails or has nothing to say.
type PredictRouter struct {
	Primary  Predictor
	Fallback Predictor
	Logger   *zap.Logger
}

func (p *PredictRouter) Predict(ctx context.Context, text string) ([]string, error) {
	// Skip prediction when input is blank (empty or whitespace only)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if p.Primary != nil {
		words, err := p.Primary.Predict(ctx, text)
		switch {
		case err != nil:
			if p.Logger != nil {
				p.Logger.Warn("primary predictor failed", zap.Error(err))
			}
			if p.Fallback == nil {
				return nil, err
			}
		case len(words) > 0:
			return words, nil
		}
	}

	if p.Fallback == nil {
		return nil, nil
	}
	return p.Fallback.Predict(ctx, text)
}
