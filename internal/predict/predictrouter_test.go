package predict

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPredictRouter_Predict_SkipsBlankInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"whitespace only", "   "},
		{"tabs only", "\t\t"},
		{"mixed whitespace", "  \t  \n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := &PredictRouter{
				Primary: PredictorFunc(func(ctx context.Context, text string) ([]string, error) {
					t.Fatal("primary must not be called for blank input")
					return nil, nil
				}),
			}

			words, err := router.Predict(context.Background(), tt.input)

			assert.NoError(t, err)
			assert.Empty(t, words)
		})
	}
}

func TestPredictRouter_FallsBackOnError(t *testing.T) {
	router := &PredictRouter{
		Primary: PredictorFunc(func(ctx context.Context, text string) ([]string, error) {
			return nil, errors.New("model offline")
		}),
		Fallback: &FallbackPredictor{},
		Logger:   zap.NewNop(),
	}

	words, err := router.Predict(context.Background(), "th")
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "that", "this"}, words)
}

func TestPredictRouter_FallsBackOnEmpty(t *testing.T) {
	router := &PredictRouter{
		Primary:  PredictorFunc(func(ctx context.Context, text string) ([]string, error) { return nil, nil }),
		Fallback: PredictorFunc(func(ctx context.Context, text string) ([]string, error) { return []string{"x"}, nil }),
	}

	words, err := router.Predict(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, words)
}

func TestPredictRouter_PrimaryErrorWithoutFallback(t *testing.T) {
	router := &PredictRouter{
		Primary: PredictorFunc(func(ctx context.Context, text string) ([]string, error) {
			return nil, errors.New("boom")
		}),
	}

	_, err := router.Predict(context.Background(), "abc")
	assert.Error(t, err)
}

func TestPredictRouter_NilPredictors(t *testing.T) {
	router := &PredictRouter{}

	assert.NotPanics(t, func() {
		words, err := router.Predict(context.Background(), "abc")
		assert.NoError(t, err)
		assert.Empty(t, words)
	})
}
