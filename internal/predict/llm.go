package predict

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// LLMConfig selects an OpenAI-compatible chat model.
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature *float64
}

// LLMPredictor asks a chat model for the next words of the text.
type LLMPredictor struct {
	llmClient   *openai.Client
	modelId     string
	temperature *float64
	logger      *zap.Logger
}

// NewLLMPredictor builds a predictor for cfg. A local Ollama server is
// assumed when no API key is given.
func NewLLMPredictor(cfg LLMConfig, logger *zap.Logger) *LLMPredictor {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "ollama"
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &LLMPredictor{
		llmClient:   openai.NewClientWithConfig(clientConfig),
		modelId:     cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

const llmSystemMessage = `You are a predictive keyboard.
You will be given text typed so far, enclosed in <text> tags.

# Instructions
* Suggest the %d words most likely to come next, best first.
* Each suggestion is exactly one word without punctuation or quotes.
* Do not repeat a word.

# Response JSON Schema
{"type":"object","properties":{"words":{"type":"array","items":{"type":"string"}}},"required":["words"]}`

func (p *LLMPredictor) Predict(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	request := openai.ChatCompletionRequest{
		Model: p.modelId,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(llmSystemMessage, MaxSuggestions),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("<text>%s</text>", text),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if p.temperature != nil {
		request.Temperature = float32(*p.temperature)
	}

	chatCompletion, err := p.llmClient.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, err
	}
	if len(chatCompletion.Choices) == 0 {
		return nil, fmt.Errorf("model %s returned no choices", p.modelId)
	}

	content := chatCompletion.Choices[0].Message.Content
	p.logger.Debug("LLM prediction response", zap.String("content", content))

	return wordsFromCompletion(content), nil
}

// wordsFromCompletion pulls the first word of every "words" entry, dropping
// blanks and duplicates.
func wordsFromCompletion(content string) []string {
	seen := map[string]bool{}
	var words []string
	for _, r := range gjson.Get(content, "words").Array() {
		fields := strings.Fields(r.String())
		if len(fields) == 0 {
			continue
		}
		w := strings.Trim(fields[0], `.,;:!?"'`)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
		if len(words) == MaxSuggestions {
			break
		}
	}
	return words
}
