package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAIService translates text with the OpenAI chat completion API
type OpenAIService struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAIService creates a new OpenAI backed translation service
func NewOpenAIService(apiKey, model string) *OpenAIService {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIService{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClient(apiKey),
	}
}

// Translate translates text from sourceLang to targetLang
func (s *OpenAIService) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key not found")
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(sourceLang, targetLang),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0.3,
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	translation := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translation == "" {
		return "", fmt.Errorf("empty translation returned")
	}
	return translation, nil
}

// systemPrompt builds the instruction shared by the LLM backends
func systemPrompt(sourceLang, targetLang string) string {
	return fmt.Sprintf("You are a translation engine. Translate the user's text from language code '%s' to language code '%s'. "+
		"Preserve numbers, math notation, code and line breaks exactly. "+
		"Respond with only the translation, nothing else.", sourceLang, targetLang)
}
