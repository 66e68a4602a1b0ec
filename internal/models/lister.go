package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClient(apiKey),
	}
}

// ListAvailableModels prints the chat models usable for translation, with the
// configured default marked
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer, current string) error {
	if l.apiKey == "" {
		return fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .coltrans.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(models.Models))
	for _, model := range models.Models {
		ids = append(ids, model.ID)
	}
	chatModels := TranslationModels(ids)

	fmt.Fprintln(w, "Chat models usable for translation:")
	if len(chatModels) == 0 {
		fmt.Fprintln(w, "  No chat models found")
		return nil
	}
	for _, model := range chatModels {
		marker := " "
		if model == current {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %s\n", marker, model)
	}
	return nil
}

// TranslationModels filters model ids down to sorted chat models. Audio,
// speech, image, embedding and moderation variants are dropped.
func TranslationModels(ids []string) []string {
	excluded := []string{"tts", "audio", "realtime", "transcribe", "search", "dall-e", "image", "embedding", "moderation", "whisper"}

	var chat []string
	for _, id := range ids {
		if !strings.Contains(id, "gpt") && !strings.HasPrefix(id, "o1") &&
			!strings.HasPrefix(id, "o3") && !strings.HasPrefix(id, "o4") {
			continue
		}
		skip := false
		for _, ex := range excluded {
			if strings.Contains(id, ex) {
				skip = true
				break
			}
		}
		if !skip {
			chat = append(chat, id)
		}
	}

	sort.Strings(chat)
	return chat
}
