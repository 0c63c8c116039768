package completion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"convbot/internal/config"
	conversationpkg "convbot/pkg/conversation"
	"convbot/pkg/optional"
	ollamaapi "github.com/ollama/ollama/api"
)

type Ollama struct {
	client      *ollamaapi.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewOllama(conf config.Completion, httpClient *http.Client) (*Ollama, error) {
	base, err := url.Parse(conf.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}

	return &Ollama{
		client:      ollamaapi.NewClient(base, httpClient),
		model:       conf.Model,
		maxTokens:   conf.MaxTokens,
		temperature: conf.Temperature,
	}, nil
}

// Pull makes sure the configured model is available on the Ollama host.
func (o *Ollama) Pull(ctx context.Context) error {
	return o.client.Pull(ctx, &ollamaapi.PullRequest{Model: o.model, Stream: optional.Pointer(true)}, func(response ollamaapi.ProgressResponse) error {
		slog.Info("Pulling model", slog.String("name", o.model), slog.Int64("completed", response.Completed), slog.Int64("total", response.Total))
		return nil
	})
}

func (o *Ollama) Complete(ctx context.Context, transcript conversationpkg.Transcript) (string, error) {
	builder := &strings.Builder{}
	builder.Grow(1024)

	err := o.client.Chat(ctx, &ollamaapi.ChatRequest{
		Model:    o.model,
		Messages: transcriptToOllamaMessages(transcript),
		Stream:   optional.Pointer(false),
		Options: map[string]any{
			"temperature": o.temperature,
			"num_predict": o.maxTokens,
		},
	}, func(response ollamaapi.ChatResponse) error {
		builder.WriteString(response.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}

	if builder.Len() == 0 {
		return "", ErrNoChoices
	}
	return builder.String(), nil
}

func transcriptToOllamaMessages(transcript conversationpkg.Transcript) []ollamaapi.Message {
	result := make([]ollamaapi.Message, len(transcript))
	for i, utterance := range transcript {
		result[i] = ollamaapi.Message{
			Role:    utterance.Role,
			Content: utterance.Text,
		}
	}
	return result
}
