package completion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"convbot/internal/config"
	conversationpkg "convbot/pkg/conversation"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI talks to any endpoint that speaks the OpenAI chat completions API.
type OpenAI struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewOpenAI(conf config.Completion, httpClient *http.Client) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(conf.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if conf.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(conf.BaseURL))
	}

	return &OpenAI{
		client:      openai.NewClient(opts...),
		model:       conf.Model,
		maxTokens:   conf.MaxTokens,
		temperature: conf.Temperature,
	}
}

func (c *OpenAI) Complete(ctx context.Context, transcript conversationpkg.Transcript) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    transcriptToOpenAIMessages(transcript),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Temperature: openai.Float(c.temperature),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrNoChoices
	}

	slog.DebugContext(ctx, "Chat completion finished",
		slog.String("model", c.model),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		slog.Int64("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int64("completion_tokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}

func transcriptToOpenAIMessages(transcript conversationpkg.Transcript) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(transcript))
	for _, utterance := range transcript {
		switch utterance.Role {
		case conversationpkg.RoleSystem:
			result = append(result, openai.SystemMessage(utterance.Text))
		case conversationpkg.RoleAssistant:
			result = append(result, openai.AssistantMessage(utterance.Text))
		default:
			result = append(result, openai.UserMessage(utterance.Text))
		}
	}
	return result
}
