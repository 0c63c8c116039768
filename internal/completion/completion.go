package completion

import (
	"errors"
	"fmt"
	"net/http"

	"convbot/internal/config"
	conversationpkg "convbot/pkg/conversation"
)

var (
	ErrUnknownProvider = errors.New("unknown completion provider")
	ErrNoChoices       = errors.New("no completion generated")
)

// New returns the Completer selected by conf.Provider. Request timeouts are
// enforced by the HTTP client handed to the provider.
func New(conf config.Completion) (conversationpkg.Completer, error) {
	httpClient := &http.Client{Timeout: conf.Timeout}

	switch conf.Provider {
	case "openai":
		return NewOpenAI(conf, httpClient), nil
	case "ollama":
		return NewOllama(conf, httpClient)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, conf.Provider)
	}
}
