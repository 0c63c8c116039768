package conversation

import (
	"context"
)

// ParentResolver looks up the message that msg replies to.
type ParentResolver interface {
	ResolveParent(ctx context.Context, msg RawMessage) (RawMessage, error)
}

type ParentResolverFunc func(ctx context.Context, msg RawMessage) (RawMessage, error)

func (fn ParentResolverFunc) ResolveParent(ctx context.Context, msg RawMessage) (RawMessage, error) {
	return fn(ctx, msg)
}

// HistoryFetcher returns up to limit of the most recent messages in a
// channel, newest first.
type HistoryFetcher interface {
	FetchRecent(ctx context.Context, channelID string, limit int) ([]RawMessage, error)
}

type HistoryFetcherFunc func(ctx context.Context, channelID string, limit int) ([]RawMessage, error)

func (fn HistoryFetcherFunc) FetchRecent(ctx context.Context, channelID string, limit int) ([]RawMessage, error) {
	return fn(ctx, channelID, limit)
}

type Completer interface {
	Complete(ctx context.Context, transcript Transcript) (string, error)
}
