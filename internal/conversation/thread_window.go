package conversation

import (
	"context"
	"fmt"

	conversationpkg "convbot/pkg/conversation"
)

// ThreadWindow returns the system prompt followed by the last
// ThreadWindowSize messages of the thread in chronological order. Threads
// whose parent channel is not allow-listed get an empty transcript, which
// callers treat as "do not respond".
func (a *Assembler) ThreadWindow(ctx context.Context, thread conversationpkg.Thread, fetcher conversationpkg.HistoryFetcher) (conversationpkg.Transcript, error) {
	if thread.ParentChannelID == "" {
		return nil, fmt.Errorf("thread %s: %w", thread.ChannelID, ErrOrphanThread)
	}

	if !a.AllowList.Contains(thread.ParentChannelID) {
		return conversationpkg.Transcript{}, nil
	}

	transcript := make(conversationpkg.Transcript, 0, ThreadWindowSize+1)
	transcript = append(transcript, systemUtterance(a.SystemPrompt))

	recent, err := fetcher.FetchRecent(ctx, thread.ChannelID, ThreadWindowSize)
	if err != nil {
		return nil, fmt.Errorf("fetch thread %s history: %w", thread.ChannelID, err)
	}

	if len(recent) > ThreadWindowSize {
		recent = recent[:ThreadWindowSize]
	}

	// History arrives newest first.
	for i := len(recent) - 1; i >= 0; i-- {
		transcript = append(transcript, Classify(recent[i], a.BotID))
	}

	return transcript, nil
}
