package conversation

import (
	"context"
	"log/slog"
	"slices"

	conversationpkg "convbot/pkg/conversation"
)

// ReplyChain walks from trigger back along reply links and returns the
// visited messages oldest-first behind the system prompt. At most
// MaxReplyDepth messages are visited. A missing parent link or a failed
// lookup ends the walk; neither is an error.
func (a *Assembler) ReplyChain(ctx context.Context, trigger conversationpkg.RawMessage, resolver conversationpkg.ParentResolver) conversationpkg.Transcript {
	chain := make([]conversationpkg.Utterance, 0, MaxReplyDepth)

	current := trigger
	for depth := 0; depth < MaxReplyDepth; depth++ {
		chain = append(chain, Classify(current, a.BotID))

		if !current.HasParent() {
			break
		}

		parent, err := resolver.ResolveParent(ctx, current)
		if err != nil {
			slog.WarnContext(ctx, "Reply chain cut short",
				slog.String("message_id", current.ID),
				slog.String("parent_id", current.ParentMessageID),
				slog.Int("depth", depth),
				slog.Any("error", err))
			break
		}
		current = parent
	}

	slices.Reverse(chain)

	transcript := make(conversationpkg.Transcript, 0, len(chain)+1)
	transcript = append(transcript, systemUtterance(a.SystemPrompt))
	return append(transcript, chain...)
}
