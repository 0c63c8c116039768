package bot

import (
	"context"
	"log/slog"
	"strings"
)

// Replier posts text as a reply to a message on one chat platform.
type Replier interface {
	Reply(ctx context.Context, channelID, messageID, text string) error
}

// MessageSender cleans up generated text before handing it to a Replier.
type MessageSender struct {
	replier Replier
	botName string
	limit   int
}

func NewMessageSender(replier Replier, botName string, limit int) *MessageSender {
	return &MessageSender{
		replier: replier,
		botName: botName,
		limit:   limit,
	}
}

func (sender *MessageSender) Send(ctx context.Context, channelID, messageID, content string) error {
	content = sender.format(content)
	if strings.TrimSpace(content) == "" {
		slog.WarnContext(ctx, "Dropping empty reply", slog.String("channel_id", channelID), slog.String("message_id", messageID))
		return nil
	}
	return sender.replier.Reply(ctx, channelID, messageID, content)
}

// format strips the "Name: " speaker prefix the model copies from the
// transcript and cuts the text to the platform limit.
func (sender *MessageSender) format(content string) string {
	if sender.botName != "" {
		content = strings.ReplaceAll(content, sender.botName+": ", "")
	}

	runes := []rune(content)
	if sender.limit > 0 && len(runes) > sender.limit {
		content = string(runes[:sender.limit])
	}
	return content
}
