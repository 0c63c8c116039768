package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"convbot/internal/conversation"
	"convbot/internal/discord"
	"convbot/internal/telegram"
	conversationpkg "convbot/pkg/conversation"
	"github.com/bwmarrin/discordgo"
	"gopkg.in/telebot.v4"
)

const busyReply = "Wait for the reply to your previous message."

// ignored reports whether msg should never get an answer: the bot's own
// messages and "!" commands meant for other bots.
func ignored(msg conversationpkg.RawMessage, botID string) bool {
	return msg.AuthorID == botID || strings.HasPrefix(msg.Text, "!")
}

type DiscordHandler struct {
	Platform   *discord.Platform
	Assembler  *conversation.Assembler
	Dispatcher Dispatcher
}

// Handle answers m when it sits in an allow-listed channel, using its reply
// chain, or in a thread under one, using the thread's recent history.
func (h *DiscordHandler) Handle(ctx context.Context, m *discordgo.Message) error {
	raw := discord.RawMessage(m)
	if ignored(raw, h.Assembler.BotID) {
		return nil
	}

	var transcript conversationpkg.Transcript
	if h.Assembler.AllowList.Contains(m.ChannelID) {
		transcript = h.Assembler.ReplyChain(ctx, raw, h.Platform.Resolver(m))
	} else {
		thread, ok, err := h.Platform.ThreadOf(ctx, m.ChannelID)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		transcript, err = h.Assembler.ThreadWindow(ctx, thread, h.Platform)
		if err != nil {
			return err
		}
	}

	return dispatch(ctx, h.Dispatcher, h.Platform, ChatArgs{
		Platform:   PlatformDiscord,
		ChannelID:  m.ChannelID,
		MessageID:  m.ID,
		Transcript: transcript,
	})
}

// TelegramHandler answers reply chains in allow-listed chats.
type TelegramHandler struct {
	Platform   *telegram.Platform
	Assembler  *conversation.Assembler
	Dispatcher Dispatcher
}

func (h *TelegramHandler) Handle(ctx context.Context, m *telebot.Message) error {
	raw := telegram.RawMessage(m)
	if ignored(raw, h.Assembler.BotID) || !h.Assembler.AllowList.Contains(raw.ChannelID) {
		return nil
	}

	return dispatch(ctx, h.Dispatcher, h.Platform, ChatArgs{
		Platform:   PlatformTelegram,
		ChannelID:  raw.ChannelID,
		MessageID:  raw.ID,
		Transcript: h.Assembler.ReplyChain(ctx, raw, telegram.Resolver(m)),
	})
}

func dispatch(ctx context.Context, dispatcher Dispatcher, replier Replier, args ChatArgs) error {
	if args.Transcript.Empty() {
		return nil
	}

	slog.DebugContext(ctx, "Dispatching reply",
		slog.String("platform", args.Platform),
		slog.String("channel_id", args.ChannelID),
		slog.String("message_id", args.MessageID),
		slog.Int("utterances", len(args.Transcript)))

	queued, err := dispatcher.Dispatch(ctx, args)
	if err != nil {
		return fmt.Errorf("dispatch %s message %s: %w", args.Platform, args.MessageID, err)
	}

	if !queued {
		return replier.Reply(ctx, args.ChannelID, args.MessageID, busyReply)
	}
	return nil
}
