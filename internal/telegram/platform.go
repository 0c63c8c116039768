package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	conversationpkg "convbot/pkg/conversation"
	"gopkg.in/telebot.v4"
)

// MessageLimit is the longest text message Telegram accepts, in characters.
const MessageLimit = 4096

// ErrNotEmbedded is returned when a reply target is not part of the update.
// The Bot API has no way to fetch a message by ID.
var ErrNotEmbedded = errors.New("replied-to message not embedded in update")

func RawMessage(m *telebot.Message) conversationpkg.RawMessage {
	msg := conversationpkg.RawMessage{
		ID:   strconv.Itoa(m.ID),
		Text: m.Text,
	}
	if msg.Text == "" {
		msg.Text = m.Caption
	}
	if m.Sender != nil {
		msg.AuthorID = strconv.FormatInt(m.Sender.ID, 10)
		msg.AuthorDisplayName = DisplayName(m.Sender)
	}
	if m.Chat != nil {
		msg.ChannelID = strconv.FormatInt(m.Chat.ID, 10)
	}
	// In forum topics every message implicitly replies to the topic header.
	if m.ReplyTo != nil && m.ReplyTo.TopicCreated == nil {
		msg.ParentMessageID = strconv.Itoa(m.ReplyTo.ID)
	}
	return msg
}

func DisplayName(user *telebot.User) string {
	if user.Username != "" {
		return user.Username
	}
	return user.FirstName
}

// Resolver serves the reply chain embedded in trigger.
func Resolver(trigger *telebot.Message) conversationpkg.ParentResolver {
	known := make(map[string]*telebot.Message)
	for m := trigger.ReplyTo; m != nil; m = m.ReplyTo {
		known[strconv.Itoa(m.ID)] = m
	}

	return conversationpkg.ParentResolverFunc(func(_ context.Context, msg conversationpkg.RawMessage) (conversationpkg.RawMessage, error) {
		parent, ok := known[msg.ParentMessageID]
		if !ok {
			return conversationpkg.RawMessage{}, fmt.Errorf("message %s: %w", msg.ParentMessageID, ErrNotEmbedded)
		}
		return RawMessage(parent), nil
	})
}

type Platform struct {
	api telebot.API
}

func NewPlatform(api telebot.API) *Platform {
	return &Platform{api: api}
}

func (p *Platform) Reply(_ context.Context, chatID, messageID, text string) error {
	chat, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id: %w", err)
	}
	id, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("parse message id: %w", err)
	}

	_, err = p.api.Send(telebot.ChatID(chat), text, &telebot.SendOptions{
		ReplyTo: &telebot.Message{ID: id, Chat: &telebot.Chat{ID: chat}},
	})
	return err
}
