package discord

import (
	"context"
	"fmt"

	conversationpkg "convbot/pkg/conversation"
	"github.com/bwmarrin/discordgo"
)

// MessageLimit is the longest message Discord accepts, in characters.
const MessageLimit = 2000

// API is the part of *discordgo.Session the bot talks to.
type API interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Platform struct {
	api   API
	state *discordgo.State
}

// NewPlatform wraps api. state may be nil, in which case every channel
// lookup goes to the REST API.
func NewPlatform(api API, state *discordgo.State) *Platform {
	return &Platform{
		api:   api,
		state: state,
	}
}

func RawMessage(m *discordgo.Message) conversationpkg.RawMessage {
	msg := conversationpkg.RawMessage{
		ID:        m.ID,
		Text:      m.Content,
		ChannelID: m.ChannelID,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorDisplayName = m.Author.Username
	}
	if m.MessageReference != nil {
		msg.ParentMessageID = m.MessageReference.MessageID
	}
	return msg
}

// ThreadOf reports whether channelID is a thread and, if so, which channel
// it belongs to.
func (p *Platform) ThreadOf(ctx context.Context, channelID string) (conversationpkg.Thread, bool, error) {
	channel, err := p.channel(ctx, channelID)
	if err != nil {
		return conversationpkg.Thread{}, false, fmt.Errorf("lookup channel %s: %w", channelID, err)
	}
	if !channel.IsThread() {
		return conversationpkg.Thread{}, false, nil
	}
	return conversationpkg.Thread{
		ChannelID:       channel.ID,
		ParentChannelID: channel.ParentID,
	}, true, nil
}

func (p *Platform) channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if p.state != nil {
		if channel, err := p.state.Channel(channelID); err == nil {
			return channel, nil
		}
	}
	return p.api.Channel(channelID, discordgo.WithContext(ctx))
}

func (p *Platform) FetchRecent(ctx context.Context, channelID string, limit int) ([]conversationpkg.RawMessage, error) {
	messages, err := p.api.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	result := make([]conversationpkg.RawMessage, len(messages))
	for i, m := range messages {
		result[i] = RawMessage(m)
	}
	return result, nil
}

// Resolver returns a ParentResolver for the reply chain ending at trigger.
// Discord embeds the replied-to message in every reply it returns, so each
// hop is served from the previous one when possible.
func (p *Platform) Resolver(trigger *discordgo.Message) conversationpkg.ParentResolver {
	r := &resolver{
		platform: p,
		known:    make(map[string]*discordgo.Message),
	}
	r.remember(trigger)
	return r
}

type resolver struct {
	platform *Platform
	known    map[string]*discordgo.Message
}

func (r *resolver) remember(m *discordgo.Message) {
	if m != nil && m.ReferencedMessage != nil {
		r.known[m.ReferencedMessage.ID] = m.ReferencedMessage
	}
}

func (r *resolver) ResolveParent(ctx context.Context, msg conversationpkg.RawMessage) (conversationpkg.RawMessage, error) {
	parent, ok := r.known[msg.ParentMessageID]
	if !ok {
		var err error
		parent, err = r.platform.api.ChannelMessage(msg.ChannelID, msg.ParentMessageID, discordgo.WithContext(ctx))
		if err != nil {
			return conversationpkg.RawMessage{}, err
		}
	}

	r.remember(parent)

	raw := RawMessage(parent)
	if raw.ChannelID == "" {
		raw.ChannelID = msg.ChannelID
	}
	return raw, nil
}

func (p *Platform) Reply(ctx context.Context, channelID, messageID, text string) error {
	_, err := p.api.ChannelMessageSendReply(channelID, text, &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
	}, discordgo.WithContext(ctx))
	return err
}
