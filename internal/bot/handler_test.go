package bot_test

import (
	"context"

	"convbot/internal/bot"
	"convbot/internal/conversation"
	"convbot/internal/discord"
	"convbot/internal/telegram"
	conversationpkg "convbot/pkg/conversation"
	"github.com/bwmarrin/discordgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/telebot.v4"
)

const (
	discordBotID = "1194929672945934356"
	allowedID    = "1194933874371874886"
)

func discordMessage(id, channelID, authorID, text, parent string) *discordgo.Message {
	m := &discordgo.Message{
		ID:        id,
		ChannelID: channelID,
		Content:   text,
		Author:    &discordgo.User{ID: authorID, Username: "user" + authorID},
	}
	if parent != "" {
		m.MessageReference = &discordgo.MessageReference{MessageID: parent, ChannelID: channelID}
	}
	return m
}

var _ = Describe("DiscordHandler", func() {
	var (
		ctx        context.Context
		api        *fakeDiscordAPI
		dispatcher *recordingDispatcher
		handler    *bot.DiscordHandler
	)

	system := conversationpkg.Utterance{Role: conversationpkg.RoleSystem, Text: "be nice"}

	BeforeEach(func() {
		ctx = context.Background()
		api = &fakeDiscordAPI{
			channels: map[string]*discordgo.Channel{
				allowedID: {ID: allowedID, Type: discordgo.ChannelTypeGuildText},
				"other":   {ID: "other", Type: discordgo.ChannelTypeGuildText},
				"thread":  {ID: "thread", Type: discordgo.ChannelTypeGuildPublicThread, ParentID: allowedID},
				"foreign": {ID: "foreign", Type: discordgo.ChannelTypeGuildPublicThread, ParentID: "other"},
			},
			messages: map[string]*discordgo.Message{},
		}
		dispatcher = &recordingDispatcher{}
		handler = &bot.DiscordHandler{
			Platform:   discord.NewPlatform(api, nil),
			Assembler:  conversation.NewAssembler(discordBotID, "be nice", conversationpkg.NewAllowList(allowedID)),
			Dispatcher: dispatcher,
		}
	})

	It("answers allow-listed channel messages with their reply chain", func() {
		api.messages["1"] = discordMessage("1", allowedID, "7", "what is go?", "")
		api.messages["2"] = discordMessage("2", allowedID, discordBotID, "a language", "1")
		trigger := discordMessage("3", allowedID, "7", "who made it?", "2")

		Expect(handler.Handle(ctx, trigger)).To(Succeed())

		Expect(dispatcher.dispatched).To(Equal([]bot.ChatArgs{{
			Platform:  bot.PlatformDiscord,
			ChannelID: allowedID,
			MessageID: "3",
			Transcript: conversationpkg.Transcript{
				system,
				{Role: conversationpkg.RoleUser, Text: "user7: what is go?"},
				{Role: conversationpkg.RoleAssistant, Text: "a language"},
				{Role: conversationpkg.RoleUser, Text: "user7: who made it?"},
			},
		}}))
	})

	It("answers thread messages with the thread history", func() {
		api.history = []*discordgo.Message{
			discordMessage("5", "thread", "7", "and now?", ""),
			discordMessage("4", "thread", discordBotID, "hello", ""),
		}

		Expect(handler.Handle(ctx, discordMessage("5", "thread", "7", "and now?", ""))).To(Succeed())

		Expect(dispatcher.dispatched).To(HaveLen(1))
		Expect(dispatcher.dispatched[0].ChannelID).To(Equal("thread"))
		Expect(dispatcher.dispatched[0].Transcript).To(Equal(conversationpkg.Transcript{
			system,
			{Role: conversationpkg.RoleAssistant, Text: "hello"},
			{Role: conversationpkg.RoleUser, Text: "user7: and now?"},
		}))
	})

	DescribeTable("ignores messages it must not answer",
		func(m *discordgo.Message) {
			Expect(handler.Handle(ctx, m)).To(Succeed())
			Expect(dispatcher.dispatched).To(BeEmpty())
			Expect(api.replies).To(BeEmpty())
		},
		Entry("own message", discordMessage("1", allowedID, discordBotID, "hi", "")),
		Entry("bang command", discordMessage("1", allowedID, "7", "!roll", "")),
		Entry("channel outside the allow-list", discordMessage("1", "other", "7", "hi", "")),
		Entry("thread under a channel outside the allow-list", discordMessage("1", "foreign", "7", "hi", "")),
	)

	It("fails when the channel cannot be looked up", func() {
		Expect(handler.Handle(ctx, discordMessage("1", "gone", "7", "hi", ""))).NotTo(Succeed())
	})

	It("tells the user to wait while a reply is in flight", func() {
		dispatcher.busy = true
		Expect(handler.Handle(ctx, discordMessage("9", allowedID, "7", "hello?", ""))).To(Succeed())
		Expect(api.replies).To(Equal([]reply{{
			ChannelID: allowedID,
			MessageID: "9",
			Text:      "Wait for the reply to your previous message.",
		}}))
	})
})

var _ = Describe("TelegramHandler", func() {
	var (
		dispatcher *recordingDispatcher
		handler    *bot.TelegramHandler
		chat       *telebot.Chat
	)

	BeforeEach(func() {
		dispatcher = &recordingDispatcher{}
		chat = &telebot.Chat{ID: -100123}
		handler = &bot.TelegramHandler{
			Platform:   telegram.NewPlatform(nil),
			Assembler:  conversation.NewAssembler("77", "be nice", conversationpkg.NewAllowList("-100123")),
			Dispatcher: dispatcher,
		}
	})

	It("answers allow-listed chats with the embedded reply chain", func() {
		parent := &telebot.Message{ID: 1, Text: "hi", Chat: chat, Sender: &telebot.User{ID: 77, Username: "convbot"}}
		trigger := &telebot.Message{ID: 2, Text: "hello", Chat: chat, Sender: &telebot.User{ID: 42, Username: "alice"}, ReplyTo: parent}

		Expect(handler.Handle(context.Background(), trigger)).To(Succeed())

		Expect(dispatcher.dispatched).To(Equal([]bot.ChatArgs{{
			Platform:  bot.PlatformTelegram,
			ChannelID: "-100123",
			MessageID: "2",
			Transcript: conversationpkg.Transcript{
				{Role: conversationpkg.RoleSystem, Text: "be nice"},
				{Role: conversationpkg.RoleAssistant, Text: "hi"},
				{Role: conversationpkg.RoleUser, Text: "alice: hello"},
			},
		}}))
	})

	It("ignores chats outside the allow-list", func() {
		trigger := &telebot.Message{ID: 2, Text: "hello", Chat: &telebot.Chat{ID: 5}, Sender: &telebot.User{ID: 42}}
		Expect(handler.Handle(context.Background(), trigger)).To(Succeed())
		Expect(dispatcher.dispatched).To(BeEmpty())
	})
})
