package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"convbot/internal/completion"
	"convbot/internal/config"
	"convbot/internal/conversation"
	"convbot/internal/discord"
	"convbot/internal/telegram"
	conversationpkg "convbot/pkg/conversation"
	"github.com/bwmarrin/discordgo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"golang.org/x/time/rate"
	"gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type Bot struct {
	Discord     *discordgo.Session
	Telegram    *telebot.Bot
	RiverClient *river.Client[pgx.Tx]
	Completer   conversationpkg.Completer

	discordHandler  *DiscordHandler
	telegramHandler *TelegramHandler
	db              *pgxpool.Pool
	conf            config.Config
}

func NewBot(conf config.Config) (*Bot, error) {
	completer, err := completion.New(conf.Completion)
	if err != nil {
		return nil, err
	}

	session, err := discordgo.New("Bot " + conf.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	discordPlatform := discord.NewPlatform(session, session.State)
	senders := map[string]*MessageSender{
		PlatformDiscord: NewMessageSender(discordPlatform, conf.BotName, discord.MessageLimit),
	}

	bot := &Bot{
		Discord:   session,
		Completer: completer,
		conf:      conf,
	}

	var api *telebot.Bot
	var telegramPlatform *telegram.Platform
	if conf.Telegram.Enabled() {
		api, err = telebot.NewBot(telebot.Settings{
			Token:   conf.Telegram.Token,
			Poller:  &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: logTelegramError,
		})
		if err != nil {
			return nil, fmt.Errorf("create telegram bot: %w", err)
		}
		telegramPlatform = telegram.NewPlatform(api)
		senders[PlatformTelegram] = NewMessageSender(telegramPlatform, conf.BotName, telegram.MessageLimit)
		bot.Telegram = api
	}

	responder := &Responder{
		Completer: completer,
		Limiter:   rate.NewLimiter(rate.Limit(conf.Completion.PerSecond), 1),
		Senders:   senders,
	}

	var dispatcher Dispatcher = &InlineDispatcher{Responder: responder}
	if conf.Postgres.Enabled() {
		bot.db, err = pgxpool.New(context.Background(), conf.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		workers := river.NewWorkers()
		river.AddWorker(workers, &ChatWorker{Responder: responder})

		bot.RiverClient, err = river.NewClient(riverpgxv5.New(bot.db), &river.Config{
			Queues: map[string]river.QueueConfig{
				river.QueueDefault: {MaxWorkers: 3},
			},
			Workers: workers,
		})
		if err != nil {
			bot.db.Close()
			return nil, fmt.Errorf("create river client: %w", err)
		}
		dispatcher = &RiverDispatcher{Client: bot.RiverClient}
	}

	bot.discordHandler = &DiscordHandler{
		Platform: discordPlatform,
		Assembler: conversation.NewAssembler(
			conf.Discord.BotID,
			conf.Prompt.System,
			conversationpkg.NewAllowList(conf.Discord.Channels...),
		),
		Dispatcher: dispatcher,
	}

	if api != nil {
		bot.telegramHandler = &TelegramHandler{
			Platform: telegramPlatform,
			Assembler: conversation.NewAssembler(
				strconv.FormatInt(api.Me.ID, 10),
				conf.Prompt.System,
				conversationpkg.NewAllowList(conf.Telegram.Chats...),
			),
			Dispatcher: dispatcher,
		}
	}

	return bot, nil
}

func logTelegramError(err error, c telebot.Context) {
	slog.Error("Failed to handle telegram message", slog.Any("error", err))
}

func (bot *Bot) Start(ctx context.Context) error {
	if ollama, ok := bot.Completer.(*completion.Ollama); ok {
		err := ollama.Pull(ctx)
		if err != nil {
			return fmt.Errorf("pull model: %w", err)
		}
	}

	if bot.RiverClient != nil {
		err := bot.RiverClient.Start(ctx)
		if err != nil {
			return fmt.Errorf("start river client: %w", err)
		}
		slog.Info("River client successfully started")
	}

	bot.Discord.AddHandler(func(s *discordgo.Session, ready *discordgo.Ready) {
		slog.Info("Discord bot connected", slog.String("name", ready.User.Username))
	})
	bot.Discord.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		err := bot.discordHandler.Handle(ctx, m.Message)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to handle discord message",
				slog.String("channel_id", m.ChannelID),
				slog.String("message_id", m.ID),
				slog.Any("error", err))
		}
	})

	err := bot.Discord.Open()
	if err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	slog.Info("Discord bot successfully started")

	if bot.Telegram != nil {
		bot.Telegram.Use(
			middleware.AutoRespond(),
		)

		bot.Telegram.Handle(telebot.OnText, func(c telebot.Context) error {
			return bot.telegramHandler.Handle(ctx, c.Message())
		})

		go bot.Telegram.Start()
		slog.Info("Telegram bot successfully started")
	}

	return nil
}

func (bot *Bot) Stop(ctx context.Context) {
	if bot.Telegram != nil {
		bot.Telegram.Stop()
	}

	err := bot.Discord.Close()
	if err != nil {
		slog.Error("Failed to close discord session", slog.Any("error", err))
	}

	if bot.RiverClient != nil {
		err = bot.RiverClient.Stop(ctx)
		if err != nil {
			slog.Error("Failed to stop river client", slog.Any("error", err))
		}
	}

	if bot.db != nil {
		bot.db.Close()
	}
}
