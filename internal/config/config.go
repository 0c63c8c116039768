package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ilyakaznacheev/cleanenv"
)

var ErrInvalidSnowflake = errors.New("invalid discord snowflake")

type Config struct {
	Env        string `env:"APP_ENV" env-default:"development"`
	BotName    string `env:"BOT_NAME"`
	Discord    Discord
	Telegram   Telegram
	Completion Completion
	Prompt     Prompt
	Postgres   Postgres
	Log        Log
}

func (conf Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("env", conf.Env),
		slog.String("bot_name", conf.BotName),
		slog.Group("discord",
			slog.String("token", "<hidden>"),
			slog.String("bot_id", conf.Discord.BotID),
			slog.String("channels", strings.Join(conf.Discord.Channels, ","))),
		slog.Group("telegram",
			slog.Bool("enabled", conf.Telegram.Enabled()),
			slog.String("chats", strings.Join(conf.Telegram.Chats, ","))),
		slog.Group("completion",
			slog.String("provider", conf.Completion.Provider),
			slog.String("base_url", conf.Completion.BaseURL),
			slog.String("api_key", "<hidden>"),
			slog.String("model", conf.Completion.Model),
			slog.Int("max_tokens", conf.Completion.MaxTokens),
			slog.Duration("timeout", conf.Completion.Timeout),
		),
		slog.Group("prompt",
			slog.String("file", conf.Prompt.File),
			slog.Int("length", len(conf.Prompt.System))),
		slog.Group("postgres",
			slog.Bool("enabled", conf.Postgres.Enabled()),
			slog.String("url", "<hidden>"),
		),
	)
}

func (conf Config) IsProduction() bool {
	return conf.Env == "production"
}

type Discord struct {
	Token    string   `env:"DISCORD_TOKEN" env-required:"true"`
	BotID    string   `env:"DISCORD_BOT_ID" env-required:"true"`
	Channels []string `env:"DISCORD_CHANNELS" env-required:"true"`
}

type Telegram struct {
	Token string   `env:"TELEGRAM_TOKEN"`
	Chats []string `env:"TELEGRAM_CHATS"`
}

func (t Telegram) Enabled() bool {
	return t.Token != ""
}

type Completion struct {
	Provider    string        `env:"COMPLETION_PROVIDER" env-default:"openai"`
	BaseURL     string        `env:"COMPLETION_BASE_URL" env-default:"https://api.together.xyz/v1"`
	APIKey      string        `env:"OPENAI_API_KEY"`
	Model       string        `env:"COMPLETION_MODEL" env-required:"true"`
	MaxTokens   int           `env:"COMPLETION_MAX_TOKENS" env-default:"500"`
	Temperature float64       `env:"COMPLETION_TEMPERATURE" env-default:"0.7"`
	Timeout     time.Duration `env:"COMPLETION_TIMEOUT" env-default:"30s"`
	PerSecond   float64       `env:"COMPLETION_PER_SECOND" env-default:"1"`
}

type Prompt struct {
	File   string `env:"SYSTEM_PROMPT_FILE" env-default:"system.prompt"`
	System string
}

type Postgres struct {
	URL string `env:"POSTGRES_URL"`
}

func (p Postgres) Enabled() bool {
	return p.URL != ""
}

type Log struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

func Read() (Config, error) {
	var conf Config
	err := cleanenv.ReadEnv(&conf)
	if err != nil {
		return Config{}, err
	}

	err = conf.validate()
	if err != nil {
		return Config{}, err
	}

	prompt, err := os.ReadFile(conf.Prompt.File)
	if err != nil {
		return Config{}, fmt.Errorf("read system prompt: %w", err)
	}
	conf.Prompt.System = string(prompt)

	return conf, nil
}

func (conf Config) validate() error {
	ids := append([]string{conf.Discord.BotID}, conf.Discord.Channels...)
	for _, id := range ids {
		if _, err := snowflake.ParseString(id); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidSnowflake, id)
		}
	}

	switch conf.Completion.Provider {
	case "openai":
		if conf.Completion.APIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai provider")
		}
	case "ollama":
	default:
		return fmt.Errorf("unknown completion provider %q", conf.Completion.Provider)
	}

	return nil
}
