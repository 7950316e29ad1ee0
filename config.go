package main

import "github.com/samgozman/fin-board/scavenger/wsb"

// Env is a structure that holds all the environment variables that are used in the app.
type Env struct {
	DiscordWebhookURL string `mapstructure:"DISCORD_WEBHOOK_URL" validate:"required"`
	FMPAPIKey         string `mapstructure:"FMP_API_KEY"`
	SentryDSN         string `mapstructure:"SENTRY_DSN"`
	TelegramChannelID string `mapstructure:"TELEGRAM_CHANNEL_ID"`
	TelegramBotToken  string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	PostgresDSN       string `mapstructure:"POSTGRES_DSN"`
	StateFile         string `mapstructure:"STATE_FILE"`
}

type Config struct {
	env           *Env
	macroKeywords []string // Macro calendar rows must match one of these to make the board
	threadQuery   string   // Forum search query for the weekly thread
	boardCron     string   // Weekly board schedule, UTC
	relayCron     string   // Thread relay schedule, UTC
}

// NewConfig creates a new Config object with the given Env and default values from DefaultConfig.
func NewConfig(env *Env) *Config {
	c := DefaultConfig()
	c.env = env
	if c.env.StateFile == "" {
		c.env.StateFile = "last_earnings_post.txt"
	}
	return c
}

// DefaultConfig creates a new Config object with default values.
func DefaultConfig() *Config {
	return &Config{
		env: &Env{},
		macroKeywords: []string{
			"fomc",
			"fed",
			"powell",
			"cpi",
			"pce",
			"inflation",
			"nonfarm",
			"nfp",
			"payroll",
			"unemployment",
			"jobless",
			"gdp",
			"retail sales",
			"pmi",
			"ism",
			"consumer confidence",
			"treasury",
			"bond auction",
			"housing starts",
		},
		threadQuery: wsb.DefaultQuery,
		// Board goes out Sunday evening, the relay follows on Monday
		// around the US market open when the thread is usually up.
		boardCron: "0 21 * * 0",
		relayCron: "30 13 * * 1",
	}
}
