package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	env, err := loadEnv()
	if err != nil {
		logger.Error("Invalid environment", "error", err)
		os.Exit(1)
	}

	if env.SentryDSN != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:              env.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			logger.Error("Error initializing sentry", "error", err)
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	app := &App{
		cnf:    NewConfig(env),
		logger: logger,
	}
	app.start()
}

// loadEnv reads the environment into Env and validates the required keys.
func loadEnv() (*Env, error) {
	v := viper.New()
	v.AutomaticEnv()
	for _, key := range []string{
		"DISCORD_WEBHOOK_URL",
		"FMP_API_KEY",
		"SENTRY_DSN",
		"TELEGRAM_CHANNEL_ID",
		"TELEGRAM_BOT_TOKEN",
		"POSTGRES_DSN",
		"STATE_FILE",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	env := &Env{}
	if err := v.Unmarshal(env); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(env); err != nil {
		return nil, err
	}
	return env, nil
}
