package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/samgozman/fin-board/archivist"
	"github.com/samgozman/fin-board/composer"
	"github.com/samgozman/fin-board/internal/state"
	"github.com/samgozman/fin-board/jobs"
	"github.com/samgozman/fin-board/publisher"
	"github.com/samgozman/fin-board/scavenger/fmp"
	"github.com/samgozman/fin-board/scavenger/wsb"
)

type App struct {
	cnf    *Config
	logger *slog.Logger
}

func (a *App) start() {
	// Sentry hub for fatal errors
	hub := fatalHub()
	defer hub.Flush(2 * time.Second)

	discord, err := publisher.NewDiscordPublisher(a.cnf.env.DiscordWebhookURL)
	if err != nil {
		hub.CaptureException(err)
		panic(err)
	}

	renderer, err := composer.NewComposer()
	if err != nil {
		hub.CaptureException(err)
		panic(err)
	}

	fmpClient := fmp.NewClient(a.cnf.env.FMPAPIKey, a.cnf.macroKeywords)

	boardJob := jobs.NewCalendarJob(fmpClient, renderer, discord)
	relayJob := jobs.NewThreadJob(wsb.NewClient(), discord, state.NewStore(a.cnf.env.StateFile)).
		Query(a.cnf.threadQuery)

	if a.cnf.env.TelegramBotToken != "" && a.cnf.env.TelegramChannelID != "" {
		tg, err := publisher.NewTelegramPublisher(a.cnf.env.TelegramChannelID, a.cnf.env.TelegramBotToken)
		if err != nil {
			a.logger.Warn("Telegram mirror disabled", "error", err)
			hub.CaptureException(err)
		} else {
			boardJob.Mirror(tg)
			relayJob.Mirror(tg)
		}
	}

	if a.cnf.env.PostgresDSN != "" {
		arch, err := archivist.NewArchivist(a.cnf.env.PostgresDSN)
		if err != nil {
			a.logger.Warn("Publication archive disabled", "error", err)
			hub.CaptureException(err)
		} else {
			boardJob.Archive(arch.Entities.Publications)
			relayJob.Archive(arch.Entities.Publications)
			a.auditArchive(arch)
		}
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		hub.CaptureException(err)
		panic(err)
	}

	_, err = s.NewJob(
		gocron.CronJob(a.cnf.boardCron, false),
		gocron.NewTask(boardJob.Run()),
	)
	if err != nil {
		captureSchedulingError(hub, "WeeklyBoard", err)
		panic(err)
	}

	_, err = s.NewJob(
		gocron.CronJob(a.cnf.relayCron, false),
		gocron.NewTask(relayJob.Run()),
	)
	if err != nil {
		captureSchedulingError(hub, "ThreadRelay", err)
		panic(err)
	}

	defer func() { _ = s.Shutdown() }()
	s.Start()

	a.logger.Info("Started fin-board successfully")
	select {}
}

// auditArchive logs how much the app published over the last week, as a
// startup sanity check of the archive connection.
func (a *App) auditArchive(arch *archivist.Archivist) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pubs, err := arch.Entities.Publications.FindAllSince(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		a.logger.Warn("Error reading recent publications", "error", err)
		return
	}
	a.logger.Info("Publication archive connected", "recent_publications", len(pubs))
}
