package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/samgozman/fin-board/archivist/models"
	"github.com/samgozman/fin-board/composer"
	"github.com/samgozman/fin-board/internal/utils"
	"github.com/samgozman/fin-board/pkg/errlvl"
)

// CalendarJob builds the weekly earnings + macro board and publishes it.
// It should be run once a week, before the market week opens.
type CalendarJob struct {
	source    calendarSource     // fetches earnings rows, market caps and macro events
	renderer  *composer.Composer // renders the board PNG
	publisher webhookPublisher   // posts the board to the webhook
	mirror    mirrorPublisher    // optional secondary channel
	archive   publicationArchive // optional publications archive
	logger    *slog.Logger
}

func NewCalendarJob(source calendarSource, renderer *composer.Composer, publisher webhookPublisher) *CalendarJob {
	return &CalendarJob{
		source:    source,
		renderer:  renderer,
		publisher: publisher,
		logger:    slog.Default(),
	}
}

// Mirror sets the optional secondary publisher.
func (j *CalendarJob) Mirror(m mirrorPublisher) *CalendarJob {
	j.mirror = m
	return j
}

// Archive sets the optional publications archive.
func (j *CalendarJob) Archive(a publicationArchive) *CalendarJob {
	j.archive = a
	return j
}

// Run returns the job function that will be executed by the scheduler.
func (j *CalendarJob) Run() JobFunc {
	return func() {
		// Market cap lookups are one request per symbol, so the budget is generous
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()
		j.logger.Info("[board] Running weekly board")

		tx := sentry.StartTransaction(ctx, "RunWeeklyBoardJob")
		tx.Op = "job-board"

		// Sentry performance monitoring
		hub := sentry.GetHubFromContext(ctx)
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
			ctx = sentry.SetHubOnContext(ctx, hub)
		}

		defer func() {
			tx.Finish()
			hub.Flush(2 * time.Second)
		}()

		monday, friday := composer.NextMarketWeek(time.Now())
		var missing []string

		// Fetch failures degrade to an empty dataset: the board is still
		// published, just sparse, and the failed source is marked on it.
		span := tx.StartChild("Earnings")
		earnings, err := j.source.Earnings(ctx, monday, friday)
		span.Finish()
		if err != nil {
			j.logger.Error("[board] Error fetching earnings", "error", err)
			utils.CaptureSentryException("boardEarningsFetchError", hub, errlvl.Wrap(err, errlvl.WARN))
			missing = append(missing, "earnings")
		}

		var caps map[string]int64
		if symbols := earnings.Symbols(); len(symbols) > 0 {
			span = tx.StartChild("MarketCaps")
			caps, err = j.source.MarketCaps(ctx, symbols)
			span.Finish()
			if err != nil {
				j.logger.Error("[board] Error fetching market caps", "error", err)
				utils.CaptureSentryException("boardMarketCapFetchError", hub, errlvl.Wrap(err, errlvl.WARN))
				missing = append(missing, "market caps")
			}
		}

		span = tx.StartChild("EconomicEvents")
		macro, err := j.source.EconomicEvents(ctx, monday, friday)
		span.Finish()
		if err != nil {
			j.logger.Error("[board] Error fetching macro events", "error", err)
			utils.CaptureSentryException("boardMacroFetchError", hub, errlvl.Wrap(err, errlvl.WARN))
			missing = append(missing, "macro events")
		}

		week := composer.BuildWeek(monday, friday, earnings, caps, macro)
		week.MissingSources = missing

		span = tx.StartChild("RenderBoard")
		board, err := j.renderer.RenderBoard(week)
		span.Finish()
		if err != nil {
			j.logger.Error("[board] Error rendering board", "error", err)
			utils.CaptureSentryException("boardRenderError", hub, errlvl.Wrap(err, errlvl.ERROR))
			return
		}

		msg := formatBoardMessage(week)

		span = tx.StartChild("PublishImage")
		err = j.publisher.PublishImage(ctx, "earnings_calendar.png", board, msg)
		span.Finish()
		if err != nil {
			j.logger.Error("[board] Error publishing board", "error", err)
			utils.CaptureSentryException("boardPublishError", hub, err)
			return
		}
		hub.AddBreadcrumb(&sentry.Breadcrumb{
			Category: "successful",
			Message:  fmt.Sprintf("published board for %s", monday.Format(time.DateOnly)),
			Level:    sentry.LevelInfo,
		}, nil)

		mirrorID := j.mirrorBoard(hub, board, msg)
		j.archiveBoard(ctx, hub, week, msg, mirrorID)

		j.logger.Info("[board] Weekly board published", "week", monday.Format(time.DateOnly))
	}
}

// mirrorBoard sends the board to the secondary channel and returns the
// message id the channel assigned. Mirror failures are reported but never
// fail the run: the webhook post already went out.
func (j *CalendarJob) mirrorBoard(hub *sentry.Hub, board []byte, msg string) string {
	if j.mirror == nil {
		return ""
	}
	pubID, err := j.mirror.PublishImage("earnings_calendar.png", board, msg)
	if err != nil {
		j.logger.Warn("[board] Error mirroring board", "error", err)
		utils.CaptureSentryException("boardMirrorError", hub, errlvl.Wrap(err, errlvl.WARN))
		return ""
	}
	return pubID
}

// archiveBoard records every delivery of this run: the webhook post and,
// when the mirror went out, the mirror message with its external id.
func (j *CalendarJob) archiveBoard(ctx context.Context, hub *sentry.Hub, week *composer.Week, msg, mirrorID string) {
	if j.archive == nil {
		return
	}

	meta, err := json.Marshal(map[string]any{
		"monday":          week.Monday.Format(time.DateOnly),
		"friday":          week.Friday.Format(time.DateOnly),
		"missing_sources": week.MissingSources,
	})
	if err != nil {
		j.logger.Warn("[board] Error marshalling publication meta", "error", err)
		return
	}

	pubs := []*models.Publication{{
		Job:         "board",
		Channel:     "discord",
		Message:     msg,
		Meta:        meta,
		PublishedAt: time.Now().UTC(),
	}}
	if mirrorID != "" {
		pubs = append(pubs, &models.Publication{
			Job:           "board",
			Channel:       "telegram",
			PublicationID: mirrorID,
			Message:       msg,
			Meta:          meta,
			PublishedAt:   time.Now().UTC(),
		})
	}
	for _, pub := range pubs {
		if err := j.archive.Create(ctx, pub); err != nil {
			j.logger.Warn("[board] Error archiving publication", "error", err, "channel", pub.Channel)
			utils.CaptureSentryException("boardArchiveError", hub, errlvl.Wrap(err, errlvl.WARN))
		}
	}
}

// formatBoardMessage formats the text that goes with the board image.
func formatBoardMessage(week *composer.Week) string {
	m := fmt.Sprintf(
		"**Weekly Calendar** (%s → %s)\n",
		week.Monday.Format(time.DateOnly), week.Friday.Format(time.DateOnly),
	)
	m += "Earnings: NYSE+NASDAQ, mcap ≥ $100M\n"
	m += "Macro events included where available"
	if len(week.MissingSources) > 0 {
		m += "\n⚠️ Partial data, sources unavailable: " + strings.Join(week.MissingSources, ", ")
	}
	return m
}
