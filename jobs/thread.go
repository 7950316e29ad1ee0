package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"github.com/getsentry/sentry-go"
	"github.com/samgozman/fin-board/archivist/models"
	"github.com/samgozman/fin-board/internal/utils"
	"github.com/samgozman/fin-board/pkg/errlvl"
	"github.com/samgozman/fin-board/scavenger/wsb"
)

const threadImageFilename = "wsb_weekly_earnings.png"

// ThreadJob finds the weekly earnings thread on the forum, extracts its
// image and relays it to the webhook. A state file keeps the id of the last
// relayed post so the same thread is never posted twice.
type ThreadJob struct {
	scavenger threadScavenger    // searches the forum and downloads images
	publisher webhookPublisher   // posts the relayed image to the webhook
	state     lastPostStore      // duplicate-post guard
	mirror    mirrorPublisher    // optional secondary channel
	archive   publicationArchive // optional publications archive
	logger    *slog.Logger
	query     string
	limit     int
	retryUnit time.Duration // base unit of the search retry delay
}

func NewThreadJob(scavenger threadScavenger, publisher webhookPublisher, state lastPostStore) *ThreadJob {
	return &ThreadJob{
		scavenger: scavenger,
		publisher: publisher,
		state:     state,
		logger:    slog.Default(),
		query:     wsb.DefaultQuery,
		limit:     15,
		retryUnit: time.Second,
	}
}

// Query overrides the default search query.
func (j *ThreadJob) Query(q string) *ThreadJob {
	j.query = q
	return j
}

// Mirror sets the optional secondary publisher.
func (j *ThreadJob) Mirror(m mirrorPublisher) *ThreadJob {
	j.mirror = m
	return j
}

// Archive sets the optional publications archive.
func (j *ThreadJob) Archive(a publicationArchive) *ThreadJob {
	j.archive = a
	return j
}

// Run returns the job function that will be executed by the scheduler.
func (j *ThreadJob) Run() JobFunc {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		j.logger.Info("[relay] Running weekly thread relay")

		tx := sentry.StartTransaction(ctx, "RunThreadRelayJob")
		tx.Op = "job-relay"

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

		span := tx.StartChild("Search")
		posts, err := j.searchWithRetry(ctx)
		span.Finish()
		if err != nil {
			// Unlike the board fetchers there is nothing to degrade to here
			j.logger.Error("[relay] Error searching for the thread", "error", err)
			utils.CaptureSentryException("relaySearchError", hub, errlvl.Wrap(err, errlvl.ERROR))
			return
		}

		post := wsb.PickCandidate(posts, wsb.MinCandidateScore)
		if post == nil {
			j.logger.Warn("[relay] No thread candidate found")
			j.publishNotice(ctx, hub, "Weekly earnings thread not found in the latest search results.")
			return
		}

		lastID, err := j.state.LastPostID()
		if err != nil {
			j.logger.Warn("[relay] Error reading state file", "error", err)
			utils.CaptureSentryException("relayStateReadError", hub, errlvl.Wrap(err, errlvl.WARN))
		}
		if lastID != "" && post.ID == lastID {
			j.logger.Info("[relay] Latest thread already relayed", "post_id", post.ID)
			return
		}

		// An empty state file may mean a fresh deployment rather than a new
		// thread. When the archive is on, its last relay record settles it.
		if lastID == "" && j.archive != nil {
			archID, err := j.lastArchivedPostID(ctx)
			if err != nil {
				j.logger.Warn("[relay] Error reading last archived relay", "error", err)
				utils.CaptureSentryException("relayArchiveReadError", hub, errlvl.Wrap(err, errlvl.WARN))
			}
			if archID != "" && post.ID == archID {
				j.logger.Info("[relay] Latest thread already relayed per archive", "post_id", post.ID)
				j.saveLastPostID(hub, post.ID)
				return
			}
		}

		imageURL, ok := wsb.ExtractImageURL(post)
		if !ok {
			// Post a link instead of failing silently, and still mark the
			// post as handled so the notice is not repeated next run.
			j.logger.Warn("[relay] Thread found but no image detected", "post_id", post.ID)
			notice := fmt.Sprintf(
				"Weekly earnings thread found but no image detected.\n**%s**\n%s",
				post.Title, post.PermalinkURL(),
			)
			if j.publishNotice(ctx, hub, notice) {
				j.saveLastPostID(hub, post.ID)
			}
			return
		}

		span = tx.StartChild("DownloadImage")
		image, err := j.scavenger.DownloadImage(ctx, imageURL)
		span.Finish()
		if err != nil {
			j.logger.Error("[relay] Error downloading thread image", "error", err)
			utils.CaptureSentryException("relayDownloadError", hub, errlvl.Wrap(err, errlvl.ERROR))
			return
		}

		msg := formatThreadMessage(post)

		span = tx.StartChild("PublishImage")
		err = j.publisher.PublishImage(ctx, threadImageFilename, image, msg)
		span.Finish()
		if err != nil {
			j.logger.Error("[relay] Error publishing thread image", "error", err)
			utils.CaptureSentryException("relayPublishError", hub, err)
			return
		}
		hub.AddBreadcrumb(&sentry.Breadcrumb{
			Category: "successful",
			Message:  fmt.Sprintf("relayed thread %s", post.ID),
			Level:    sentry.LevelInfo,
		}, nil)

		j.saveLastPostID(hub, post.ID)
		mirrorID := j.mirrorThread(hub, image, msg)
		j.archiveThread(ctx, hub, post, msg, mirrorID)

		j.logger.Info("[relay] Thread relayed", "post_id", post.ID, "url", post.PermalinkURL())
	}
}

// searchWithRetry queries the forum with a short bounded retry loop for
// transient hiccups: 3 attempts, linearly increasing delay.
func (j *ThreadJob) searchWithRetry(ctx context.Context) ([]*wsb.Post, error) {
	var posts []*wsb.Post
	err := retry.Do(
		func() error {
			var e error
			posts, e = j.scavenger.Search(ctx, j.query, j.limit)
			return e
		},
		retry.Attempts(3),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return time.Duration(n+2) * j.retryUnit
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search results: %w", err)
	}
	return posts, nil
}

// publishNotice posts a text-only fallback message and mirrors it to the
// secondary channel. Returns true when the webhook post went out.
func (j *ThreadJob) publishNotice(ctx context.Context, hub *sentry.Hub, notice string) bool {
	if err := j.publisher.PublishText(ctx, notice); err != nil {
		j.logger.Error("[relay] Error publishing fallback notice", "error", err)
		utils.CaptureSentryException("relayNoticeError", hub, err)
		return false
	}
	if j.mirror != nil {
		if _, err := j.mirror.Publish(notice); err != nil {
			j.logger.Warn("[relay] Error mirroring fallback notice", "error", err)
			utils.CaptureSentryException("relayMirrorError", hub, errlvl.Wrap(err, errlvl.WARN))
		}
	}
	return true
}

func (j *ThreadJob) saveLastPostID(hub *sentry.Hub, id string) {
	if err := j.state.SetLastPostID(id); err != nil {
		j.logger.Warn("[relay] Error writing state file", "error", err)
		utils.CaptureSentryException("relayStateWriteError", hub, errlvl.Wrap(err, errlvl.WARN))
	}
}

// mirrorThread sends the image to the secondary channel and returns the
// message id the channel assigned.
func (j *ThreadJob) mirrorThread(hub *sentry.Hub, image []byte, msg string) string {
	if j.mirror == nil {
		return ""
	}
	pubID, err := j.mirror.PublishImage(threadImageFilename, image, msg)
	if err != nil {
		j.logger.Warn("[relay] Error mirroring thread image", "error", err)
		utils.CaptureSentryException("relayMirrorError", hub, errlvl.Wrap(err, errlvl.WARN))
		return ""
	}
	return pubID
}

// archiveThread records every delivery of this run: the webhook post and,
// when the mirror went out, the mirror message with its external id.
func (j *ThreadJob) archiveThread(ctx context.Context, hub *sentry.Hub, post *wsb.Post, msg, mirrorID string) {
	if j.archive == nil {
		return
	}

	meta, err := json.Marshal(map[string]any{
		"post_id":   post.ID,
		"permalink": post.PermalinkURL(),
	})
	if err != nil {
		j.logger.Warn("[relay] Error marshalling publication meta", "error", err)
		return
	}

	pubs := []*models.Publication{{
		Job:         "relay",
		Channel:     "discord",
		Message:     msg,
		Meta:        meta,
		PublishedAt: time.Now().UTC(),
	}}
	if mirrorID != "" {
		pubs = append(pubs, &models.Publication{
			Job:           "relay",
			Channel:       "telegram",
			PublicationID: mirrorID,
			Message:       msg,
			Meta:          meta,
			PublishedAt:   time.Now().UTC(),
		})
	}
	for _, pub := range pubs {
		if err := j.archive.Create(ctx, pub); err != nil {
			j.logger.Warn("[relay] Error archiving publication", "error", err, "channel", pub.Channel)
			utils.CaptureSentryException("relayArchiveError", hub, errlvl.Wrap(err, errlvl.WARN))
		}
	}
}

// lastArchivedPostID returns the source post id of the newest archived relay
// publication, or an empty string if the job never published.
func (j *ThreadJob) lastArchivedPostID(ctx context.Context) (string, error) {
	pub, err := j.archive.FindLastByJob(ctx, "relay")
	if err != nil || pub == nil {
		return "", err
	}

	var meta struct {
		PostID string `json:"post_id"`
	}
	if err := json.Unmarshal(pub.Meta, &meta); err != nil {
		return "", fmt.Errorf("error decoding archived relay meta: %w", err)
	}
	return meta.PostID, nil
}

// formatThreadMessage formats the relay message: title and link for provenance.
func formatThreadMessage(post *wsb.Post) string {
	return fmt.Sprintf(
		"**%s**\nPosted: %s\n%s",
		post.Title,
		post.Created().Format("2006-01-02 15:04 UTC"),
		post.PermalinkURL(),
	)
}
