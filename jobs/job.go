// Package jobs contains the scheduled pipelines: the weekly board job and
// the thread relay job.
package jobs

import (
	"context"
	"time"

	"github.com/samgozman/fin-board/archivist/models"
	"github.com/samgozman/fin-board/scavenger/fmp"
	"github.com/samgozman/fin-board/scavenger/wsb"
)

// JobFunc is a type for job function that will be executed by the scheduler.
type JobFunc func()

// calendarSource provides the three datasets the board is built from.
type calendarSource interface {
	Earnings(ctx context.Context, from, to time.Time) (fmp.Earnings, error)
	MarketCaps(ctx context.Context, symbols []string) (map[string]int64, error)
	EconomicEvents(ctx context.Context, from, to time.Time) (fmp.MacroEvents, error)
}

// webhookPublisher is the slice of the Discord publisher the jobs depend on.
type webhookPublisher interface {
	PublishImage(ctx context.Context, filename string, image []byte, content string) error
	PublishText(ctx context.Context, content string) error
}

// mirrorPublisher is the optional secondary channel (Telegram).
type mirrorPublisher interface {
	Publish(msg string) (string, error)
	PublishImage(filename string, image []byte, caption string) (string, error)
}

// threadScavenger is the slice of the wsb client the relay job depends on.
type threadScavenger interface {
	Search(ctx context.Context, query string, limit int) ([]*wsb.Post, error)
	DownloadImage(ctx context.Context, imageURL string) ([]byte, error)
}

// lastPostStore persists the duplicate-post guard state.
type lastPostStore interface {
	LastPostID() (string, error)
	SetLastPostID(id string) error
}

// publicationArchive is the slice of the archivist the jobs write and read.
type publicationArchive interface {
	Create(ctx context.Context, p *models.Publication) error
	FindLastByJob(ctx context.Context, job string) (*models.Publication, error)
}
