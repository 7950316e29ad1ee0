package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PublicationsDB struct {
	Conn *gorm.DB
}

func NewPublicationsDB(db *gorm.DB) *PublicationsDB {
	return &PublicationsDB{Conn: db.Table("publications")}
}

// Publication is one delivered message: a weekly board or a relayed thread image.
type Publication struct {
	ID            uuid.UUID      `gorm:"primaryKey;type:uuid;not null;" json:"id"` // ID of the publication (UUID)
	Job           string         `gorm:"size:32;not null;" json:"job"`             // Job that produced it ("board" or "relay")
	Channel       string         `gorm:"size:64" json:"channel"`                   // Delivery channel ("discord", "telegram")
	PublicationID string         `gorm:"size:64" json:"publication_id"`            // External message id, when the channel returns one
	Message       string         `gorm:"size:1024" json:"message"`                 // Text content that went with the publication
	Meta          datatypes.JSON `gorm:"" json:"meta"`                             // Job-specific payload (week range, source post id, etc.)
	PublishedAt   time.Time      `gorm:"not null" json:"published_at"`             // Delivery time
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
}

func (p *Publication) Validate() error {
	if p.Job == "" {
		return ErrJobEmpty
	}
	if len(p.Job) > 32 {
		return ErrJobTooLong
	}
	if len(p.Channel) > 64 {
		return ErrChannelTooLong
	}
	if len(p.PublicationID) > 64 {
		return ErrPubIDTooLong
	}
	if p.PublishedAt.IsZero() {
		return ErrPublishedAtEmpty
	}
	return nil
}

func (p *Publication) BeforeCreate(*gorm.DB) error {
	// Create UUID ID.
	p.ID = uuid.New()

	if len(p.Message) > 1024 {
		p.Message = p.Message[:1024]
	}

	return p.Validate()
}

func (db *PublicationsDB) Create(ctx context.Context, p *Publication) error {
	res := db.Conn.WithContext(ctx).Create(p)
	if res.Error != nil {
		return res.Error
	}

	return nil
}

// FindAllSince returns publications delivered at or after the given time.
func (db *PublicationsDB) FindAllSince(ctx context.Context, since time.Time) ([]*Publication, error) {
	var p []*Publication
	res := db.Conn.WithContext(ctx).Where("published_at >= ?", since).Find(&p)
	if res.Error != nil {
		return nil, res.Error
	}

	return p, nil
}

// FindLastByJob returns the most recent publication of the given job,
// or nil if the job never published.
func (db *PublicationsDB) FindLastByJob(ctx context.Context, job string) (*Publication, error) {
	var p []*Publication
	res := db.Conn.WithContext(ctx).Where("job = ?", job).Order("published_at DESC").Limit(1).Find(&p)
	if res.Error != nil {
		return nil, res.Error
	}
	if len(p) == 0 {
		return nil, nil
	}

	return p[0], nil
}
