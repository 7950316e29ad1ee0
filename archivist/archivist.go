// Package archivist keeps a record of everything the app published, so that
// a run can be audited after the fact. Optional: only wired when a Postgres
// DSN is configured.
package archivist

import (
	"github.com/samgozman/fin-board/archivist/models"
	"gorm.io/gorm"
)

// Entities is a struct that contains all the entities that Archivist is responsible for.
type Entities struct {
	Publications *models.PublicationsDB
}

// Archivist is responsible for storing and retrieving data from the database.
type Archivist struct {
	db       *gorm.DB
	Entities *Entities
}

// NewArchivist creates a new Archivist with provided DSN to connect to database.
//
// DSN is a string in the format of: "user=gorm password=gorm dbname=gorm port=9920 sslmode=disable"
func NewArchivist(dsn string) (*Archivist, error) {
	conn, err := connectToPG(dsn)
	if err != nil {
		return nil, newError(errFailedConnection, err)
	}

	// Migrate the schema automatically for now.
	if err := conn.AutoMigrate(&models.Publication{}); err != nil {
		return nil, newError(errFailedMigration, err)
	}

	return &Archivist{
		db: conn,
		Entities: &Entities{
			Publications: models.NewPublicationsDB(conn),
		},
	}, nil
}
