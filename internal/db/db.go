package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pehchaan/pehchaan_be/internal/models"
)

func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Migrate creates the schema plus the partial unique indexes that make the
// one-active-engagement-per-actor invariants durable against insert races.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Assignment{},
		&models.WorkLog{},
		&models.Gig{},
	); err != nil {
		return err
	}

	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_worklog_per_laborer
			ON work_logs (laborer_id) WHERE status = 'ACTIVE'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_open_gig_per_laborer
			ON gigs (laborer_id) WHERE status IN ('REQUESTED','ACCEPTED','IN_PROGRESS','PENDING_PAYMENT')`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_open_gig_per_consumer
			ON gigs (consumer_id) WHERE status IN ('REQUESTED','ACCEPTED','IN_PROGRESS','PENDING_PAYMENT')`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}
