package cron

import (
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	db   *gorm.DB
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron: c,
		db:   db,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Hourly: drop blacklist rows for tokens that have expired anyway
	_, err := m.cron.AddFunc("0 0 * * * *", func() {
		m.logJobStart("purge_token_blacklist")
		m.PurgeTokenBlacklist()
	})
	if err != nil {
		return err
	}

	// Daily at 03:00: hard-delete rows soft-deleted more than 30 days ago
	_, err = m.cron.AddFunc("0 0 3 * * *", func() {
		m.logJobStart("reap_soft_deleted")
		m.ReapSoftDeleted()
	})
	if err != nil {
		return err
	}

	return nil
}

func (m *CronManager) logJobStart(name string) {
	log.Printf("[CRON] Running job: %s", name)
}
