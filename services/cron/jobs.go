package cron

import (
	"context"
	"log"
	"time"

	"github.com/derstakip/api/model"
	"github.com/derstakip/api/utils/auth"
)

// softDeleteRetention is how long soft-deleted rows linger before the
// reaper removes them for good.
const softDeleteRetention = 30 * 24 * time.Hour

// PurgeTokenBlacklist removes blacklist entries whose tokens have expired.
// Runs hourly; an expired token is rejected by validation regardless, so the
// row only exists to block still-valid revoked tokens.
func (m *CronManager) PurgeTokenBlacklist() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	purged, err := auth.NewBlacklistService(m.db).PurgeExpired(ctx)
	if err != nil {
		log.Printf("[CRON] purge_token_blacklist failed: %v", err)
		return
	}

	log.Printf("[CRON] purge_token_blacklist removed %d entries", purged)
}

// ReapSoftDeleted permanently deletes rows that were soft-deleted more than
// the retention period ago. Children go first so FK constraints hold.
func (m *CronManager) ReapSoftDeleted() {
	cutoff := time.Now().Add(-softDeleteRetention)

	reap := func(name string, value interface{}) {
		result := m.db.Unscoped().
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Delete(value)
		if result.Error != nil {
			log.Printf("[CRON] reap_soft_deleted %s failed: %v", name, result.Error)
			return
		}
		if result.RowsAffected > 0 {
			log.Printf("[CRON] reap_soft_deleted removed %d %s rows", result.RowsAffected, name)
		}
	}

	reap("tasks", &model.Task{})
	reap("courses", &model.Course{})
	reap("question_sessions", &model.QuestionSession{})
	reap("study_plans", &model.StudyPlan{})
	reap("users", &model.User{})
}
