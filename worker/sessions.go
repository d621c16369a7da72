package worker

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// SessionPurger removes expired login sessions
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// StartSessionCleanupWorker purges expired sessions immediately and then on every tick.
// It blocks until ctx is cancelled.
func StartSessionCleanupWorker(ctx context.Context, sessions SessionPurger, interval time.Duration) error {
	return runTicker(ctx, "Session cleanup", interval, func(ctx context.Context) {
		purgeSessions(ctx, sessions, time.Now())
	})
}

func purgeSessions(ctx context.Context, sessions SessionPurger, now time.Time) {
	removed, err := sessions.PurgeExpiredSessions(ctx, now)
	if err != nil {
		log.Errorf("Error purging expired sessions: %v", err)
		return
	}
	if removed > 0 {
		log.WithField("removed", removed).Info("Purged expired sessions")
	}
}
