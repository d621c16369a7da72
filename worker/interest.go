package worker

import (
	"context"
	"time"

	"gamblelog/models"

	log "github.com/sirupsen/logrus"
)

// InterestApplier applies the monthly P-Bank interest run
type InterestApplier interface {
	EnsureMonthlyInterest(ctx context.Context, now time.Time) (*models.InterestRun, bool, error)
}

// StartInterestWorker checks for a new interest month immediately and then on every tick.
// It blocks until ctx is cancelled.
func StartInterestWorker(ctx context.Context, loans InterestApplier, interval time.Duration) error {
	return runTicker(ctx, "Interest", interval, func(ctx context.Context) {
		applyInterest(ctx, loans, time.Now())
	})
}

func applyInterest(ctx context.Context, loans InterestApplier, now time.Time) {
	run, applied, err := loans.EnsureMonthlyInterest(ctx, now)
	if err != nil {
		log.Errorf("Error applying monthly interest: %v", err)
		return
	}
	if applied || run == nil {
		return
	}
	log.Debugf("Monthly interest already applied for %s", run.RunDate.Format("2006-01"))
}

// runTicker runs fn once and then every interval until ctx is cancelled
func runTicker(ctx context.Context, name string, interval time.Duration, fn func(ctx context.Context)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Infof("%s worker started, interval %v", name, interval)
	fn(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Infof("%s worker shutting down (context cancelled)...", name)
			return nil
		case <-ticker.C:
			fn(ctx)
		}
	}
}
