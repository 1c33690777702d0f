// Package sweep runs the periodic anti-cheat pass: it rescans every
// progress record, flags suspicious users and logs a stats snapshot for
// staff. Scheduling follows a cron expression, same scheme as the rest of
// the server's periodic jobs.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"huntd/pkg/config"
	"huntd/pkg/logger"
	"huntd/pkg/stats"
	"huntd/pkg/store"
)

const defaultCron = "*/30 * * * *"

// Start starts the sweep scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, eff config.EffectiveConfigResult, firstOrdinal int) (context.CancelFunc, error) {
	sw := eff.Config.Sweep

	if !sw.Enabled {
		logger.Info("sweep_disabled")
		return func() {}, nil
	}

	cronExpr := sw.Cron
	if cronExpr == "" {
		cronExpr = defaultCron
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("sweep_invalid_cron", "cron", sw.Cron)
		return nil, fmt.Errorf("invalid sweep cron expression: %s", sw.Cron)
	}

	logger.Info("sweep_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, firstOrdinal)
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured cron
// expression and sleeps until that time.
func runScheduler(ctx context.Context, cronExpr string, firstOrdinal int) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("sweep_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("sweep_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
		case <-ctx.Done():
			logger.Info("sweep_scheduler_stopping")
			return
		}

		if err := RunOnce(firstOrdinal); err != nil {
			logger.Error("sweep_run_error", "error", err)
		}
	}
}

// RunOnce performs one sweep pass: recompute suspicion flags and log a
// stats snapshot. Exposed so staff tooling can trigger it on demand.
func RunOnce(firstOrdinal int) error {
	records, err := store.ListProgress()
	if err != nil {
		return err
	}

	flagged := 0
	for _, p := range records {
		if p.Flagged || !stats.Suspicious(p) {
			continue
		}
		next := p.Clone()
		next.Flagged = true
		err := store.CompareAndSaveProgress(p.UserID, p.Version, next)
		switch {
		case err == nil:
			flagged++
			logger.Warn("user_flagged", "user", p.UserID,
				"wrong_order", p.WrongOrderGuesses, "solved", p.SolvedCount())
		case errors.Is(err, store.ErrVersionConflict):
			// The user submitted mid-sweep; the next pass will see the
			// fresh record.
		default:
			return err
		}
	}

	g := stats.Compute(records, firstOrdinal)
	logger.Info("sweep_snapshot",
		"total_users", g.TotalUsers,
		"with_progress", g.UsersWithProgress,
		"total_guesses", g.TotalGuesses,
		"finished", g.Finished,
		"flagged", g.Flagged,
		"newly_flagged", flagged,
	)
	return nil
}
