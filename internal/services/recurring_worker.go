package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/logger"
)

// OwnerReport is the outcome of one owner's processing pass.
type OwnerReport struct {
	UserID uint           `json:"user_id"`
	Report *ProcessReport `json:"report,omitempty"`
	Err    error          `json:"-"`
}

// ProcessAllOwners runs ProcessDueRules for every active user, at most
// concurrency owners at a time. One owner's failure never stops the others;
// it is recorded in that owner's OwnerReport. The returned error is non-nil
// only when the user list cannot be loaded or ctx is cancelled.
func ProcessAllOwners(ctx context.Context, users UserServicer, recurring RecurringServicer, today time.Time, concurrency int) ([]OwnerReport, error) {
	userIDs, err := users.ListActiveUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu      sync.Mutex
		reports = make([]OwnerReport, 0, len(userIDs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			report, err := recurring.ProcessDueRules(gctx, userID, today)
			if err != nil {
				logger.Get().Errorw("recurring pass failed for owner", "user_id", userID, "error", err)
			} else if len(report.Failures) > 0 {
				logger.Get().Warnw("recurring pass finished with failures",
					"user_id", userID,
					"created", report.Created,
					"failures", len(report.Failures),
				)
			}

			mu.Lock()
			reports = append(reports, OwnerReport{UserID: userID, Report: report, Err: err})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}
