package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/mateovidal/dropcart-backend/internal/supplierorders"
	"github.com/mateovidal/dropcart-backend/pkg/logger"
)

const trackingSweepJobName = "tracking-sweep"

// TrackingSweepJobParams configure the tracking sweep.
type TrackingSweepJobParams struct {
	Logger  *logger.Logger
	Tracker supplierorders.Service
	Batch   int
}

type trackingSweepJob struct {
	logg    *logger.Logger
	tracker supplierorders.Service
	batch   int
}

// NewTrackingSweepJob builds the job that refreshes tracking for all
// in-flight supplier orders. One order's poll failure never aborts the rest.
func NewTrackingSweepJob(params TrackingSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Tracker == nil {
		return nil, fmt.Errorf("supplier order service required")
	}
	return &trackingSweepJob{
		logg:    params.Logger,
		tracker: params.Tracker,
		batch:   params.Batch,
	}, nil
}

func (j *trackingSweepJob) Name() string { return trackingSweepJobName }

func (j *trackingSweepJob) Run(ctx context.Context) error {
	rows, err := j.tracker.ListSweepable(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("list sweepable supplier orders: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	var errs error
	refreshed := 0
	for _, row := range rows {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		if _, err := j.tracker.RefreshTracking(ctx, row.ID); err != nil {
			rowCtx := j.logg.WithSupplierID(
				j.logg.WithField(ctx, "supplier_order_id", row.ID.String()),
				row.SupplierID.String())
			j.logg.Error(rowCtx, "tracking refresh failed", err)
			errs = multierr.Append(errs, fmt.Errorf("supplier order %s: %w", row.ID, err))
			continue
		}
		refreshed++
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"candidates": len(rows),
		"refreshed":  refreshed,
	}), "tracking sweep complete")
	return errs
}
