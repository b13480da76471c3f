package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/mateovidal/dropcart-backend/internal/supplierorders"
	"github.com/mateovidal/dropcart-backend/internal/suppliers"
	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	"github.com/mateovidal/dropcart-backend/pkg/logger"
)

type fakeTrackerService struct {
	sweepable []models.SupplierOrder
	refresh   func(id uuid.UUID) error
	refreshed []uuid.UUID
}

func (f *fakeTrackerService) Create(context.Context, supplierorders.CreateInput) (*supplierorders.FulfillmentResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeTrackerService) RefreshTracking(_ context.Context, id uuid.UUID) (*suppliers.TrackingInfo, error) {
	if f.refresh != nil {
		if err := f.refresh(id); err != nil {
			return nil, err
		}
	}
	f.refreshed = append(f.refreshed, id)
	return nil, nil
}

func (f *fakeTrackerService) GetByID(context.Context, uuid.UUID, uuid.UUID) (*models.SupplierOrder, error) {
	return nil, errors.New("not used")
}

func (f *fakeTrackerService) ListSweepable(context.Context, int) ([]models.SupplierOrder, error) {
	return f.sweepable, nil
}

func sweepRows(n int) []models.SupplierOrder {
	rows := make([]models.SupplierOrder, n)
	for i := range rows {
		rows[i] = models.SupplierOrder{ID: uuid.New(), SupplierID: uuid.New()}
	}
	return rows
}

func TestTrackingSweepRefreshesAllRows(t *testing.T) {
	tracker := &fakeTrackerService{sweepable: sweepRows(3)}
	job, err := NewTrackingSweepJob(TrackingSweepJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Tracker: tracker,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, tracker.refreshed, 3)
}

func TestTrackingSweepContinuesPastFailures(t *testing.T) {
	rows := sweepRows(3)
	failing := rows[1].ID
	tracker := &fakeTrackerService{
		sweepable: rows,
		refresh: func(id uuid.UUID) error {
			if id == failing {
				return errors.New("supplier timeout")
			}
			return nil
		},
	}
	job, err := NewTrackingSweepJob(TrackingSweepJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Tracker: tracker,
	})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Len(t, tracker.refreshed, 2)
}

func TestTrackingSweepEmptyBatch(t *testing.T) {
	job, err := NewTrackingSweepJob(TrackingSweepJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Tracker: &fakeTrackerService{},
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
}

func TestTrackingSweepStopsOnCanceledContext(t *testing.T) {
	tracker := &fakeTrackerService{sweepable: sweepRows(5)}
	job, err := NewTrackingSweepJob(TrackingSweepJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Tracker: tracker,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = job.Run(ctx)
	require.Error(t, err)
	assert.Empty(t, tracker.refreshed)
}
