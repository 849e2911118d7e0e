package storage

import (
	"context"
	"errors"

	"aaveLens/internal/model"
)

// Storage defines a sink for rate snapshots.
type Storage interface {
	PutRateSnapshots(ctx context.Context, snapshots []model.RateSnapshot) error
}

// Fanout writes every batch to each sink in order and joins their errors.
type Fanout []Storage

func (f Fanout) PutRateSnapshots(ctx context.Context, snapshots []model.RateSnapshot) error {
	var errs []error
	for _, sink := range f {
		if err := sink.PutRateSnapshots(ctx, snapshots); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
