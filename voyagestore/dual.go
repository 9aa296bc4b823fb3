package voyagestore

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oceanvolt/voyage-optimizer/voyage"
)

// DualStore writes every solved run to a primary store and, if present, a
// secondary store concurrently. The scheduler uses this to keep a durable
// Postgres history while also maintaining a local SQLite mirror.
type DualStore struct {
	Primary   *Store
	Secondary *Store
}

// SaveRun writes to both stores concurrently and fails if either write
// fails, so the two stores never silently diverge.
func (d *DualStore) SaveRun(ctx context.Context, runID string, solvedAt time.Time, result *voyage.OptimizationResult) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.Primary.SaveRun(ctx, runID, solvedAt, result)
	})
	if d.Secondary != nil {
		g.Go(func() error {
			return d.Secondary.SaveRun(ctx, runID, solvedAt, result)
		})
	}

	return g.Wait()
}

// Close closes both underlying stores.
func (d *DualStore) Close() error {
	var err error
	if e := d.Primary.Close(); e != nil {
		err = e
	}
	if d.Secondary != nil {
		if e := d.Secondary.Close(); e != nil {
			err = e
		}
	}
	return err
}
