package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// StoreGC periodically reclaims BadgerDB value log space. Badger never
// garbage-collects on its own; without this worker the message log
// grows with every rewrite of the sequence counters.
type StoreGC struct {
	db       *badger.DB
	log      *slog.Logger
	interval time.Duration
}

func NewStoreGC(db *badger.DB, log *slog.Logger, interval time.Duration) *StoreGC {
	return &StoreGC{db: db, log: log, interval: interval}
}

func (w *StoreGC) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping store GC")
			return nil
		case <-ticker.C:
			// One call per reclaimable file; ErrNoRewrite means done.
			for {
				if err := w.db.RunValueLogGC(0.5); err != nil {
					break
				}
			}
		}
	}
}
