package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/mhansen/ingresslapse"
	"github.com/mhansen/ingresslapse/feed"
)

const politenessDelay = 1500 * time.Millisecond

// Store is the subset of history.Store the ingest loop needs. Keeping it as
// an interface here lets the loop be tested against a fake without pulling
// in a real SQLite database.
type Store interface {
	SavePage(actions []ingresslapse.Action, portals []ingresslapse.Portal) error
}

// Options configures one ingest run.
type Options struct {
	Lat, Lng     float64
	StopBeforeMs int64
	Now          func() time.Time
}

// Run drives the feed backward in time from now until stopBeforeMs,
// normalizing and persisting each page atomically. It terminates cleanly
// (nil error) on an empty page, a page whose oldest record falls before
// stopBeforeMs, or context cancellation between pages; it returns the
// underlying error for any network or parse failure, leaving whatever was
// already committed in place — the next run re-covers the same window via
// insert-or-ignore.
func Run(ctx context.Context, client *Client, store Store, opts Options) error {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	cursor := now().UnixMilli()
	seen := make(deduplicator, 0, 4096)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		page, err := client.Page(ctx, opts.Lat, opts.Lng, cursor)
		if err != nil {
			return fmt.Errorf("ingest.Run: %w", err)
		}
		if len(page.Result) == 0 {
			return nil
		}

		var actions []ingresslapse.Action
		var portals []ingresslapse.Portal
		for _, raw := range page.Result {
			if !seen.InsertFresh(raw.EventID) {
				continue
			}
			action, ps, ok := feed.Normalize(raw)
			if !ok {
				continue
			}
			actions = append(actions, action)
			portals = append(portals, ps...)
		}

		if err := store.SavePage(actions, portals); err != nil {
			return fmt.Errorf("ingest.Run: %w", err)
		}

		oldest := page.Result[len(page.Result)-1].TimestampMs
		if oldest < opts.StopBeforeMs {
			return nil
		}

		cursor = oldest - 1

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(politenessDelay):
		}
	}
}
