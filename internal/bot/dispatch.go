package bot

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
)

// Dispatcher hands a reply off for processing. queued is false when a reply
// for the same channel is already in flight and args was dropped.
type Dispatcher interface {
	Dispatch(ctx context.Context, args ChatArgs) (queued bool, err error)
}

// InlineDispatcher responds on the calling goroutine.
type InlineDispatcher struct {
	Responder *Responder
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, args ChatArgs) (bool, error) {
	return true, d.Responder.Respond(ctx, args)
}

// RiverDispatcher queues replies as river jobs in Postgres.
type RiverDispatcher struct {
	Client *river.Client[pgx.Tx]
}

func (d *RiverDispatcher) Dispatch(ctx context.Context, args ChatArgs) (bool, error) {
	job, err := d.Client.Insert(ctx, args, nil)
	if err != nil {
		return false, err
	}
	return !job.UniqueSkippedAsDuplicate, nil
}
