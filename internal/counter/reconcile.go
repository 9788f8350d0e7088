package counter

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/queue"
	"github.com/xenn00/chat-delivery/internal/utils/types"
)

// HandleReconcileJob applies a queued counter change to the durable row. The durable store
// records the job id with the change, so a job id is applied at most once. The redis marker
// only short-circuits repeats and is written after the change commits.
func (t *Tracker) HandleReconcileJob(ctx context.Context, job queue.Job) error {
	var p types.ReadStatusJobPayload
	if err := jsoniter.Unmarshal(job.Payload, &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", job.Type, err)
	}

	marker := reconcileMarkerKey(job.ID)
	seen, err := t.rdb.Exists(ctx, marker).Result()
	if err != nil {
		return err
	}
	if seen > 0 {
		log.Debug().Str("job_id", job.ID).Msg("reconcile job already applied")
		return nil
	}

	var applied bool
	switch job.Type {
	case queue.JobReadStatusIncrement, queue.JobReadStatusDecrement:
		applied, err = t.durable.ApplyUnreadJob(ctx, job.ID, p.RoomID, p.UserID, p.Delta)
	case queue.JobReadStatusReset:
		applied, err = t.durable.ApplyReadJob(ctx, job.ID, p.RoomID, p.UserID, p.MessageID, p.ReadAt)
	default:
		err = fmt.Errorf("unknown reconcile job type %q", job.Type)
	}
	if err != nil {
		return err
	}
	if !applied {
		log.Debug().Str("job_id", job.ID).Msg("reconcile job recorded by durable store")
	}

	if err := t.rdb.Set(context.WithoutCancel(ctx), marker, 1, t.cfg.ReconcileMarkerTTL).Err(); err != nil {
		log.Warn().Err(err).Str("job_id", job.ID).Msg("reconcile marker not written")
	}
	return nil
}
