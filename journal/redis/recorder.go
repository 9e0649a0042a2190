package redis

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/hallwick/stage/journal"
)

// Recorder journals entries as per-kind counters. The entries
// themselves are not kept, use the db recorder and Tee when the full
// stream matters.
type Recorder struct {
	prefix   string
	rediscli *redis.Client
	opts     CounterOption
	counters Counters[int64]
}

var (
	_ journal.Recorder = (*Recorder)(nil)
	_ journal.Counter  = (*Recorder)(nil)
)

func NewRecorder(prefix string, rediscli *redis.Client, ops ...CounterOptionFunc) *Recorder {
	var opts CounterOption
	for _, op := range ops {
		op(&opts)
	}

	return &Recorder{
		prefix:   prefix,
		rediscli: rediscli,
		opts:     opts,
		counters: NewCounters[int64](prefix, rediscli, ops...),
	}
}

func (r *Recorder) Record(ctx context.Context, entry journal.Entry) error {
	_, err := r.counters.Inc(entry.Kind)
	return err
}

func (r *Recorder) CountByKind(ctx context.Context, kind journal.Kind) (int64, error) {
	v, err := r.rediscli.Get(ctx, keyOf(r.prefix, kind, r.opts)).Int64()
	if err == redis.Nil {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	return v, nil
}
