package journal

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/hallwick/stage/feed"
	"go.uber.org/atomic"
)

// Attach registers a router handler that records every lifecycle event
// from topic into rec. Call before the feed runs.
func Attach(f *feed.Feed, topic string, rec Recorder) error {
	sub, err := f.NewSubscriber()
	if err != nil {
		return err
	}

	var seq atomic.Uint64

	f.AddRouterNoPublishHandler("journal", topic, sub, func(msg *message.Message) error {
		entry, ok := FromMessage(msg)
		if !ok {
			return nil
		}

		entry.Seq = seq.Inc()
		return rec.Record(msg.Context(), entry)
	})

	return nil
}
