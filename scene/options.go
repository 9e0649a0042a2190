package scene

import (
	"github.com/hallwick/stage"
	"go.uber.org/zap"
)

type Options struct {
	// Initial names the scene the world starts in.
	Initial string `default:"main"`
	// Topic is the feed topic lifecycle events publish to.
	Topic string `default:"lifecycle"`

	Log  *zap.Logger
	Feed stage.Publisher
}

type OptionFunc func(opt *Options)

func OptLogger(log *zap.Logger) OptionFunc {
	return func(opt *Options) {
		opt.Log = log
	}
}

func OptFeed(pub stage.Publisher, topic ...string) OptionFunc {
	return func(opt *Options) {
		opt.Feed = pub
		if len(topic) > 0 {
			opt.Topic = topic[0]
		}
	}
}

func OptInitial(name string) OptionFunc {
	return func(opt *Options) {
		opt.Initial = name
	}
}
