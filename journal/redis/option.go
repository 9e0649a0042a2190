package redis

import (
	"time"

	"github.com/hallwick/stage/journal"
	"go.uber.org/zap"
)

type CounterOption struct {
	Expires      time.Duration
	Publish      bool
	PublishTopic string
	PatternFunc  func(prefix string, kind journal.Kind) string
	Log          *zap.Logger
}

type CounterOptionFunc func(opt *CounterOption)

func OptExpires(dt time.Duration) CounterOptionFunc {
	return func(opt *CounterOption) {
		opt.Expires = dt
	}
}

func OptPublish(name ...string) CounterOptionFunc {
	return func(opt *CounterOption) {
		opt.Publish = true
		if len(name) > 0 {
			opt.PublishTopic = name[0]
		}
	}
}

func OptPattern(fn func(prefix string, kind journal.Kind) string) CounterOptionFunc {
	return func(opt *CounterOption) {
		opt.PatternFunc = fn
	}
}

func OptLogger(logger *zap.Logger) CounterOptionFunc {
	return func(opt *CounterOption) {
		opt.Log = logger
	}
}
