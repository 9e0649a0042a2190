// Package redis counts lifecycle events in redis, one counter per kind.
package redis

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/hallwick/stage/journal"
	"github.com/hallwick/stage/utils"
	"golang.org/x/exp/constraints"
)

// Counters tracks one redis counter per entry kind under a shared
// prefix, "journal:claims" style.
type Counters[T constraints.Integer] interface {
	Inc(kind journal.Kind) (T, error)
	IncBy(kind journal.Kind, c T) (T, error)
	Load(kind journal.Kind) (T, bool)
	Remove(kind journal.Kind) bool
	Subscribe(kind journal.Kind) chan T
	SubscribeAll() chan Sub[T]
}

type Sub[T any] struct {
	Topic string
	Value T
}

var DefaultPattern = func(prefix string, kind journal.Kind) string {
	return prefix + ":" + utils.KindKey(string(kind))
}

func keyOf(prefix string, kind journal.Kind, opt CounterOption) string {
	if opt.PatternFunc != nil {
		return opt.PatternFunc(prefix, kind)
	}

	return DefaultPattern(prefix, kind)
}

type kindCounters[T constraints.Integer] struct {
	prefix   string
	rediscli *redis.Client
	Option   CounterOption
}

func NewCounters[T constraints.Integer](prefix string, rediscli *redis.Client, ops ...CounterOptionFunc) Counters[T] {
	var opts CounterOption
	for _, op := range ops {
		op(&opts)
	}

	return &kindCounters[T]{
		prefix:   prefix,
		rediscli: rediscli,
		Option:   opts,
	}
}

func (c *kindCounters[T]) key(kind journal.Kind) string {
	return keyOf(c.prefix, kind, c.Option)
}

func (c *kindCounters[T]) Inc(kind journal.Kind) (T, error) {
	var (
		ctx  = context.Background()
		opts = c.Option
		key  = c.key(kind)
		z    T
		incr *redis.IntCmd
	)

	_, err := c.rediscli.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		if opts.Expires > 0 {
			pipe.Expire(ctx, key, opts.Expires)
		}
		return nil
	})

	if err != nil {
		return z, err
	}

	if opts.Publish {
		c.publish(kind, (T)(incr.Val()))
	}

	return (T)(incr.Val()), nil
}

func (c *kindCounters[T]) IncBy(kind journal.Kind, n T) (T, error) {
	var (
		ctx  = context.Background()
		opts = c.Option
		key  = c.key(kind)
		z    T
		incr *redis.IntCmd
	)

	_, err := c.rediscli.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.IncrBy(ctx, key, int64(n))
		if opts.Expires > 0 {
			pipe.Expire(ctx, key, opts.Expires)
		}
		return nil
	})

	if err != nil {
		return z, err
	}

	if opts.Publish {
		c.publish(kind, (T)(incr.Val()))
	}

	return (T)(incr.Val()), nil
}

func (c *kindCounters[T]) Load(kind journal.Kind) (T, bool) {
	var (
		ctx  = context.Background()
		opts = c.Option
		z    T
	)

	v, err := c.rediscli.GetEx(ctx, c.key(kind), opts.Expires).Int64()
	if err != nil {
		return z, false
	}

	return (T)(v), true
}

func (c *kindCounters[T]) Remove(kind journal.Kind) bool {
	var ctx = context.Background()

	_, err := c.rediscli.Del(ctx, c.key(kind)).Result()
	return err == nil
}

func (c *kindCounters[T]) Subscribe(kind journal.Kind) chan T {
	var (
		ctx   = context.Background()
		ch    = make(chan T)
		topic = c.key(kind)
	)

	if len(c.Option.PublishTopic) > 0 {
		topic = c.Option.PublishTopic
	}

	pubsub := c.rediscli.Subscribe(ctx, topic)
	go func() {
		var value T
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}

			if err = json.Unmarshal([]byte(msg.Payload), &value); err != nil {
				return
			}

			ch <- value
		}
	}()

	return ch
}

func (c *kindCounters[T]) SubscribeAll() chan Sub[T] {
	var (
		ctx   = context.Background()
		ch    = make(chan Sub[T])
		topic = c.prefix + ":*"
	)

	if c.Option.PatternFunc != nil {
		topic = c.Option.PatternFunc(c.prefix, journal.Kind("*"))
	}

	pubsub := c.rediscli.PSubscribe(ctx, topic)
	go func() {
		for {
			var sub Sub[T]
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}

			sub.Topic = msg.Channel
			if err = json.Unmarshal([]byte(msg.Payload), &sub.Value); err != nil {
				return
			}

			ch <- sub
		}
	}()

	return ch
}

func (c *kindCounters[T]) publish(kind journal.Kind, val T) error {
	var (
		ctx   = context.Background()
		topic = c.key(kind)
	)

	if len(c.Option.PublishTopic) > 0 {
		topic = c.Option.PublishTopic
	}

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	c.debug("publish %v to key %s", val, topic)
	_, err = c.rediscli.Publish(ctx, topic, b).Result()
	return err
}

func (c *kindCounters[T]) debug(f string, args ...interface{}) {
	if c.Option.Log != nil {
		log := c.Option.Log.Sugar()
		log.Debugf(f, args...)
	}
}
