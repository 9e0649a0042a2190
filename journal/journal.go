// Package journal records the lifecycle event stream into pluggable
// stores: an in-memory ring, a gorm database or redis counters.
package journal

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/creasty/defaults"
	"github.com/hallwick/stage"
	"github.com/imdario/mergo"
	"go.uber.org/multierr"
)

type Kind string

const (
	KindSpawn     Kind = "spawn"
	KindDestroy   Kind = "destroy"
	KindAttach    Kind = "attach"
	KindDetach    Kind = "detach"
	KindPersist   Kind = "persist"
	KindLoad      Kind = "load"
	KindUnload    Kind = "unload"
	KindClaim     Kind = "claim"
	KindRelease   Kind = "release"
	KindDuplicate Kind = "duplicate"
)

// Entry is one recorded lifecycle event.
type Entry struct {
	Seq   uint64
	Kind  Kind
	Name  string
	Type  string
	Actor string
	Scene string
	At    time.Time
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type Tailer interface {
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

type Counter interface {
	CountByKind(ctx context.Context, kind Kind) (int64, error)
}

type Options struct {
	// Buffer bounds in-memory recorders.
	Buffer int `default:"256"`
	// BatchSize chunks database writes.
	BatchSize int `default:"100"`
}

type OptFunc func(opt *Options) error

func OptBuffer(n int) OptFunc {
	return func(opt *Options) error {
		opt.Buffer = n
		return nil
	}
}

func OptBatchSize(n int) OptFunc {
	return func(opt *Options) error {
		opt.BatchSize = n
		return nil
	}
}

func OptMerge(src Options) OptFunc {
	return func(opt *Options) error {
		return mergo.Merge(opt, src, mergo.WithOverride)
	}
}

func BuildOptions(ops ...OptFunc) (Options, error) {
	var opts Options
	defaults.Set(&opts)

	for _, op := range ops {
		if err := op(&opts); err != nil {
			return opts, err
		}
	}

	return opts, nil
}

// FromMessage decodes a feed message into an Entry. Messages that are
// not lifecycle events are reported false.
func FromMessage(msg *message.Message) (Entry, bool) {
	switch stage.JSONMarshaler.NameFromMessage(msg) {
	case "stage.ActorSpawned":
		var ev stage.ActorSpawned
		if err := stage.JSONMarshaler.Unmarshal(msg, &ev); err != nil {
			return Entry{}, false
		}
		return Entry{Kind: KindSpawn, Name: ev.Name, Actor: ev.GUID, Scene: ev.Scene, At: ev.At}, true
	case "stage.ActorDestroyed":
		var ev stage.ActorDestroyed
		if err := stage.JSONMarshaler.Unmarshal(msg, &ev); err != nil {
			return Entry{}, false
		}
		return Entry{Kind: KindDestroy, Name: ev.Name, Actor: ev.GUID, Scene: ev.Scene, At: ev.At}, true
	case "stage.ActorPersisted":
		var ev stage.ActorPersisted
		if err := stage.JSONMarshaler.Unmarshal(msg, &ev); err != nil {
			return Entry{}, false
		}
		return Entry{Kind: KindPersist, Name: ev.Name, Actor: ev.GUID, At: ev.At}, true
	case "stage.ComponentAttached":
		var ev stage.ComponentAttached
		if err := stage.JSONMarshaler.Unmarshal(msg, &ev); err != nil {
			return Entry{}, false
		}
		return Entry{Kind: KindAttach, Type: ev.Type, Actor: ev.Actor, Scene: ev.Scene, At: ev.At}, true
	case "stage.ComponentDetached":
		var ev stage.ComponentDetached
		if err := stage.JSONMarshaler.Unmarshal(msg, &ev); err != nil {
			return Entry{}, false
		}
		return Entry{Kind: KindDetach, Type: ev.Type, Actor: ev.Actor, Scene: ev.Scene, At: ev.At}, true
	case "stage.SceneLoaded":
		var ev stage.SceneLoaded
		if err := stage.JSONMarshaler.Unmarshal(msg, &ev); err != nil {
			return Entry{}, false
		}
		return Entry{Kind: KindLoad, Scene: ev.Name, At: ev.At}, true
	case "stage.SceneUnloaded":
		var ev stage.SceneUnloaded
		if err := stage.JSONMarshaler.Unmarshal(msg, &ev); err != nil {
			return Entry{}, false
		}
		return Entry{Kind: KindUnload, Scene: ev.Name, At: ev.At}, true
	case "stage.SingletonClaimed":
		var ev stage.SingletonClaimed
		if err := stage.JSONMarshaler.Unmarshal(msg, &ev); err != nil {
			return Entry{}, false
		}
		return Entry{Kind: KindClaim, Type: ev.Type, Actor: ev.Actor, At: ev.At}, true
	case "stage.SingletonReleased":
		var ev stage.SingletonReleased
		if err := stage.JSONMarshaler.Unmarshal(msg, &ev); err != nil {
			return Entry{}, false
		}
		return Entry{Kind: KindRelease, Type: ev.Type, Actor: ev.Actor, At: ev.At}, true
	case "stage.DuplicateDiscarded":
		var ev stage.DuplicateDiscarded
		if err := stage.JSONMarshaler.Unmarshal(msg, &ev); err != nil {
			return Entry{}, false
		}
		return Entry{Kind: KindDuplicate, Type: ev.Type, Actor: ev.Actor, At: ev.At}, true
	}

	return Entry{}, false
}

type tee struct {
	recs []Recorder
}

// Tee fans every entry out to all given recorders.
func Tee(recs ...Recorder) Recorder {
	return &tee{recs: recs}
}

func (t *tee) Record(ctx context.Context, entry Entry) error {
	var errs error
	for _, rec := range t.recs {
		errs = multierr.Append(errs, rec.Record(ctx, entry))
	}
	return errs
}
