// Package singleton keeps at most one live instance per component type
// on top of a scene world. Accessors never replace an existing
// instance; late duplicates are destroyed together with their actors.
package singleton

import (
	"reflect"
	"time"

	"github.com/creasty/defaults"
	"github.com/hallwick/stage"
	"github.com/hallwick/stage/scene"
	"github.com/hallwick/stage/utils"
	"go.uber.org/zap"
)

// Host is the slice of a world the keeper needs: enumeration,
// construction, persistence, destruction and the attach/detach
// notifications that drive reconciliation.
type Host interface {
	Find(t reflect.Type) []scene.Attachment
	Construct(name string, c stage.Component) (scene.Attachment, error)
	MarkPersistent(a *scene.Actor) error
	DestroyNow(obj any)
	Alive(h scene.Handle) bool
	OnAttach(hook scene.AttachHook)
	OnDetach(hook scene.DetachHook)
}

var _ Host = (*scene.World)(nil)

type Options struct {
	// Topic is the feed topic claim events publish to.
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

// slot is either empty (ref nil) or claimed by one live component.
type slot struct {
	ref    stage.Component
	holder scene.Handle
	guid   string
}

func (s *slot) claim(at scene.Attachment) {
	s.ref = at.Comp
	s.holder = at.Actor.Handle()
	s.guid = at.Actor.GUID()
}

func (s *slot) clear() {
	s.ref = nil
	s.holder = scene.Handle{}
	s.guid = ""
}

// Keeper owns one slot per managed component type. It watches the
// host's attach stream to claim winners and discard duplicates, and
// the detach stream to free slots when instances die.
//
// Like the world it serves, a keeper is single-goroutine.
type Keeper struct {
	host  Host
	slots map[reflect.Type]*slot
	opt   Options
	log   *zap.SugaredLogger
}

func NewKeeper(host Host, ops ...OptionFunc) *Keeper {
	var opt Options
	defaults.Set(&opt)
	for _, op := range ops {
		op(&opt)
	}

	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}

	k := &Keeper{
		host:  host,
		slots: make(map[reflect.Type]*slot),
		opt:   opt,
		log:   opt.Log.Sugar(),
	}

	host.OnAttach(k.reconcile)
	host.OnDetach(k.release)
	return k
}

// manage designates the type, creating its empty slot on first sight.
func (k *Keeper) manage(t reflect.Type) *slot {
	s, ok := k.slots[t]
	if !ok {
		s = &slot{}
		k.slots[t] = s
	}
	return s
}

// reconcile decides, once per attached component, whether it becomes
// the canonical instance. The winner's actor is marked persistent
// exactly once, on this path only. A component of an unmanaged type
// passes through untouched.
func (k *Keeper) reconcile(at scene.Attachment) {
	t := reflect.TypeOf(at.Comp)
	s, ok := k.slots[t]
	if !ok {
		return
	}

	switch {
	case s.ref == nil:
		s.claim(at)
		k.host.MarkPersistent(at.Actor)
		k.publish(&stage.SingletonClaimed{
			Type:  utils.TypeName(t),
			Actor: at.Actor.GUID(),
			Via:   stage.ViaAttach,
			At:    time.Now(),
		})
		k.log.Debugw("singleton claimed", "type", utils.TypeName(t), "actor", at.Actor.String())

	case s.ref == at.Comp:
		// Same component reported again, nothing to do.

	default:
		k.publish(&stage.DuplicateDiscarded{
			Type:      utils.TypeName(t),
			Actor:     at.Actor.GUID(),
			Canonical: s.guid,
			At:        time.Now(),
		})
		k.log.Warnw("duplicate singleton discarded",
			"type", utils.TypeName(t), "actor", at.Actor.String(), "canonical", s.guid)

		k.host.DestroyNow(at.Comp)
		k.host.DestroyNow(at.Actor)
	}
}

// release frees the slot when its canonical component detaches, for
// any reason: explicit detach, actor destruction or world teardown.
// Losing duplicates never held a slot, so their detach is a no-op
// here.
func (k *Keeper) release(at scene.Attachment) {
	t := reflect.TypeOf(at.Comp)
	s, ok := k.slots[t]
	if !ok || s.ref != at.Comp {
		return
	}

	s.clear()
	k.publish(&stage.SingletonReleased{
		Type:  utils.TypeName(t),
		Actor: at.Actor.GUID(),
		At:    time.Now(),
	})
	k.log.Debugw("singleton released", "type", utils.TypeName(t), "actor", at.Actor.String())
}

func (k *Keeper) publish(ev any) {
	if k.opt.Feed == nil {
		return
	}

	msg, err := stage.JSONMarshaler.Marshal(ev)
	if err != nil {
		k.log.Errorw("marshal singleton event", "err", err)
		return
	}

	if err := k.opt.Feed.Publish(k.opt.Topic, msg); err != nil {
		k.log.Debugw("publish singleton event", "err", err)
	}
}
