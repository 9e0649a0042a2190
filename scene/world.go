package scene

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/creasty/defaults"
	"github.com/google/uuid"
	"github.com/hallwick/stage"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Attachment pairs a component with the actor that carries it.
type Attachment struct {
	Actor *Actor
	Comp  stage.Component
}

type (
	// AttachHook runs right after a component lands on an actor. Hooks
	// run in registration order; if an earlier hook destroys the
	// component or its actor, the rest of the chain is skipped.
	AttachHook func(at Attachment)
	// DetachHook runs right after a component leaves an actor, whether
	// it was detached alone or its actor was torn down.
	DetachHook func(at Attachment)
)

// Mounter components are notified once their attach completes, before
// any world attach hooks run.
type Mounter interface {
	Mount(a *Actor)
}

// Unmounter components are notified right before they leave their
// actor.
type Unmounter interface {
	Unmount()
}

// World owns the actor graph: the current scene, the resident set that
// survives loads, and the spawn/attach/destroy operations over them.
//
// A world is single-goroutine. Everything except Post must be called
// from the goroutine driving Tick.
type World struct {
	opt Options
	log *zap.SugaredLogger

	seq    uint64
	actors map[uint64]*Actor
	guids  map[string]*Actor
	owners map[stage.Component]*Actor

	current  *Scene
	resident *Scene
	defs     Registry

	attachHooks []AttachHook
	detachHooks []DetachHook

	pending []any

	inboxMu sync.Mutex
	inbox   []func(w *World)
}

func New(ops ...OptionFunc) *World {
	var opt Options
	defaults.Set(&opt)
	for _, op := range ops {
		op(&opt)
	}

	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}

	w := &World{
		opt:      opt,
		log:      opt.Log.Sugar(),
		actors:   make(map[uint64]*Actor),
		guids:    make(map[string]*Actor),
		owners:   make(map[stage.Component]*Actor),
		current:  newScene(opt.Initial),
		resident: newScene("resident"),
	}

	w.publish(&stage.SceneLoaded{Name: opt.Initial, At: time.Now()})
	w.log.Debugw("world started", "scene", opt.Initial)
	return w
}

// Define registers a scene blueprint under name.
func (w *World) Define(name string, build BuildFunc) {
	w.defs.Register(name, build)
}

func (w *World) Blueprints() *Registry {
	return &w.defs
}

// Load tears the current scene down and builds the named one. Resident
// actors are untouched. The previous scene's actors are destroyed
// immediately, with the usual detach notifications per component.
func (w *World) Load(name string) error {
	build, ok := w.defs.Lookup(name)
	if !ok {
		return fmt.Errorf("load %q: %w", name, stage.ErrUnknownScene)
	}

	w.unload()
	w.current = newScene(name)
	w.publish(&stage.SceneLoaded{Name: name, At: time.Now()})
	w.log.Infow("scene loaded", "scene", name)

	return build(w)
}

func (w *World) unload() {
	var (
		name   = w.current.Name()
		actors = w.current.Actors()
	)

	for _, a := range actors {
		w.destroyActor(a)
	}

	w.publish(&stage.SceneUnloaded{Name: name, Destroyed: len(actors), At: time.Now()})
	w.log.Infow("scene unloaded", "scene", name, "destroyed", len(actors))
}

// Spawn creates an empty actor in the current scene.
func (w *World) Spawn(name string) *Actor {
	if name == "" {
		name = "actor"
	}

	w.seq++
	a := &Actor{
		guid:   uuid.NewString(),
		name:   name,
		handle: Handle{id: w.seq},
		world:  w,
	}

	w.actors[a.handle.id] = a
	w.guids[a.guid] = a
	w.current.add(a)

	w.publish(&stage.ActorSpawned{GUID: a.guid, Name: a.name, Scene: a.Scene(), At: time.Now()})
	w.log.Debugw("actor spawned", "actor", a.String(), "scene", a.Scene())
	return a
}

// Construct spawns an actor and attaches the component in one step.
func (w *World) Construct(name string, c stage.Component) (Attachment, error) {
	a := w.Spawn(name)
	if err := w.attach(a, c); err != nil {
		w.destroyActor(a)
		return Attachment{}, err
	}
	return Attachment{Actor: a, Comp: c}, nil
}

func (w *World) attach(a *Actor, c stage.Component) error {
	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return stage.ErrMustPointer
	}

	if a.dead {
		return stage.ErrDeadHandle
	}

	if _, ok := w.owners[c]; ok {
		return stage.ErrAlreadyAttached
	}

	a.comps = append(a.comps, c)
	w.owners[c] = a

	w.publish(&stage.ComponentAttached{Actor: a.guid, Type: typeName(c), Scene: a.Scene(), At: time.Now()})
	w.log.Debugw("component attached", "actor", a.String(), "type", typeName(c))

	if m, ok := c.(Mounter); ok {
		m.Mount(a)
	}

	at := Attachment{Actor: a, Comp: c}
	for _, hook := range w.attachHooks {
		if a.dead || w.owners[c] != a {
			break
		}
		hook(at)
	}

	return nil
}

// Destroy queues the actor or component for removal at the end of the
// current Tick. Destroy requests are fire-and-forget; destroying
// something already dead is a no-op.
func (w *World) Destroy(obj any) {
	w.pending = append(w.pending, obj)
}

// DestroyNow removes the actor or component immediately. For an actor,
// every component detaches first, then the actor itself dies.
func (w *World) DestroyNow(obj any) {
	switch a := obj.(type) {
	case *Actor:
		w.destroyActor(a)
	default:
		w.destroyComponent(obj)
	}
}

func (w *World) destroyComponent(c stage.Component) {
	a, ok := w.owners[c]
	if !ok {
		return
	}
	w.detach(a, c)
}

func (w *World) detach(a *Actor, c stage.Component) {
	i := slices.Index(a.comps, c)
	if i < 0 {
		return
	}

	a.comps = slices.Delete(a.comps, i, i+1)
	delete(w.owners, c)

	if u, ok := c.(Unmounter); ok {
		u.Unmount()
	}

	w.publish(&stage.ComponentDetached{Actor: a.guid, Type: typeName(c), Scene: a.Scene(), At: time.Now()})
	w.log.Debugw("component detached", "actor", a.String(), "type", typeName(c))

	at := Attachment{Actor: a, Comp: c}
	for _, hook := range w.detachHooks {
		hook(at)
	}
}

func (w *World) destroyActor(a *Actor) {
	if a == nil || a.dead {
		return
	}
	a.dead = true

	for len(a.comps) > 0 {
		w.detach(a, a.comps[len(a.comps)-1])
	}

	if a.scene != nil {
		a.scene.remove(a)
	}
	delete(w.actors, a.handle.id)
	delete(w.guids, a.guid)

	w.publish(&stage.ActorDestroyed{GUID: a.guid, Name: a.name, Scene: a.Scene(), At: time.Now()})
	w.log.Debugw("actor destroyed", "actor", a.String())
}

// MarkPersistent moves the actor into the resident set so scene loads
// leave it alone. Marking twice is a no-op.
func (w *World) MarkPersistent(a *Actor) error {
	if a == nil || a.dead {
		return stage.ErrDeadHandle
	}

	if a.resident {
		return nil
	}

	a.scene.remove(a)
	w.resident.add(a)
	a.resident = true

	w.publish(&stage.ActorPersisted{GUID: a.guid, Name: a.name, At: time.Now()})
	w.log.Debugw("actor persisted", "actor", a.String())
	return nil
}

// Find returns every live attachment of the given component type, in
// both the current scene and the resident set. Enumeration order is
// not specified.
func (w *World) Find(t reflect.Type) []Attachment {
	var out []Attachment
	for c, a := range w.owners {
		if reflect.TypeOf(c) == t {
			out = append(out, Attachment{Actor: a, Comp: c})
		}
	}
	return out
}

// Owner reports which actor carries c.
func (w *World) Owner(c stage.Component) (*Actor, error) {
	a, ok := w.owners[c]
	if !ok {
		return nil, stage.ErrDetached
	}
	return a, nil
}

func (w *World) Alive(h Handle) bool {
	_, ok := w.actors[h.id]
	return ok
}

// Actor resolves a handle, if its actor still lives.
func (w *World) Actor(h Handle) (*Actor, bool) {
	a, ok := w.actors[h.id]
	return a, ok
}

// FindActor resolves an actor by GUID.
func (w *World) FindActor(guid string) (*Actor, bool) {
	a, ok := w.guids[guid]
	return a, ok
}

func (w *World) OnAttach(hook AttachHook) {
	w.attachHooks = append(w.attachHooks, hook)
}

func (w *World) OnDetach(hook DetachHook) {
	w.detachHooks = append(w.detachHooks, hook)
}

func (w *World) Current() *Scene {
	return w.current
}

func (w *World) Resident() *Scene {
	return w.resident
}

// Post hands a function to the world goroutine. It is the only method
// safe to call from other goroutines; the function runs on the next
// Tick.
func (w *World) Post(fn func(w *World)) {
	w.inboxMu.Lock()
	w.inbox = append(w.inbox, fn)
	w.inboxMu.Unlock()
}

// Tick runs posted functions and flushes queued destroys, looping
// until both queues drain.
func (w *World) Tick() {
	for {
		fns := w.takeInbox()
		if len(fns) == 0 && len(w.pending) == 0 {
			return
		}

		for _, fn := range fns {
			fn(w)
		}

		pending := w.pending
		w.pending = nil
		for _, obj := range pending {
			w.DestroyNow(obj)
		}
	}
}

func (w *World) takeInbox() []func(w *World) {
	w.inboxMu.Lock()
	fns := w.inbox
	w.inbox = nil
	w.inboxMu.Unlock()
	return fns
}

// Close destroys every remaining actor, residents included.
func (w *World) Close() error {
	w.unload()
	for _, a := range w.resident.Actors() {
		w.destroyActor(a)
	}

	w.log.Debugw("world closed")
	return nil
}

func (w *World) publish(ev any) {
	if w.opt.Feed == nil {
		return
	}

	msg, err := stage.JSONMarshaler.Marshal(ev)
	if err != nil {
		w.log.Errorw("marshal lifecycle event", "err", err)
		return
	}

	if err := w.opt.Feed.Publish(w.opt.Topic, msg); err != nil {
		w.log.Debugw("publish lifecycle event", "err", err)
	}
}

func typeName(c stage.Component) string {
	return reflect.TypeOf(c).Elem().Name()
}

// Components collects every live *T in the world. Order is not
// specified.
func Components[T any](w *World) []*T {
	var (
		t   = reflect.TypeOf((*T)(nil))
		out []*T
	)

	for _, at := range w.Find(t) {
		out = append(out, at.Comp.(*T))
	}
	return out
}

// First returns some live *T, if any exists.
func First[T any](w *World) (*T, bool) {
	all := Components[T](w)
	if len(all) == 0 {
		return nil, false
	}
	return all[0], true
}
