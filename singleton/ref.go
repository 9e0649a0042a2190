package singleton

import (
	"reflect"
	"time"

	"github.com/hallwick/stage"
	"github.com/hallwick/stage/utils"
)

// Ref is a typed accessor for the T slot. Obtaining a ref designates T
// as singleton-managed; every ref for the same T shares one slot.
type Ref[T any] struct {
	k *Keeper
	t reflect.Type
	s *slot
}

// For designates T and returns its accessor. T is the component struct
// type, not a pointer to it.
func For[T any](k *Keeper) *Ref[T] {
	t := reflect.TypeOf((*T)(nil))
	if t.Elem().Kind() == reflect.Ptr {
		panic("singleton: component type must be a struct type, not a pointer")
	}

	return &Ref[T]{k: k, t: t, s: k.manage(t)}
}

// Instance returns the canonical *T, resolving it lazily: the claimed
// instance if one lives, else the first live candidate found in the
// host (enumeration order is the host's), else a freshly constructed
// instance on a new actor. Construction goes through the regular
// attach path, so the attach hook claims the instance and persists its
// actor before Instance returns.
//
// A host that cannot construct is a fault; Instance panics rather than
// returning a partial result.
func (r *Ref[T]) Instance() *T {
	var (
		k = r.k
		s = r.s
	)

	if s.ref != nil {
		if k.host.Alive(s.holder) {
			return s.ref.(*T)
		}
		s.clear()
	}

	if found := k.host.Find(r.t); len(found) > 0 {
		at := found[0]
		s.claim(at)
		k.publish(&stage.SingletonClaimed{
			Type:  utils.TypeName(r.t),
			Actor: at.Actor.GUID(),
			Via:   stage.ViaAdopt,
			At:    time.Now(),
		})
		k.log.Debugw("singleton adopted", "type", utils.TypeName(r.t), "actor", at.Actor.String())
		return at.Comp.(*T)
	}

	at, err := k.host.Construct(utils.DiagnosticName(r.t), new(T))
	if err != nil {
		panic(err)
	}

	return at.Comp.(*T)
}

// Exists reports whether a live canonical instance is currently
// claimed. It never constructs, adopts or otherwise disturbs the
// world, so it is safe to call during teardown.
func (r *Ref[T]) Exists() bool {
	return r.s.ref != nil && r.k.host.Alive(r.s.holder)
}

// Instance is shorthand for For[T](k).Instance().
func Instance[T any](k *Keeper) *T {
	return For[T](k).Instance()
}

// Exists is shorthand for For[T](k).Exists().
func Exists[T any](k *Keeper) bool {
	return For[T](k).Exists()
}
