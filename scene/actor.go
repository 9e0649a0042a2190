package scene

import (
	"fmt"
	"reflect"

	"github.com/hallwick/stage"
)

// Actor is a container for components, the unit of spawning and
// destruction. Actors always live inside exactly one scene.
type Actor struct {
	guid     string
	name     string
	handle   Handle
	world    *World
	scene    *Scene
	comps    []stage.Component
	resident bool
	dead     bool
}

func (a *Actor) GUID() string {
	return a.guid
}

func (a *Actor) Name() string {
	return a.name
}

func (a *Actor) Handle() Handle {
	return a.handle
}

// Scene names the set the actor currently belongs to.
func (a *Actor) Scene() string {
	if a.scene == nil {
		return ""
	}
	return a.scene.Name()
}

// Resident reports whether the actor survives scene loads.
func (a *Actor) Resident() bool {
	return a.resident
}

func (a *Actor) Alive() bool {
	return !a.dead
}

// Attach adds a component to the actor and runs the world's attach
// hooks against it.
func (a *Actor) Attach(c stage.Component) error {
	return a.world.attach(a, c)
}

// Components snapshots the attached components. Order is attach order.
func (a *Actor) Components() []stage.Component {
	out := make([]stage.Component, len(a.comps))
	copy(out, a.comps)
	return out
}

// Component finds the first attached component of the given type.
func (a *Actor) Component(t reflect.Type) (stage.Component, bool) {
	for _, c := range a.comps {
		if reflect.TypeOf(c) == t {
			return c, true
		}
	}
	return nil, false
}

func (a *Actor) String() string {
	return fmt.Sprintf("%s#%d", a.name, a.handle.id)
}

// ComponentOf finds the first component of type T on the actor.
func ComponentOf[T any](a *Actor) (*T, bool) {
	c, ok := a.Component(reflect.TypeOf((*T)(nil)))
	if !ok {
		return nil, false
	}
	return c.(*T), true
}
