package scene

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// BuildFunc populates a freshly loaded scene.
type BuildFunc func(w *World) error

// Registry maps scene names to their build functions.
type Registry struct {
	set map[string]BuildFunc
}

func (reg *Registry) init() {
	if reg.set == nil {
		reg.set = make(map[string]BuildFunc)
	}
}

func (reg *Registry) Register(name string, build BuildFunc) {
	reg.init()

	reg.set[name] = build
}

func (reg *Registry) Lookup(name string) (build BuildFunc, ok bool) {
	reg.init()

	build, ok = reg.set[name]
	return build, ok
}

func (reg *Registry) Names() []string {
	reg.init()

	names := maps.Keys(reg.set)
	slices.Sort(names)
	return names
}
