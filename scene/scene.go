package scene

import "golang.org/x/exp/maps"

// Scene is a named set of live actors. A world owns two of them at a
// time, the current scene and the resident set that survives loads.
type Scene struct {
	name   string
	actors map[uint64]*Actor
}

func newScene(name string) *Scene {
	return &Scene{
		name:   name,
		actors: make(map[uint64]*Actor),
	}
}

func (s *Scene) Name() string {
	return s.name
}

func (s *Scene) Len() int {
	return len(s.actors)
}

// Actors snapshots the scene's members. Order is not specified.
func (s *Scene) Actors() []*Actor {
	return maps.Values(s.actors)
}

func (s *Scene) add(a *Actor) {
	s.actors[a.handle.id] = a
	a.scene = s
}

func (s *Scene) remove(a *Actor) {
	delete(s.actors, a.handle.id)
}
