package scene

import "fmt"

// Handle is a non-owning reference to an actor. Actor ids are never
// reused, so a handle stays valid forever and simply goes dead once the
// actor is destroyed. Resolve it with World.Actor or test it with
// World.Alive.
type Handle struct {
	id uint64
}

// IsZero reports whether the handle was never issued by a world.
func (h Handle) IsZero() bool {
	return h.id == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("handle(%d)", h.id)
}
