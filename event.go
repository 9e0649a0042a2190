package stage

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// Claim paths reported by SingletonClaimed.Via.
const (
	ViaAttach = "attach"
	ViaAdopt  = "adopt"
)

// Lifecycle events. Every mutation of the actor graph publishes exactly
// one of these to the feed, in the order the mutation happened.
type (
	ActorSpawned struct {
		GUID  string
		Name  string
		Scene string
		At    time.Time
	}

	ActorDestroyed struct {
		GUID  string
		Name  string
		Scene string
		At    time.Time
	}

	ActorPersisted struct {
		GUID string
		Name string
		At   time.Time
	}

	ComponentAttached struct {
		Actor string
		Type  string
		Scene string
		At    time.Time
	}

	ComponentDetached struct {
		Actor string
		Type  string
		Scene string
		At    time.Time
	}

	SceneLoaded struct {
		Name string
		At   time.Time
	}

	SceneUnloaded struct {
		Name      string
		Destroyed int
		At        time.Time
	}

	SingletonClaimed struct {
		Type  string
		Actor string
		Via   string
		At    time.Time
	}

	SingletonReleased struct {
		Type  string
		Actor string
		At    time.Time
	}

	DuplicateDiscarded struct {
		Type      string
		Actor     string
		Canonical string
		At        time.Time
	}
)

type EvtHandler[E any] struct {
	directiveBus *DirectiveBus
	handle       func(ctx context.Context, event *E) error
}

func (handler *EvtHandler[E]) HandlerName() string {
	var e E
	return reflect.TypeOf(e).Name() + "EventHandler"
}

func (handler *EvtHandler[E]) NewEvent() interface{} {
	var event = new(E)
	return event
}

func (handler *EvtHandler[E]) SetDirectiveBus(directiveBus *DirectiveBus) {
	handler.directiveBus = directiveBus
}

func (handler *EvtHandler[E]) Handle(ctx context.Context, e interface{}) error {
	if handler.handle != nil {
		event, ok := e.(*E)
		if !ok {
			panic(fmt.Sprintf("EvtHandler.Handle: event is not of type %T", e))
		}

		return handler.handle(ctx, event)
	}

	return nil
}

func NewEventHandler[E any](handle func(ctx context.Context, event *E) error) *EvtHandler[E] {
	return &EvtHandler[E]{
		handle: handle,
	}
}

type NoEvent struct{}

var NoEventHandler = NewEventHandler(func(ctx context.Context, evt *NoEvent) error {
	return nil
})
