package stage

import (
	"context"
	"fmt"
	"reflect"
)

// Directives. Sent over the feed and applied to a world on its own
// goroutine, between frames.
type (
	LoadScene struct {
		Name string
	}

	SpawnActor struct {
		Name string
	}

	DestroyActor struct {
		GUID string
	}
)

type DirHandler[C any] struct {
	eventBus *EventBus
	handle   func(ctx context.Context, directive *C) error
}

func (handler *DirHandler[C]) HandlerName() string {
	var c C
	return reflect.TypeOf(c).Name() + "DirectiveHandler"
}

func (handler *DirHandler[C]) NewCommand() interface{} {
	var directive = new(C)
	return directive
}

func (handler *DirHandler[C]) SetEventBus(eventBus *EventBus) {
	handler.eventBus = eventBus
}

func (handler *DirHandler[C]) Handle(ctx context.Context, c interface{}) error {
	if handler.handle != nil {
		directive, ok := c.(*C)
		if !ok {
			panic(fmt.Sprintf("DirHandler.Handle: directive is not of type %T", c))
		}
		return handler.handle(ctx, directive)
	}

	return nil
}

func NewDirHandler[C any](handle func(ctx context.Context, directive *C) error) *DirHandler[C] {
	return &DirHandler[C]{
		handle: handle,
	}
}

type NoDirective struct{}

var NoDirectiveHandler = NewDirHandler(func(ctx context.Context, directive *NoDirective) error {
	return nil
})
