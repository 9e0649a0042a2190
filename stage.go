package stage

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

type (
	EventBus              = cqrs.EventBus
	DirectiveBus          = cqrs.CommandBus
	Publisher             = message.Publisher
	Subscriber            = message.Subscriber
	Router                = message.Router
	HandlerFunc           = message.HandlerFunc
	NoPublishHandlerFunc  = message.NoPublishHandlerFunc
	RouterConfig          = message.RouterConfig
	CommandEventMarshaler = cqrs.CommandEventMarshaler
	LoggerAdapter         = watermill.LoggerAdapter
)

// Component is any value attached to an actor. Components are held by
// pointer; two components are the same component only if the pointers
// are equal.
type Component = any

// DirectiveHandler consumes a directive from the feed and may publish
// lifecycle events while applying it.
type DirectiveHandler interface {
	SetEventBus(*EventBus)
	cqrs.CommandHandler
}

// EventHandler consumes a lifecycle event from the feed and may send
// directives back.
type EventHandler interface {
	SetDirectiveBus(*DirectiveBus)
	cqrs.EventHandler
}
