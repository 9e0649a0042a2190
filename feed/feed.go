// Package feed publishes the lifecycle event stream and routes
// directives back into worlds, over any of the supported message
// queue drivers.
package feed

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/message/router/plugin"
	"github.com/akrennmair/slice"
	"github.com/hallwick/stage"
)

type Feed struct {
	facade     *cqrs.Facade
	config     Config
	configDone bool
	router     *stage.Router
}

type RouterHandler struct {
	HandleName       string
	SubscribeTopic   string
	Subscriber       stage.Subscriber
	PublishTopic     string
	Publisher        stage.Publisher
	Handler          stage.HandlerFunc
	NopublishHandler stage.NoPublishHandlerFunc
	NoPublish        bool
}

type Config struct {
	DirectiveHandlers      []stage.DirectiveHandler
	DirectiveHandlerMakers []stage.DirectiveHandlerMaker
	EventHandlers          []stage.EventHandler
	EventHandlerMakers     []stage.EventHandlerMaker
	RouterHandlers         []RouterHandler
	EventsTopic            string

	PublisherMaker  stage.PublisherMaker
	SubscriberMaker stage.SubscriberMaker
	RouterConfig    *stage.RouterConfig
	Marshaler       stage.CommandEventMarshaler
	Logger          watermill.LoggerAdapter
}

var (
	DefaultMarshaler    = stage.JSONMarshaler
	DefaultRouterConfig = &stage.RouterConfig{}
	DefaultConfig       = Config{
		RouterConfig: DefaultRouterConfig,
		Logger:       stage.Logger,
		Marshaler:    DefaultMarshaler,
	}
)

func New(config Config) *Feed {
	if config.Marshaler == nil {
		config.Marshaler = DefaultMarshaler
	}

	if config.Logger == nil {
		config.Logger = stage.Logger
	}

	if config.RouterConfig == nil {
		config.RouterConfig = DefaultRouterConfig
	}

	return &Feed{
		config: config,
	}
}

func (feed *Feed) buildConfig() bool {
	if feed.configDone {
		return false
	}

	publisher, err := feed.config.PublisherMaker()
	if err != nil {
		panic(err)
	}

	eventsPublisher, err := feed.config.PublisherMaker()
	if err != nil {
		panic(err)
	}

	subscriber, err := feed.config.SubscriberMaker()
	if err != nil {
		panic(err)
	}

	router, err := message.NewRouter(*feed.config.RouterConfig, feed.config.Logger)
	if err != nil {
		panic(err)
	}

	config := cqrs.FacadeConfig{
		GenerateCommandsTopic: func(directiveName string) string {
			// directives get a topic per type
			return directiveName
		},
		CommandsPublisher: publisher,
		CommandsSubscriberConstructor: func(handlerName string) (message.Subscriber, error) {
			return feed.config.SubscriberMaker()
		},
		GenerateEventsTopic: func(eventName string) string {
			// all lifecycle events share one topic
			if feed.config.EventsTopic == "" {
				return "lifecycle"
			}
			return feed.config.EventsTopic
		},
		EventsPublisher: eventsPublisher,
		EventsSubscriberConstructor: func(handlerName string) (message.Subscriber, error) {
			return subscriber, nil
		},
		CommandEventMarshaler: feed.config.Marshaler,
		Logger:                feed.config.Logger,
	}

	if len(feed.config.DirectiveHandlers)+len(feed.config.DirectiveHandlerMakers) > 0 {
		config.CommandHandlers = func(cb *cqrs.CommandBus, eb *cqrs.EventBus) []cqrs.CommandHandler {
			var handlers = make([]cqrs.CommandHandler, 0)

			handlers = append(handlers, slice.Map(feed.config.DirectiveHandlers, func(dirHandler stage.DirectiveHandler) cqrs.CommandHandler {
				dirHandler.SetEventBus(eb)
				return dirHandler
			})...)

			handlers = append(handlers, slice.Map(feed.config.DirectiveHandlerMakers, func(dirHandler stage.DirectiveHandlerMaker) cqrs.CommandHandler {
				return dirHandler(cb, eb)
			})...)

			return handlers
		}
	}

	if len(feed.config.EventHandlers)+len(feed.config.EventHandlerMakers) > 0 {
		config.EventHandlers = func(cb *cqrs.CommandBus, eb *cqrs.EventBus) []cqrs.EventHandler {
			var handlers = make([]cqrs.EventHandler, 0)

			handlers = append(handlers, slice.Map(feed.config.EventHandlers, func(evtHandler stage.EventHandler) cqrs.EventHandler {
				evtHandler.SetDirectiveBus(cb)
				return evtHandler
			})...)

			handlers = append(handlers, slice.Map(feed.config.EventHandlerMakers, func(evtHandler stage.EventHandlerMaker) cqrs.EventHandler {
				return evtHandler(cb, eb)
			})...)

			return handlers
		}
	}

	config.Router = router
	router.AddPlugin(plugin.SignalsHandler)
	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      3,
		MaxElapsedTime:  3 * time.Minute,
		InitialInterval: 10 * time.Second,
	}.Middleware)

	feed.router = router

	for _, routerHandler := range feed.config.RouterHandlers {
		if !routerHandler.NoPublish {
			feed.router.AddHandler(
				routerHandler.HandleName,
				routerHandler.SubscribeTopic,
				routerHandler.Subscriber,
				routerHandler.PublishTopic,
				routerHandler.Publisher,
				routerHandler.Handler,
			)
		} else {
			feed.router.AddNoPublisherHandler(
				routerHandler.HandleName,
				routerHandler.SubscribeTopic,
				routerHandler.Subscriber,
				routerHandler.NopublishHandler,
			)
		}
	}

	cqrsFacade, err := cqrs.NewFacade(config)
	if err != nil {
		panic(err)
	}

	feed.facade = cqrsFacade
	feed.configDone = true
	return true
}

func (feed *Feed) DirectiveBus() *cqrs.CommandBus {
	feed.buildConfig()
	return feed.facade.CommandBus()
}

func (feed *Feed) EventBus() *cqrs.EventBus {
	feed.buildConfig()
	return feed.facade.EventBus()
}

func (feed *Feed) AddDirHandler(handler stage.DirectiveHandler) *Feed {
	feed.config.DirectiveHandlers = append(feed.config.DirectiveHandlers, handler)
	return feed
}

func (feed *Feed) AddDirHandlerMaker(handler stage.DirectiveHandlerMaker) *Feed {
	feed.config.DirectiveHandlerMakers = append(feed.config.DirectiveHandlerMakers, handler)
	return feed
}

func (feed *Feed) AddEventHandler(handler stage.EventHandler) *Feed {
	feed.config.EventHandlers = append(feed.config.EventHandlers, handler)
	return feed
}

func (feed *Feed) AddEventHandlerMaker(handler stage.EventHandlerMaker) *Feed {
	feed.config.EventHandlerMakers = append(feed.config.EventHandlerMakers, handler)
	return feed
}

func (feed *Feed) Run(ctx context.Context) error {
	feed.buildConfig()

	return feed.router.Run(ctx)
}

func (feed *Feed) Subscriber() (stage.Subscriber, error) {
	feed.buildConfig()
	return feed.config.SubscriberMaker()
}

func (feed *Feed) Publisher() (stage.Publisher, error) {
	feed.buildConfig()
	return feed.config.PublisherMaker()
}

// NewSubscriber runs the configured maker without freezing the feed,
// so handlers can still be registered afterwards.
func (feed *Feed) NewSubscriber() (stage.Subscriber, error) {
	return feed.config.SubscriberMaker()
}

// NewPublisher runs the configured maker without freezing the feed.
func (feed *Feed) NewPublisher() (stage.Publisher, error) {
	return feed.config.PublisherMaker()
}

func (feed *Feed) AddRouterHandler(
	handlerName string,
	subscribeTopic string, subscriber stage.Subscriber,
	publishTopic string, publisher stage.Publisher,
	handle stage.HandlerFunc,
) {
	if feed.configDone {
		feed.router.AddHandler(handlerName, subscribeTopic, subscriber, publishTopic, publisher, handle)
		return
	}

	feed.config.RouterHandlers = append(feed.config.RouterHandlers, RouterHandler{
		HandleName:     handlerName,
		SubscribeTopic: subscribeTopic,
		Subscriber:     subscriber,
		PublishTopic:   publishTopic,
		Publisher:      publisher,
		Handler:        handle,
	})
}

func (feed *Feed) AddRouterNoPublishHandler(
	handlerName string,
	subscribeTopic string, subscriber stage.Subscriber,
	handle stage.NoPublishHandlerFunc,
) {
	if feed.configDone {
		feed.router.AddNoPublisherHandler(handlerName, subscribeTopic, subscriber, handle)
		return
	}

	feed.config.RouterHandlers = append(feed.config.RouterHandlers, RouterHandler{
		HandleName:       handlerName,
		SubscribeTopic:   subscribeTopic,
		Subscriber:       subscriber,
		NopublishHandler: handle,
		NoPublish:        true,
	})
}

func (feed *Feed) Router() *stage.Router {
	feed.buildConfig()
	return feed.router
}
