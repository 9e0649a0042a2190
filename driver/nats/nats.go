package nats

import (
	"github.com/ThreeDotsLabs/watermill-nats/pkg/nats"
	"github.com/hallwick/stage"
)

type (
	StreamingPublisherConfig  = nats.StreamingPublisherConfig
	StreamingSubscriberConfig = nats.StreamingSubscriberConfig
	GobMarshaler              = nats.GobMarshaler
)

func NatsSubscriberMaker(cfg nats.StreamingSubscriberConfig) stage.SubscriberMaker {
	return func() (stage.Subscriber, error) {
		return nats.NewStreamingSubscriber(cfg, stage.Logger)
	}
}

func NatsPublisherMaker(cfg nats.StreamingPublisherConfig) stage.PublisherMaker {

	return func() (stage.Publisher, error) {
		return nats.NewStreamingPublisher(
			cfg,
			stage.Logger,
		)
	}
}
