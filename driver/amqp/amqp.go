package amqp

import (
	"github.com/ThreeDotsLabs/watermill-amqp/v2/pkg/amqp"
	"github.com/hallwick/stage"
)

func SubscriberMaker(addr string) stage.SubscriberMaker {
	return func() (stage.Subscriber, error) {
		directivesAMQPConfig := amqp.NewDurableQueueConfig(addr)
		directivesSubscriber, err := amqp.NewSubscriber(directivesAMQPConfig, stage.Logger)
		if err != nil {
			return nil, err
		}

		return directivesSubscriber, nil
	}
}

func PublisherMaker(addr string) stage.PublisherMaker {
	return func() (stage.Publisher, error) {
		directivesAMQPConfig := amqp.NewDurableQueueConfig(addr)
		directivesPublisher, err := amqp.NewPublisher(directivesAMQPConfig, stage.Logger)
		if err != nil {
			return nil, err
		}

		return directivesPublisher, nil
	}
}
