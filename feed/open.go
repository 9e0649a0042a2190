package feed

import (
	"time"

	"github.com/AlexCuse/watermill-jetstream/pkg/jetstream"
	wkafka "github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/creasty/defaults"
	"github.com/hallwick/stage"
	"github.com/hallwick/stage/driver/amqp"
	"github.com/hallwick/stage/driver/kafka"
	"github.com/hallwick/stage/driver/nats"
	"github.com/hallwick/stage/driver/nsq"
	"github.com/nats-io/stan.go"
	"go.uber.org/zap"
)

// DriverConfig selects and configures the message queue backing a
// feed.
type DriverConfig struct {
	Driver      string `default:"gochannel"`
	EventsTopic string `default:"lifecycle"`

	Kafka     KafkaConfig
	Confluent ConfluentConfig
	Jetstream JetstreamConfig
	Nats      NatsConfig
	Nsq       NsqConfig
	Rabbitmq  RabbitmqConfig
}

type KafkaConfig struct {
	Brokers []string
	Group   string
}

type ConfluentConfig struct {
	Brokers []string
	Group   string
}

type JetstreamConfig struct {
	Addr           string
	CloseTimeout   time.Duration
	AckWaitTimeout time.Duration
}

type NatsConfig struct {
	Addr              string
	ClusterID         string
	ClientID          string
	QueueGroup        string
	DurableName       string
	MaxSubscribeCount int `default:"4"`
	CloseTimeout      time.Duration
	AckWaitTimeout    time.Duration
}

type NsqConfig struct {
	Addr    string
	Channel string
}

type RabbitmqConfig struct {
	Addr string
}

// Open builds a feed on the configured driver. The zero config gives
// an in-process gochannel feed, good for tests and single-process
// setups.
func Open(cfg DriverConfig, log *zap.Logger) (*Feed, error) {
	defaults.Set(&cfg)

	var (
		logger         = stage.Logger
		publisherMaker stage.PublisherMaker
		subscribeMaker stage.SubscriberMaker
	)

	if log != nil {
		logger = stage.ZapLogger(log)
	}

	switch cfg.Driver {
	case "gochannel":
		publisherMaker, subscribeMaker = stage.GoPubsublisherMaker(stage.GochannelConfig{})
	case "kafka":
		publisherMaker = stage.KafkaPublisherMaker(wkafka.PublisherConfig{
			Brokers:   cfg.Kafka.Brokers,
			Marshaler: wkafka.DefaultMarshaler{},
		})
		subscribeMaker = stage.KafkaSubscriberMaker(wkafka.SubscriberConfig{
			Brokers:       cfg.Kafka.Brokers,
			Unmarshaler:   wkafka.DefaultMarshaler{},
			ConsumerGroup: cfg.Kafka.Group,
		})
	case "confluent":
		publisherMaker = kafka.PublisherMaker(kafka.PublisherConfig{
			Brokers: cfg.Confluent.Brokers,
		})
		subscribeMaker = kafka.SubscriberMaker(kafka.SubscribeConfig{
			Brokers: cfg.Confluent.Brokers,
			Group:   cfg.Confluent.Group,
		})
	case "jetstream":
		publisherMaker = func() (stage.Publisher, error) {
			return jetstream.NewPublisher(
				jetstream.PublisherConfig{
					URL:       cfg.Jetstream.Addr,
					Marshaler: jetstream.JSONMarshaler{},
				},
				logger,
			)
		}
		subscribeMaker = func() (stage.Subscriber, error) {
			return jetstream.NewSubscriber(
				jetstream.SubscriberConfig{
					URL:            cfg.Jetstream.Addr,
					CloseTimeout:   cfg.Jetstream.CloseTimeout,
					AckWaitTimeout: cfg.Jetstream.AckWaitTimeout,
					Unmarshaler:    jetstream.JSONMarshaler{},
				},
				logger,
			)
		}
	case "nats":
		publisherMaker = nats.NatsPublisherMaker(nats.StreamingPublisherConfig{
			ClusterID: cfg.Nats.ClusterID,
			ClientID:  cfg.Nats.ClientID,
			StanOptions: []stan.Option{
				stan.NatsURL(cfg.Nats.Addr),
			},
			Marshaler: nats.GobMarshaler{},
		})
		subscribeMaker = nats.NatsSubscriberMaker(nats.StreamingSubscriberConfig{
			ClusterID:        cfg.Nats.ClusterID,
			ClientID:         cfg.Nats.ClientID,
			QueueGroup:       cfg.Nats.QueueGroup,
			DurableName:      cfg.Nats.DurableName,
			SubscribersCount: cfg.Nats.MaxSubscribeCount,
			CloseTimeout:     cfg.Nats.CloseTimeout,
			AckWaitTimeout:   cfg.Nats.AckWaitTimeout,
			StanOptions: []stan.Option{
				stan.NatsURL(cfg.Nats.Addr),
			},
			Unmarshaler: nats.GobMarshaler{},
		})
	case "nsq":
		publisherMaker = nsq.NsqPublisherMaker(nsq.NsqPublisherConfig{
			Addr:      cfg.Nsq.Addr,
			Marshaler: nsq.GobMarshaler{},
		})
		subscribeMaker = nsq.NsqSubscriberMaker(nsq.NsqSubscribeConfig{
			Addr:        cfg.Nsq.Addr,
			Channel:     cfg.Nsq.Channel,
			Unmarshaler: nsq.GobMarshaler{},
		})
	case "rabbitmq":
		publisherMaker = amqp.PublisherMaker(cfg.Rabbitmq.Addr)
		subscribeMaker = amqp.SubscriberMaker(cfg.Rabbitmq.Addr)
	default:
		return nil, stage.ErrInvalidDriverType
	}

	return New(Config{
		PublisherMaker:  publisherMaker,
		SubscriberMaker: subscribeMaker,
		EventsTopic:     cfg.EventsTopic,
		Logger:          logger,
	}), nil
}
