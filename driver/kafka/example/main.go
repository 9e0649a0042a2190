package main

import (
	"context"
	"log"

	"github.com/hallwick/stage/driver/kafka"
)

func main() {
	maker := kafka.SubscriberMaker(kafka.SubscribeConfig{
		Brokers: []string{"localhost"},
		Group:   "stage",
	})
	sub, err := maker()
	if err != nil {
		log.Fatalf("create subscriber error %s", err)
	}

	defer sub.Close()

	var ctx = context.Background()
	chmsg, err := sub.Subscribe(ctx, "lifecycle")
	if err != nil {
		log.Fatalf("subscribe topic '%s' error %s", "lifecycle", err)
	}

	log.Printf("waiting messages")
	for msg := range chmsg {
		log.Printf("msg %s", string(msg.Payload))
	}
}
