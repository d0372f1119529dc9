package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/mqy/malicek/relay"
	"github.com/mqy/malicek/render"
	"github.com/mqy/malicek/store"
)

// The demo tails the topic malicek relays room messages to and prints them.

// kafka-topics.sh --bootstrap-server localhost:9092 --topic malicek-messages --create
// kafka-topics.sh --bootstrap-server localhost:9092 --topic malicek-messages --delete

var (
	kafkaEndpoints = flag.String("kafka-endpoints", "127.0.0.1:9092", "kafka endpoints, ',' delimitted.")
	kafkaTopic     = flag.String("kafka-topic", "malicek-messages", "kafka topic")
	kafkaGroupId   = flag.String("kafka-group", "malicek-demo", "kafka consumer group")
	room           = flag.String("room", "", "only print messages of this room")
)

func main() {
	flag.Parse()

	if len(*kafkaEndpoints) == 0 {
		panic("--kafka-endpoints is required.")
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: strings.Split(*kafkaEndpoints, ","),
		GroupID: *kafkaGroupId,
		Topic:   *kafkaTopic,
		Dialer: &kafka.Dialer{
			Timeout:   10 * time.Second,
			DualStack: true,
		},
	})
	defer r.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var sleep time.Duration
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
			store.Backoff(&sleep)
			select {
			case <-time.After(sleep):
				continue
			case <-ctx.Done():
				return
			}
		}
		sleep = 0

		var v relay.Value
		if err := json.Unmarshal(msg.Value, &v); err != nil || v.Message == nil {
			fmt.Fprintf(os.Stderr, "skip offset %d: bad value\n", msg.Offset)
		} else if *room == "" || string(v.Room) == *room {
			fmt.Printf("%s #%s %s\n", v.Received.Format("15:04:05"), v.Room, render.Text(v.Message))
		}

		if err := r.CommitMessages(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "commit: %v\n", err)
		}
	}
}
