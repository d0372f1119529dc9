package relay

import (
	"context"

	"github.com/segmentio/kafka-go"
)

type IKafkaWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
	Close() error
}
