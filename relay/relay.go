// Package relay republishes received chat messages to a Kafka topic, one
// record per message keyed by room id.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/segmentio/kafka-go"

	"github.com/mqy/malicek/chat"
	"github.com/mqy/malicek/store"
)

const (
	kafkaWriteTimeout = 3 * time.Second
	DefaultMaxBytes   = 64 * 1024
)

// Value is the JSON value of a relayed record.
type Value struct {
	Room     chat.RoomID   `json:"room"`
	Nick     string        `json:"nick"` // local user the message was received by
	Received time.Time     `json:"received"`
	Message  *chat.Message `json:"message"`
}

type batch struct {
	room chat.RoomID
	nick string
	at   time.Time
	msgs []*chat.Message
}

// Relay is a chat.ISink that forwards new messages to Kafka.
type Relay struct {
	chat.NopSink

	writer   IKafkaWriter
	queue    chan *batch
	maxBytes int
}

func New(writer IKafkaWriter, queueSize, maxBytes int) *Relay {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Relay{
		writer:   writer,
		queue:    make(chan *batch, queueSize),
		maxBytes: maxBytes,
	}
}

// NewKafkaWriter creates the writer for brokers and topic. Records of one
// room go to one partition.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Dialer: &kafka.Dialer{
			Timeout:   kafkaWriteTimeout,
			DualStack: true,
		},
	})
}

func (r *Relay) Messages(room chat.RoomID, msgs []*chat.Message, opts chat.EmitOptions) {
	select {
	case r.queue <- &batch{room: room, nick: opts.Nick, at: time.Now(), msgs: msgs}:
	default:
		glog.Errorf("relay: queue full, dropped %d messages of room %s", len(msgs), room)
	}
}

func (r *Relay) Run(ctx context.Context, stopDoneNotifyC chan<- struct{}) {
	glog.Info("relay: ready")
	defer func() {
		if err := r.writer.Close(); err != nil {
			glog.Errorf("relay: close writer: %v", err)
		}
		glog.Info("relay: stopped")
		stopDoneNotifyC <- struct{}{}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case b := <-r.queue:
			kms := r.encode(b)
			if len(kms) > 0 {
				r.write(ctx, kms)
			}
		}
	}
}

func (r *Relay) encode(b *batch) []kafka.Message {
	kms := make([]kafka.Message, 0, len(b.msgs))
	for _, m := range b.msgs {
		km, err := encodeMessage(b.room, b.nick, b.at, m, r.maxBytes)
		if err != nil {
			glog.Errorf("relay: %v", err)
			continue
		}
		kms = append(kms, km)
	}
	return kms
}

func encodeMessage(room chat.RoomID, nick string, at time.Time, m *chat.Message, limit int) (kafka.Message, error) {
	value, err := json.Marshal(&Value{Room: room, Nick: nick, Received: at, Message: m})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("error marshal message: %q, err: %v", m.Body, err)
	}
	if len(value) > limit {
		return kafka.Message{}, fmt.Errorf("message exceeds max limit: %d bytes", limit)
	}
	return kafka.Message{
		Key:   []byte(room),
		Value: value,
		Time:  at,
	}, nil
}

func (r *Relay) write(ctx context.Context, kms []kafka.Message) {
	var sleep time.Duration
	for {
		ctx2, cancel := context.WithTimeout(ctx, kafkaWriteTimeout)
		err := r.writer.WriteMessages(ctx2, kms...)
		cancel()
		if err == nil {
			glog.V(5).Infof("relay: wrote %d records", len(kms))
			return
		}
		if errors.Is(err, context.Canceled) {
			glog.V(5).Info("relay: write was cancelled")
			return
		}
		glog.Errorf("relay: write to kafka err: %v", err)
		store.Backoff(&sleep)
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return
		}
	}
}
