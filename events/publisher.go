package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"soundwave/logger"
	"soundwave/model"

	"github.com/segmentio/kafka-go"
)

// Publisher 发布歌曲变更事件
type Publisher interface {
	Publish(ctx context.Context, evt model.SongEvent) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes song events as JSON to a kafka topic, keyed by the song key.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaWriter builds the writer used by NewKafkaPublisher.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // same song, same partition
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: NewKafkaWriter(brokers, topic), topic: topic}
}

// Publish 发送单条事件
func (p *KafkaPublisher) Publish(ctx context.Context, evt model.SongEvent) error {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal song event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.SongID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(evt.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write song event to %s: %w", p.topic, err)
	}
	logger.Debug("Song event published",
		logger.String("type", evt.Type),
		logger.String("songId", evt.SongID),
		logger.String("topic", p.topic))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Noop drops every event. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, model.SongEvent) error { return nil }
func (Noop) Close() error { return nil }

// New returns a kafka publisher when brokers are set, Noop otherwise.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		logger.Info("No kafka brokers configured, song events disabled")
		return Noop{}
	}
	logger.Info("Publishing song events to kafka",
		logger.Strings("brokers", brokers),
		logger.String("topic", topic))
	return NewKafkaPublisher(brokers, topic)
}

// NewSongEvent stamps an event for the given song.
func NewSongEvent(kind string, song *model.Song) model.SongEvent {
	evt := model.SongEvent{Type: kind, Song: song, At: time.Now().UTC()}
	if song != nil {
		evt.SongID = song.Key
	}
	return evt
}
