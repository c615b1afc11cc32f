package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/brisalabs/windrose-service/internal/config"
	"github.com/brisalabs/windrose-service/internal/domain"
)

// Publisher emits render summaries to the configured topic.
// It implements pipeline.SummaryPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the summary topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSummaryTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and writes one render summary.
func (p *Publisher) Publish(ctx context.Context, summary domain.RenderSummary) error {
	msg, err := serializeSummary(summary)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeSummary marshals a render summary into a Kafka message. The key
// is the generation timestamp, which keeps summaries from one deployment
// roughly ordered within a partition.
func serializeSummary(summary domain.RenderSummary) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize render summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(summary.GeneratedAt.Format(time.RFC3339Nano)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "files_accepted", Value: []byte(strconv.Itoa(summary.FilesAccepted))},
			{Key: "generated_at", Value: []byte(summary.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
