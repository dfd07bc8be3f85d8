package repository

import (
	"context"
	"fmt"
	"time"

	"MomentumRank/internal/domain/models"
	domrepo "MomentumRank/internal/domain/repository"
	pkgkafka "MomentumRank/pkg/kafka"
	"MomentumRank/pkg/util"
)

// batchProducer is the part of pkg/kafka.Producer the publisher needs.
type batchProducer interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// rankingEvent is the wire shape of one classified row.
type rankingEvent struct {
	RunID          string                `json:"run_id"`
	Universe       string                `json:"universe"`
	Date           string                `json:"date"`
	Symbol         string                `json:"symbol"`
	Momentum       *float64              `json:"momentum"`
	Mode           models.MomentumMode   `json:"mode"`
	FactorRank     int                   `json:"factor_rank"`
	Classification models.Classification `json:"classification"`
	PublishedAt    time.Time             `json:"published_at"`
}

// KafkaRankingPublisher emits one message per classified row, keyed by symbol.
type KafkaRankingPublisher struct {
	producer batchProducer
	topic    string
	now      func() time.Time
}

// NewKafkaRankingPublisher creates Kafka publisher.
func NewKafkaRankingPublisher(producer *pkgkafka.Producer, topic string) *KafkaRankingPublisher {
	return newKafkaRankingPublisher(producer, topic)
}

func newKafkaRankingPublisher(producer batchProducer, topic string) *KafkaRankingPublisher {
	return &KafkaRankingPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *KafkaRankingPublisher) PublishRankings(ctx context.Context, u models.Universe, runID string, rows []models.ClassifiedObservation) error {
	if len(rows) == 0 {
		return nil
	}
	publishedAt := p.now().UTC()
	headers := map[string]string{"run_id": runID, "universe": u.Source()}
	msgs := make([]pkgkafka.Message, len(rows))
	for i, r := range rows {
		ev := rankingEvent{
			RunID:          runID,
			Universe:       u.Source(),
			Date:           util.FormatDate(r.Date),
			Symbol:         r.Symbol,
			Mode:           r.Momentum.Mode,
			FactorRank:     r.FactorRank,
			Classification: r.Classification,
			PublishedAt:    publishedAt,
		}
		if r.Momentum.Valid {
			v := r.Momentum.Value
			ev.Momentum = &v
		}
		msgs[i] = pkgkafka.Message{Key: []byte(r.Symbol), Value: ev, Headers: headers}
	}
	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish rankings: %w", err)
	}
	return nil
}

func (p *KafkaRankingPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopRankingPublisher is used when Kafka is disabled.
type NoopRankingPublisher struct{}

func (NoopRankingPublisher) PublishRankings(context.Context, models.Universe, string, []models.ClassifiedObservation) error {
	return nil
}

func (NoopRankingPublisher) Close() error { return nil }

var (
	_ domrepo.RankingPublisher = (*KafkaRankingPublisher)(nil)
	_ domrepo.RankingPublisher = NoopRankingPublisher{}
)
