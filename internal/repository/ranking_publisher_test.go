package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MomentumRank/internal/domain/models"
	pkgkafka "MomentumRank/pkg/kafka"
)

type recordingProducer struct {
	topic string
	msgs  []pkgkafka.Message
	err   error
}

func (r *recordingProducer) PublishBatch(_ context.Context, topic string, msgs []pkgkafka.Message) error {
	r.topic = topic
	r.msgs = msgs
	return r.err
}

func (r *recordingProducer) Close() error { return nil }

func classifiedRow(sym string, rank int, m models.Momentum, c models.Classification) models.ClassifiedObservation {
	return models.ClassifiedObservation{
		RankedObservation: models.RankedObservation{
			MomentumObservation: models.MomentumObservation{
				Symbol:   sym,
				Date:     time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC),
				Momentum: m,
			},
			FactorRank: rank,
		},
		Classification: c,
	}
}

func TestKafkaRankingPublisher(t *testing.T) {
	prod := &recordingProducer{}
	p := newKafkaRankingPublisher(prod, "momentum.rankings")

	rows := []models.ClassifiedObservation{
		classifiedRow("AAPL", 1, models.Defined(2.5, models.ModeNormalized), models.StrongBuy),
		classifiedRow("XOM", 2, models.Defined(-1, models.ModeSimpleReturn), models.StrongSell),
	}
	require.NoError(t, p.PublishRankings(context.Background(), models.Universe{Token: "abc"}, "run-9", rows))

	assert.Equal(t, "momentum.rankings", prod.topic)
	require.Len(t, prod.msgs, 2)
	assert.Equal(t, []byte("AAPL"), prod.msgs[0].Key)
	assert.Equal(t, map[string]string{"run_id": "run-9", "universe": "custom-abc"}, prod.msgs[1].Headers)

	ev, ok := prod.msgs[0].Value.(rankingEvent)
	require.True(t, ok)
	assert.Equal(t, "run-9", ev.RunID)
	assert.Equal(t, "custom-abc", ev.Universe)
	assert.Equal(t, "2024-06-28", ev.Date)
	require.NotNil(t, ev.Momentum)
	assert.InDelta(t, 2.5, *ev.Momentum, 1e-12)
	assert.Equal(t, models.StrongBuy, ev.Classification)
}

func TestKafkaRankingPublisherErrorsAndEmpty(t *testing.T) {
	prod := &recordingProducer{err: errors.New("broker gone")}
	p := newKafkaRankingPublisher(prod, "t")

	assert.NoError(t, p.PublishRankings(context.Background(), models.Universe{}, "r", nil))
	assert.Nil(t, prod.msgs)

	rows := []models.ClassifiedObservation{classifiedRow("A", 1, models.Defined(1, models.ModeNormalized), models.StrongSell)}
	assert.Error(t, p.PublishRankings(context.Background(), models.Universe{}, "r", rows))
}
