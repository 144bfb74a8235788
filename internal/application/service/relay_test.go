package service

import (
	"context"
	"errors"
	"testing"

	"activities/internal/application/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOutboxEvent(t *testing.T, r *fakeRepo) entity.OutboxEvent {
	t.Helper()
	e := &entity.OutboxEvent{
		AggregateID:   mustUUID(t),
		AggregateType: entity.AggregateActivity,
		EventType:     entity.ActivityCreated,
		Payload:       []byte(`{"name":"chess evening"}`),
		Status:        entity.OutboxNew,
	}
	require.NoError(t, r.InsertOutbox(context.Background(), e))
	return *e
}

func TestProcessOneMarksSent(t *testing.T) {
	r := newFakeRepo()
	s := newTestService(r)
	prod := &fakeProducer{}
	s.kafkaProducer = prod
	e := seedOutboxEvent(t, r)

	s.ProcessOne(context.Background(), 0, e)

	require.Len(t, prod.sent, 1)
	assert.Equal(t, []byte(`{"name":"chess evening"}`), prod.sent[0])
	assert.Equal(t, entity.OutboxSent, r.outbox[0].Status)
}

func TestProcessOneProducerFailureMarksFailed(t *testing.T) {
	r := newFakeRepo()
	s := newTestService(r)
	s.kafkaProducer = &fakeProducer{err: errors.New("broker down")}
	e := seedOutboxEvent(t, r)

	s.ProcessOne(context.Background(), 0, e)

	assert.Equal(t, entity.OutboxFailed, r.outbox[0].Status)
}

func TestProcessOneGivesUpAfterMaxAttempts(t *testing.T) {
	r := newFakeRepo()
	s := newTestService(r)
	s.kafkaProducer = &fakeProducer{err: errors.New("broker down")}
	e := seedOutboxEvent(t, r)
	e.Attempts = s.cfg.MaxAttempts - 1

	s.ProcessOne(context.Background(), 0, e)

	assert.Equal(t, entity.OutboxGaveUp, r.outbox[0].Status)
}

func TestReserveBatchSkipsSentEvents(t *testing.T) {
	r := newFakeRepo()
	s := newTestService(r)
	first := seedOutboxEvent(t, r)
	seedOutboxEvent(t, r)
	require.NoError(t, r.markOutbox(first.ID, entity.OutboxSent))

	events, err := s.transactions.GetOperationsFromOutbox(context.Background(), *s.cfg)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEqual(t, first.ID, events[0].ID)
}
