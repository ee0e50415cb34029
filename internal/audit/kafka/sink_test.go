package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"channelling/internal/audit"
)

type recordingProducer struct {
	records []*kgo.Record
	err     error
}

func (p *recordingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	p.records = append(p.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestSinkWrite(t *testing.T) {
	producer := &recordingProducer{}
	sink := NewSink(producer, "channelling.audit")

	event := audit.Event{
		ID:       uuid.New(),
		Action:   audit.ActionRecordCreated,
		Kind:     "country",
		RecordID: 1,
		Version:  1,
		Actor:    "alice",
	}
	require.NoError(t, sink.Write(context.Background(), event))

	require.Len(t, producer.records, 1)
	rec := producer.records[0]
	assert.Equal(t, "channelling.audit", rec.Topic)
	assert.Equal(t, event.ID.String(), string(rec.Key))

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, event.Action, decoded.Action)
	assert.Equal(t, int64(1), decoded.RecordID)
	assert.Equal(t, "alice", decoded.Actor)
}

func TestSinkWriteProduceError(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker down")}
	sink := NewSink(producer, "channelling.audit")

	err := sink.Write(context.Background(), audit.Event{ID: uuid.New(), Action: audit.ActionRecordDeleted})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
