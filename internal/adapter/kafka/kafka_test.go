package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/climate-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (r *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msgs...)
	return nil
}

func (r *recordingWriter) Close() error {
	r.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC)
	diff := 0.10
	obs := domain.Observation{Year: 2021, JD: 1.12, Decade: 2020, TempDifference: &diff}

	msg, err := serializeToMessage(obs, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("2021"), msg.Key)
	assert.Contains(t, string(msg.Value), `"j_d":1.12`)
	assert.Contains(t, string(msg.Value), `"temp_difference":0.1`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "decade", msg.Headers[0].Key)
	assert.Equal(t, []byte("2020"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestWriter_Publish(t *testing.T) {
	rec := &recordingWriter{}
	w := &Writer{writer: rec, logger: discardLogger()}

	report := domain.Report{
		GeneratedAt: time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC),
		Table:       domain.Derive(domain.Table{{Year: 2020, JD: 1.02}, {Year: 2021, JD: 1.12}}),
	}

	require.NoError(t, w.Publish(context.Background(), report))
	require.Len(t, rec.msgs, 2)

	var first domain.Observation
	require.NoError(t, json.Unmarshal(rec.msgs[0].Value, &first))
	assert.Equal(t, 2020, first.Year)
	assert.Nil(t, first.TempDifference)
	assert.Equal(t, []byte("2021"), rec.msgs[1].Key)

	require.NoError(t, w.Close())
	assert.True(t, rec.closed)
}

func TestWriter_PublishEmptyReport(t *testing.T) {
	rec := &recordingWriter{err: errors.New("should not be called")}
	w := &Writer{writer: rec, logger: discardLogger()}

	require.NoError(t, w.Publish(context.Background(), domain.Report{}))
}

func TestWriter_PublishError(t *testing.T) {
	rec := &recordingWriter{err: errors.New("leader not available")}
	w := &Writer{writer: rec, logger: discardLogger()}

	err := w.Publish(context.Background(), domain.Report{Table: domain.Table{{Year: 2020, JD: 1.02}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}
