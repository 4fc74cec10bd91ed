//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/climate-dashboard/internal/adapter/gistemp"
	"github.com/couchcryptid/climate-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/climate-dashboard/internal/config"
	"github.com/couchcryptid/climate-dashboard/internal/domain"
	"github.com/couchcryptid/climate-dashboard/internal/observability"
	"github.com/couchcryptid/climate-dashboard/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "test-annual-anomalies"

// publishedMessage holds a deserialized message read from the topic.
type publishedMessage struct {
	Observation domain.Observation
	Key         string
	Headers     map[string]string
}

// readPublished reads a single message from the consumer and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var obs domain.Observation
	require.NoError(t, json.Unmarshal(msg.Value, &obs), "unmarshal message")

	return publishedMessage{
		Observation: obs,
		Key:         string(msg.Key),
		Headers:     headers,
	}
}

// TestPipelineEndToEnd wires the full pipeline (HTTP loader → transformer →
// Kafka writer) and verifies every cleaned observation reaches the topic in
// year order with its derived columns.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	dataset := serveDataset(t)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}

	client := gistemp.NewClient(dataset.URL, 10*time.Second, discardLogger())
	transformer := pipeline.NewTransformer(domain.ReportOptions{Source: client.Source()}, discardLogger())

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(client, transformer, writer, discardLogger(), metrics)

	require.NoError(t, p.Run(ctx))

	report, err := p.Report()
	require.NoError(t, err)
	require.Len(t, report.Table, 18)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]publishedMessage, 0, len(report.Table))
	for len(received) < len(report.Table) {
		received = append(received, readPublished(ctx, t, consumer))
	}

	for i, pm := range received {
		want := report.Table[i]
		assert.Equal(t, strconv.Itoa(want.Year), pm.Key, "message %d key", i)
		assert.Equal(t, strconv.Itoa(want.Decade), pm.Headers["decade"])
		_, err := time.Parse(time.RFC3339, pm.Headers["generated_at"])
		assert.NoError(t, err, "generated_at should be valid RFC3339")

		assert.Equal(t, want.Year, pm.Observation.Year)
		assert.InDelta(t, want.JD, pm.Observation.JD, 1e-12)
		assert.Equal(t, want.Decade, pm.Observation.Decade)
	}

	first, last := received[0].Observation, received[len(received)-1].Observation
	assert.Equal(t, 1880, first.Year)
	assert.Nil(t, first.TempDifference, "first year has no difference")
	assert.Nil(t, first.DN, "unobserved D-N")
	assert.Equal(t, 2024, last.Year)
	assert.InDelta(t, 1.28, last.JD, 1e-12)
	require.NotNil(t, last.TempDifference)
	assert.InDelta(t, 0.11, *last.TempDifference, 1e-9)
}

// TestPipelineBrokerUnavailable verifies a publish failure leaves the report
// available to the dashboard.
func TestPipelineBrokerUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dataset := serveDataset(t)

	cfg := &config.Config{
		KafkaBrokers: []string{"127.0.0.1:1"},
		KafkaTopic:   testTopic,
	}

	client := gistemp.NewClient(dataset.URL, 10*time.Second, discardLogger())
	transformer := pipeline.NewTransformer(domain.ReportOptions{Source: client.Source()}, discardLogger())

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(client, transformer, writer, discardLogger(), metrics)

	publishCtx, publishCancel := context.WithTimeout(ctx, 5*time.Second)
	defer publishCancel()
	require.NoError(t, p.Run(publishCtx))

	_, err := p.Report()
	require.NoError(t, err)
	require.NoError(t, p.CheckReadiness(ctx))
}
