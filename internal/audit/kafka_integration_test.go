//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"personas/internal/audit"
	"personas/pkg/testutil/containers"
)

func TestKafkaStoreProducesEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rp := containers.GetManager().GetRedpanda(t)
	const topic = "personas.audit.test"
	rp.CreateTopic(ctx, t, topic)

	store, err := audit.NewKafkaStore([]string{rp.Broker}, topic)
	require.NoError(t, err)
	defer func() { _ = store.Close(ctx) }()

	event := audit.Event{
		Action:    audit.ActionVisibilityDecision,
		ActorID:   "viewer-1",
		ProfileID: "profile-1",
		Decision:  "deny",
		Reason:    "blocked",
		Step:      "blocklist",
		RequestID: "req-1",
		Timestamp: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "profile-1", string(records[0].Key))

	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, event, got)
}
