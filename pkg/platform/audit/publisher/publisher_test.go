package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "ballotbox/pkg/platform/audit"
	"ballotbox/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	electionID := uuid.NewString()
	err := pub.Emit(context.Background(), audit.Event{
		Timestamp:  time.Now(),
		Action:     string(audit.EventElectionCreated),
		ElectionID: electionID,
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), electionID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventElectionCreated), events[0].Action)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	electionID := uuid.NewString()
	err := pub.Emit(context.Background(), audit.Event{
		Timestamp:  time.Now(),
		Action:     string(audit.EventVoteCast),
		ElectionID: electionID,
	})
	require.NoError(t, err)

	// Close flushes the buffer before returning.
	pub.Close()

	events, err := store.ListByElection(context.Background(), electionID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventVoteCast), events[0].Action)
}
