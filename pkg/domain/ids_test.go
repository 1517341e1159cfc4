package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ballotbox/pkg/domain-errors"
)

// TestParseIDs validates the parsing invariant: IDs must be valid, non-empty,
// non-nil UUIDs. Malformed ids surface as CodeInvalidInput so the HTTP layer
// treats them as user errors, never as internal failures.
func TestParseIDs(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseElectionID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePartyID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseVoterID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		u := uuid.New()
		id, err := ParseElectionID(u.String())
		require.NoError(t, err)
		assert.Equal(t, ElectionID(u), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety between
// entity IDs. If this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	voterID := VoterID(uuid.New())
	electionID := ElectionID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ VoterID = electionID   // compile error
	// var _ ElectionID = voterID   // compile error

	assert.NotEqual(t, uuid.UUID(voterID), uuid.UUID(electionID))
}
