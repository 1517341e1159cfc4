// Package domain holds shared domain primitives: typed identifiers parsed
// and validated at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "ballotbox/pkg/domain-errors"
)

// Typed IDs prevent cross-entity assignment at compile time: a VoterID can
// never be passed where an ElectionID is expected.
type (
	VoterID    uuid.UUID
	ElectionID uuid.UUID
	PartyID    uuid.UUID
	BallotID   uuid.UUID
)

func (id VoterID) String() string    { return uuid.UUID(id).String() }
func (id ElectionID) String() string { return uuid.UUID(id).String() }
func (id PartyID) String() string    { return uuid.UUID(id).String() }
func (id BallotID) String() string   { return uuid.UUID(id).String() }

func (id VoterID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ElectionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id PartyID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// Defined types do not inherit uuid.UUID's encoding methods, so each ID
// implements text marshaling itself. Without these, JSON rendering would
// emit raw byte arrays.
func (id VoterID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id ElectionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id PartyID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id BallotID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *VoterID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = VoterID(u)
	return err
}

func (id *ElectionID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = ElectionID(u)
	return err
}

func (id *PartyID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = PartyID(u)
	return err
}

func (id *BallotID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = BallotID(u)
	return err
}

// parseUUID enforces the shared invariant: IDs must be valid, non-nil UUIDs.
func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "malformed "+what+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id cannot be nil")
	}
	return u, nil
}

// ParseVoterID validates external input into a VoterID.
func ParseVoterID(s string) (VoterID, error) {
	u, err := parseUUID(s, "voter")
	return VoterID(u), err
}

// ParseElectionID validates external input into an ElectionID.
func ParseElectionID(s string) (ElectionID, error) {
	u, err := parseUUID(s, "election")
	return ElectionID(u), err
}

// ParsePartyID validates external input into a PartyID.
func ParsePartyID(s string) (PartyID, error) {
	u, err := parseUUID(s, "party")
	return PartyID(u), err
}
