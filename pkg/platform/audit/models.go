// Package audit captures key domain actions for operational visibility.
// This is a plain event trail, not a cryptographic audit of ballots: events
// never record which party a ballot selected.
package audit

import (
	"context"
	"time"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp  time.Time
	Action     string
	ElectionID string
	// Subject identifies the acting principal (voter or admin) as an opaque
	// string. Never paired with a party selection.
	Subject   string
	RequestID string
	Detail    string
}

type AuditEvent string

const (
	EventElectionCreated AuditEvent = "election_created"
	EventElectionDeleted AuditEvent = "election_deleted"
	EventPartyAdded      AuditEvent = "party_added"
	EventPartyDeleted    AuditEvent = "party_deleted"
	EventVoterRegistered AuditEvent = "voter_registered"
	EventVoteCast        AuditEvent = "vote_cast"
	EventVoteRejected    AuditEvent = "vote_rejected"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByElection(ctx context.Context, electionID string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
