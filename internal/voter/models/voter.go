// Package models defines the voter registry types.
package models

import (
	"errors"
	"strings"
	"time"

	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/email"
)

// Voter is one registered participant. Identity verification and
// credentials live with the external identity provider; this registry only
// records who may appear on a ballot ledger.
//
// Invariants:
//   - Email is unique, compared case-insensitively
//   - StudentID, when present, is unique
type Voter struct {
	ID        id.VoterID `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	StudentID string     `json:"student_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewVoter validates registration input and builds a Voter. Email is
// normalized to lower case so uniqueness cannot be dodged by case games.
func NewVoter(voterID id.VoterID, name, emailRaw, studentID string, now time.Time) (*Voter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if len(name) > 200 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "name must be 200 characters or less")
	}

	addr, err := email.Normalize(emailRaw)
	if err != nil {
		if errors.Is(err, email.ErrEmpty) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "email is required")
		}
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email is malformed")
	}

	return &Voter{
		ID:        voterID,
		Name:      name,
		Email:     addr,
		StudentID: strings.TrimSpace(studentID),
		CreatedAt: now,
	}, nil
}
