// Package voter provides storage for the voter registry. Implementations
// return pkg/platform/sentinel errors; services translate them into domain
// errors.
package voter

import (
	"fmt"

	"ballotbox/pkg/platform/sentinel"
)

// Duplicate sentinels identify which uniqueness constraint a write hit.
// Both unwrap to sentinel.ErrDuplicate.
var (
	ErrDuplicateEmail     = fmt.Errorf("email: %w", sentinel.ErrDuplicate)
	ErrDuplicateStudentID = fmt.Errorf("student id: %w", sentinel.ErrDuplicate)
)
