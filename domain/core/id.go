package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// SubjectID identifies one study participant, e.g. "treatment_7".
	SubjectID ID
	// RunID identifies one batch analysis run.
	RunID ID
)

func (id SubjectID) String() string { return ID(id).String() }
func (id RunID) String() string     { return ID(id).String() }

// NewRunID mints a fresh run identifier.
func NewRunID() RunID {
	return RunID(NewID())
}

// NewSubjectID builds a subject identifier from a group name and a number
// within the group, matching the study's file naming.
func NewSubjectID(group string, number int) SubjectID {
	return SubjectID(fmt.Sprintf("%s_%d", group, number))
}

// ParseSubjectID parses a string into SubjectID
func ParseSubjectID(s string) (SubjectID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("subject ID cannot be empty")
	}
	return SubjectID(s), nil
}

// Group returns the group part of a "group_number" subject ID, or the
// whole ID if it does not follow that convention.
func (id SubjectID) Group() string {
	s := string(id)
	if i := strings.LastIndex(s, "_"); i > 0 {
		return s[:i]
	}
	return s
}
