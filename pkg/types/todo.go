package types

import (
	"time"
	"unicode/utf8"
)

// Field length limits enforced at write time. Lengths are measured in
// Unicode code points, matching the persisted schema's column widths.
const (
	MaxTitleLen       = 255
	MaxDescriptionLen = 1024
)

// Todo is a node in the todo hierarchy.
type Todo struct {
	TodoID      string    // UUID v7, generated on creation, immutable.
	Title       string    // Required, at most MaxTitleLen code points.
	Description string    // Optional, at most MaxDescriptionLen code points.
	ParentID    string    // Empty for roots; otherwise an existing TodoID. Immutable.
	CreatedAt   time.Time // Set once at creation, UTC.
	UpdatedAt   time.Time // Refreshed on every mutation, UTC.
}

// IsRoot reports whether the todo has no parent.
func (t *Todo) IsRoot() bool {
	return t.ParentID == ""
}

// Validate checks the title and description bounds. It returns one of
// the validation sentinel errors; see IsValidation.
func (t *Todo) Validate() error {
	if t.Title == "" {
		return ErrTitleEmpty
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLen {
		return ErrTitleTooLong
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// Clone returns a copy of the todo. Callers receive clones from the
// store so that mutating a returned record cannot corrupt engine state.
func (t *Todo) Clone() *Todo {
	cp := *t
	return &cp
}
