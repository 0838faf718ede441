package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Field names recognized on AI-capable note types.
const (
	FieldFront     = "Front"
	FieldAIContent = "AI_Content"
	FieldNoteID    = "NoteID"
)

// Note is one flashcard record in the collection.
//
// Fields maps field name to raw value. A key absent from the map means the
// note's type does not have that field at all, which is different from a
// key holding an empty string.
type Note struct {
	ID        uuid.UUID
	Deck      string
	Fields    map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewNote creates a note with a fresh identity in the given deck.
func NewNote(deck string, fields map[string]string) Note {
	if fields == nil {
		fields = make(map[string]string)
	}
	return Note{
		ID:     uuid.New(),
		Deck:   deck,
		Fields: fields,
	}
}

// Front returns the trimmed front text, or "" when the field is absent.
func (n *Note) Front() string {
	return strings.TrimSpace(n.Fields[FieldFront])
}

// AIContent returns the raw AI-content field value ("" when absent).
func (n *Note) AIContent() string {
	return n.Fields[FieldAIContent]
}

// StableID returns the write-once identity field value ("" when absent or unset).
func (n *Note) StableID() string {
	return n.Fields[FieldNoteID]
}

// HasRequiredFields reports whether the note's type carries both the Front
// input field and the AI_Content output field.
func (n *Note) HasRequiredFields() bool {
	_, hasFront := n.Fields[FieldFront]
	_, hasContent := n.Fields[FieldAIContent]
	return hasFront && hasContent
}

// HasAIContent reports whether AI content is already present (non-empty
// after trimming).
func (n *Note) HasAIContent() bool {
	return strings.TrimSpace(n.Fields[FieldAIContent]) != ""
}

// SetAIContent writes generated HTML into the AI_Content field.
//
// Fails when the note's type has no AI_Content field. The NoteID field is
// set to stableID only when the field exists and is currently empty; an
// already populated NoteID is never overwritten, and a note type without
// the field is tolerated silently.
func (n *Note) SetAIContent(html, stableID string) error {
	if _, ok := n.Fields[FieldAIContent]; !ok {
		return fmt.Errorf("note %s has no %s field: %w", n.ID, FieldAIContent, ErrMissingField)
	}
	n.Fields[FieldAIContent] = html
	if existing, ok := n.Fields[FieldNoteID]; ok && strings.TrimSpace(existing) == "" {
		n.Fields[FieldNoteID] = stableID
	}
	return nil
}

// Clone returns a deep copy of the note. Staged mutations on the copy do
// not leak into the original.
func (n *Note) Clone() Note {
	fields := make(map[string]string, len(n.Fields))
	for k, v := range n.Fields {
		fields[k] = v
	}
	c := *n
	c.Fields = fields
	return c
}
