package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ItemStatus is the terminal state of one attempted card.
type ItemStatus string

const (
	StatusOK            ItemStatus = "OK"
	StatusSkipped       ItemStatus = "SKIPPED"
	StatusLoadError     ItemStatus = "LOAD_ERROR"
	StatusProviderError ItemStatus = "PROVIDER_ERROR"
	StatusSaveError     ItemStatus = "SAVE_ERROR"
)

func (s ItemStatus) String() string { return string(s) }

// IsError reports whether the status counts toward the batch error total.
// Skips and mirror warnings do not.
func (s ItemStatus) IsError() bool {
	switch s {
	case StatusLoadError, StatusProviderError, StatusSaveError:
		return true
	}
	return false
}

// ItemOutcome records the result of one attempted card, in input order.
type ItemOutcome struct {
	Index         int
	NoteID        uuid.UUID
	Status        ItemStatus
	Front         string
	HTML          string
	Err           string
	MirrorWarning string
}

// Line renders the single human-readable log line for this item.
// Index is displayed 1-based.
func (o ItemOutcome) Line() string {
	n := o.Index + 1
	switch o.Status {
	case StatusOK:
		return fmt.Sprintf("[%d] OK: %s", n, o.Front)
	case StatusSkipped:
		return fmt.Sprintf("[%d] SKIP note %s: Front field is empty.", n, o.NoteID)
	case StatusLoadError:
		return fmt.Sprintf("[%d] ERROR loading note %s: %s", n, o.NoteID, o.Err)
	case StatusProviderError:
		return fmt.Sprintf("[%d] ERROR for '%s': %s", n, o.Front, o.Err)
	case StatusSaveError:
		return fmt.Sprintf("[%d] ERROR saving note %s: %s", n, o.NoteID, o.Err)
	}
	return fmt.Sprintf("[%d] %s", n, o.Status)
}

// BatchSummary aggregates one full pipeline run.
//
// Outcomes and Lines hold attempted items only, in input order, one entry
// per attempted item. Total always counts the whole input list, even when
// the run was cancelled partway through.
type BatchSummary struct {
	Total     int
	Errors    int
	Outcomes  []ItemOutcome
	Lines     []string
	Cancelled bool
}

// HasErrors reports whether any attempted item failed.
func (s BatchSummary) HasErrors() bool { return s.Errors > 0 }

// FinalLine renders the closing summary line.
func (s BatchSummary) FinalLine() string {
	return fmt.Sprintf("Done. %d card(s) processed, %d error(s).", s.Total, s.Errors)
}
