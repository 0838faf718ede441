package domain

// MirrorRecord is one generation result replicated to the remote content
// store. NoteID is the idempotency key: repeated upserts with the same
// NoteID overwrite the stored row.
type MirrorRecord struct {
	NoteID     string
	DeckName   string
	Front      string
	AIContent  string
	ModelUsed  string
	PromptUsed string
}
