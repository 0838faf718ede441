package domain

import "strings"

// DeckSeparator joins deck path segments ("Languages::Spanish::Verbs").
const DeckSeparator = "::"

// DeckAncestors returns the strict ancestors of a deck path, most specific
// first. "A::B::C" yields ["A::B", "A"]; a top-level deck yields nil.
func DeckAncestors(deck string) []string {
	parts := strings.Split(deck, DeckSeparator)
	if len(parts) < 2 {
		return nil
	}
	ancestors := make([]string, 0, len(parts)-1)
	for i := len(parts) - 1; i >= 1; i-- {
		ancestors = append(ancestors, strings.Join(parts[:i], DeckSeparator))
	}
	return ancestors
}
