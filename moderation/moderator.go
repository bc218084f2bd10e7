package moderation

import (
	"unicode"

	"chat-relay/errors"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator masks forbidden words in message content before it is
// persisted. Matching runs on a lowercase projection with separators
// removed, so "b a d" and "B.a.d" are caught as well; the replacement
// is applied to the original runes to preserve spacing.
type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
}

func NewModerator(censoredWords []string, censoredChar rune) (*Moderator, error) {
	if len(censoredWords) == 0 {
		return nil, errors.ErrEmptyWords
	}
	patterns := make([][]rune, 0, len(censoredWords))
	for _, word := range censoredWords {
		normalized, _ := normalize(word)
		// Punctuation-only entries normalize to nothing and would match everywhere
		if len(normalized) == 0 {
			continue
		}
		patterns = append(patterns, normalized)
	}
	if len(patterns) == 0 {
		return nil, errors.ErrEmptyWords
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: machine, censoredChar: censoredChar}, nil
}

// Censor replaces every span matching a forbidden pattern with the
// configured character. Non-matching content is returned unchanged.
func (m *Moderator) Censor(original string) string {
	normalized, origIdx := normalize(original)
	if len(normalized) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return original
	}

	origRunes := []rune(original)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			origRunes[i] = m.censoredChar
		}
	}
	return string(origRunes)
}

// normalize lowercases the input and drops separators, keeping for
// every remaining rune its index in the original string.
func normalize(input string) ([]rune, []int) {
	runes := []rune(input)
	normalized := make([]rune, 0, len(runes))
	origIdx := make([]int, 0, len(runes))
	for i, r := range runes {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}
		normalized = append(normalized, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return normalized, origIdx
}
