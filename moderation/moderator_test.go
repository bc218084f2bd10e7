package moderation

import (
	"testing"

	"chat-relay/errors"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// TestModerator_Censor
// The dictionary uses specific words to avoid partial collisions (e.g., "he" inside "The")
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
		},
		{
			name:     "Multiple occurrences and preserved spacing",
			input:    "badger badger badger",
			expected: "****** ****** ******",
		},
		{
			name: "Internal punctuation",
			// B (index 8) to r (index 18), 11 masked characters
			input:    "Look at B.a.d.g.e.r !",
			expected: "Look at *********** !",
		},
		{
			name:     "Uppercase and extreme noise",
			input:    "S-N-A-K-E is a B.A.D.G.E.R",
			expected: "********* is a ***********",
		},
		{
			name:     "Accents and special characters (UTF-8)",
			input:    "Un été avec un badger",
			expected: "Un été avec un ******",
		},
		{
			name:     "Word adjacent to trailing punctuation",
			input:    "I love badger!",
			expected: "I love ******!",
		},
		{
			name:     "Nothing to censor",
			input:    "Chat-Relay is amazing",
			expected: "Chat-Relay is amazing",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Equal(tt.expected, mod.Censor(tt.input), "test=%s,", tt.name)
		})
	}
}

func TestModerator_CornerCases(t *testing.T) {
	req := require.New(t)

	// Given real noise mixed into the dictionary
	dictionary := []string{"...", ",,,", "", "badger"}

	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	// Then the sentence is censored
	content := mod.Censor("The badger is safe")
	req.Equal("The ****** is safe", content)

	// Then real noise is uncensored
	content = mod.Censor("Hello ...")
	req.Equal("Hello ...", content)
}

func TestModerator_RejectsEmptyDictionary(t *testing.T) {
	req := require.New(t)

	_, err := NewModerator(nil, replacementChar)
	req.ErrorIs(err, errors.ErrEmptyWords)

	// A dictionary made only of separators is as empty as no dictionary
	_, err = NewModerator([]string{"...", " "}, replacementChar)
	req.ErrorIs(err, errors.ErrEmptyWords)
}
