// Package sign turns English text into sign presentation frames and maps
// free text onto the static gesture catalog.
package sign

import (
	"sort"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/satriahrh/isyarat/domain/entities"
)

// DefaultVocabulary lists the gloss words that have a whole-word sign
func DefaultVocabulary() []string {
	return []string{
		"hello", "thank", "you", "thankyou", "good", "morning", "evening",
		"yes", "no", "please", "sorry",
	}
}

// Tokenizer converts English text into word, letter and spacer frames
type Tokenizer struct {
	vocabulary map[string]struct{}
}

// NewTokenizer creates a tokenizer for the given vocabulary. Words are
// lower-cased; blank entries are ignored.
func NewTokenizer(vocabulary []string) *Tokenizer {
	words := make(map[string]struct{}, len(vocabulary))
	for _, w := range vocabulary {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words[w] = struct{}{}
		}
	}
	return &Tokenizer{vocabulary: words}
}

// Known reports whether a normalized token has a whole-word sign
func (t *Tokenizer) Known(token string) bool {
	_, ok := t.vocabulary[token]
	return ok
}

// Vocabulary returns the known words in alphabetical order
func (t *Tokenizer) Vocabulary() []string {
	words := make([]string, 0, len(t.vocabulary))
	for w := range t.vocabulary {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Frames converts English text into an ordered frame sequence. It never
// returns an empty slice: text with no usable tokens yields a single
// placeholder spacer.
func (t *Tokenizer) Frames(english string) []entities.Frame {
	tokens := Normalize(english)

	frames := make([]entities.Frame, 0, len(tokens)*2)
	for _, token := range tokens {
		if t.Known(token) {
			frames = append(frames, entities.WordFrame(strings.ToUpper(token)))
			continue
		}

		graphemes := uniseg.NewGraphemes(token)
		for graphemes.Next() {
			frames = append(frames, entities.LetterFrame(strings.ToUpper(graphemes.Str())))
		}
		frames = append(frames, entities.SpacerFrame())
	}

	if len(frames) == 0 {
		return []entities.Frame{entities.PlaceholderFrame()}
	}
	return frames
}

// Normalize lower-cases text, drops everything except letters, digits
// and whitespace, and splits it into tokens. Combining marks are dropped,
// so a decomposed "é" spells as "E".
func Normalize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(text))
	return strings.Fields(cleaned)
}
