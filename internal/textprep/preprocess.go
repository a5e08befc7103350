// ABOUTME: Product text preprocessing before embedding
// ABOUTME: Lower-cases, strips non-letters, drops stopwords, never returns empty for non-empty input
package textprep

import (
	"strings"
)

// Preprocessor cleans product titles, types, and descriptions
type Preprocessor struct {
	stopwords Stopwords
}

// NewPreprocessor creates a preprocessor over a fixed stopword set
func NewPreprocessor(stopwords Stopwords) *Preprocessor {
	return &Preprocessor{stopwords: stopwords}
}

// Process returns the cleaned text. If every token is filtered the original
// text is returned unchanged, so embedding input is never emptied by cleaning.
func (p *Preprocessor) Process(text string) string {
	tokens := strings.Fields(strings.Map(keepLetter, strings.ToLower(text)))

	kept := tokens[:0]
	for _, tok := range tokens {
		if !p.stopwords.Contains(tok) {
			kept = append(kept, tok)
		}
	}

	cleaned := strings.Join(kept, " ")
	if cleaned == "" {
		return text
	}
	return cleaned
}

// keepLetter maps every rune outside a-z to a space
func keepLetter(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r
	}
	return ' '
}
