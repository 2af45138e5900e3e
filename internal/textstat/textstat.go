// Package textstat turns message bodies into countable content words and
// classifies bodies as prose or noise.
package textstat

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinWordLength is the shortest token (in runes) kept by Tokenize, exclusive.
const MinWordLength = 2

// MaxJunkRatio is the largest share of junk runes a clean text may contain.
const MaxJunkRatio = 0.10

// mediaMarker appears in every export placeholder for attachments,
// e.g. "<Media omitted>" or "image omitted".
const mediaMarker = "omitted"

// Tokenize lower-cases text, strips everything that is not a letter, digit or
// whitespace, and returns the remaining words longer than MinWordLength runes
// that are not stop words. Words are not stemmed.
func Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, text)

	var words []string
	for _, w := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(w) <= MinWordLength {
			continue
		}
		if IsStopWord(w) {
			continue
		}
		words = append(words, w)
	}
	return words
}

// IsCleanText reports whether text reads as prose: at most MaxJunkRatio of
// its runes are symbols, emoji or other non-prose characters, and letters and
// digits are at least as many as the sentence punctuation around them.
// Whitespace and ordinary sentence punctuation are not junk.
func IsCleanText(text string) bool {
	total, junk, prose, punct := 0, 0, 0, 0
	for _, r := range text {
		total++
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			prose++
		case isJunk(r):
			junk++
		case !unicode.IsSpace(r):
			punct++
		}
	}
	if prose == 0 || prose < punct {
		return false
	}
	return float64(junk)/float64(total) <= MaxJunkRatio
}

// IsMediaPlaceholder reports whether content is an attachment placeholder
// rather than typed text.
func IsMediaPlaceholder(content string) bool {
	return strings.Contains(content, mediaMarker)
}

func isJunk(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
		return false
	}
	switch r {
	case '.', ',', ';', ':', '!', '?', '\'', '"', '(', ')', '-':
		return false
	}
	return true
}
