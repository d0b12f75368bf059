// Package profanity classifies free text against a configurable word list.
package profanity

import (
	"strings"
	"unicode"
)

// defaultWords is the built-in banned word list. Deployments extend it with
// AddWords; the list here stays intentionally small and mild.
var defaultWords = []string{
	"arse",
	"bollocks",
	"crap",
	"damn",
	"hell",
	"piss",
	"wanker",
}

// Filter reports whether text contains a banned word. The zero value is not
// usable; construct with New.
type Filter struct {
	words map[string]struct{}
}

// New returns a Filter seeded with the default word list plus any extra
// words.
func New(extra ...string) *Filter {
	f := &Filter{
		words: make(map[string]struct{}, len(defaultWords)+len(extra)),
	}
	f.AddWords(defaultWords...)
	f.AddWords(extra...)
	return f
}

// AddWords adds words to the banned list. Matching is case-insensitive, so
// words are stored lowercased.
func (f *Filter) AddWords(words ...string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			f.words[w] = struct{}{}
		}
	}
}

// IsProfane reports whether any whole word in text is on the banned list.
// Words are split on any non-letter, non-digit rune, so punctuation does not
// hide a match ("badword!" still matches "badword").
func (f *Filter) IsProfane(text string) bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range fields {
		if _, ok := f.words[word]; ok {
			return true
		}
	}
	return false
}
