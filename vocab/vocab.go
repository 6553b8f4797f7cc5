// Package vocab compiles a phrase replacement vocabulary into a single
// longest-match-first alternation matcher with exact and case-folded lookup.
package vocab

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
)

// Match records one resolved occurrence of a vocabulary phrase.
type Match struct {
	Start       int
	End         int
	Original    string
	Replacement string
}

type foldedEntry struct {
	original    string
	replacement string
}

// Vocabulary is the compiled form of a phrase→replacement mapping. It is
// immutable after Compile and safe to share across concurrent page workers.
type Vocabulary struct {
	matcher *regexp2.Regexp
	exact   map[string]string
	folded  map[string]foldedEntry
	keys    []string
}

// Compile builds a Vocabulary from the given mapping. Keys and values are
// whitespace-trimmed; entries with an empty side are skipped. Keys are
// ordered descending by length (then lexicographically) before both the
// alternation and the case-folded table are built, so a shorter phrase can
// never shadow a longer one that contains it.
func Compile(mapping map[string]string) *Vocabulary {
	v := &Vocabulary{
		exact:  make(map[string]string),
		folded: make(map[string]foldedEntry),
	}
	for key, repl := range mapping {
		key = strings.TrimSpace(key)
		repl = strings.TrimSpace(repl)
		if key == "" || repl == "" {
			continue
		}
		if _, ok := v.exact[key]; !ok {
			v.keys = append(v.keys, key)
		}
		v.exact[key] = repl
	}
	if len(v.keys) == 0 {
		return v
	}

	sort.Slice(v.keys, func(i, j int) bool {
		if len(v.keys[i]) != len(v.keys[j]) {
			return len(v.keys[i]) > len(v.keys[j])
		}
		return v.keys[i] < v.keys[j]
	})

	escaped := make([]string, len(v.keys))
	for i, key := range v.keys {
		escaped[i] = regexp.QuoteMeta(key)
		fold := foldKey(key)
		if _, ok := v.folded[fold]; !ok { // first seen wins: longest key claims the folded slot
			v.folded[fold] = foldedEntry{original: key, replacement: v.exact[key]}
		}
	}
	v.matcher = regexp2.MustCompile(strings.Join(escaped, "|"), regexp2.IgnoreCase)
	return v
}

// Empty reports whether the vocabulary has no usable entries.
func (v *Vocabulary) Empty() bool { return v == nil || v.matcher == nil }

// Resolve returns the replacement for a matched token: exact-case lookup
// first, then case-folded. The replacement is used verbatim, never re-cased.
func (v *Vocabulary) Resolve(token string) (string, bool) {
	if v == nil {
		return "", false
	}
	if repl, ok := v.exact[token]; ok {
		return repl, true
	}
	if entry, ok := v.folded[foldKey(token)]; ok {
		return entry.replacement, true
	}
	return "", false
}

// Matches runs the matcher over text and returns ordered non-overlapping
// matches. Hits that resolve to nothing, or to themselves, are dropped.
func (v *Vocabulary) Matches(text string) []Match {
	if v.Empty() || text == "" {
		return nil
	}
	var out []Match
	m, err := v.matcher.FindStringMatch(text)
	for err == nil && m != nil {
		original := m.String()
		if repl, ok := v.Resolve(original); ok && repl != original {
			out = append(out, Match{
				Start:       m.Index,
				End:         m.Index + m.Length,
				Original:    original,
				Replacement: repl,
			})
		}
		m, err = v.matcher.FindNextMatch(m)
	}
	return out
}

// ReplaceAll applies every match to text and returns the rewritten string
// together with the matches applied. The bool is false when nothing changed.
func (v *Vocabulary) ReplaceAll(text string) (string, []Match, bool) {
	matches := v.Matches(text)
	if len(matches) == 0 {
		return text, nil, false
	}
	// Match offsets are rune offsets; map them to byte offsets by walking
	// the source so unmatched regions are copied byte for byte, invalid
	// UTF-8 included. The matcher counts each invalid byte as one rune,
	// exactly as DecodeRuneInString does.
	byteOff, runeOff := 0, 0
	toByte := func(runeTarget int) int {
		for runeOff < runeTarget && byteOff < len(text) {
			_, n := utf8.DecodeRuneInString(text[byteOff:])
			byteOff += n
			runeOff++
		}
		return byteOff
	}
	var b strings.Builder
	cursor := 0
	for _, m := range matches {
		start := toByte(m.Start)
		b.WriteString(text[cursor:start])
		b.WriteString(m.Replacement)
		cursor = toByte(m.End)
	}
	b.WriteString(text[cursor:])
	return b.String(), matches, true
}

// foldKey applies full Unicode case folding. A fresh Caser per call: Casers
// are stateful and must not be shared between goroutines.
func foldKey(s string) string { return cases.Fold().String(s) }

// Len returns the number of compiled entries.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}
