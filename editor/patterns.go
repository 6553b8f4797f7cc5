package editor

import (
	"context"
	"sort"

	"github.com/dlclark/regexp2"

	"github.com/shekharashishraj/codex-code-glyph/scripting"
)

// StructuralMatch is a candidate span recovered from joint window text by a
// structural pattern. Text is the reassembled candidate to resolve against
// the vocabulary; it may differ from what the window literally shows.
type StructuralMatch struct {
	Start int
	End   int
	Text  string
}

// StructuralPattern recognizes fragment shapes that only make sense when
// consecutive groups are read jointly.
type StructuralPattern interface {
	Name() string
	Detect(ctx context.Context, text string) ([]StructuralMatch, error)
}

// splitDecimalShapes are the window shapes under which a decimal numeral
// loses its separator when split across groups: the separator surfaces as a
// stray colon, as bare spacing, or vanishes entirely. Capture 1 is the
// integer digit, capture 2 the fraction digits.
var splitDecimalShapes = []string{
	`(?:=\s*)?(\d)\s*:\s*(\d+):`,
	`(?:=\s*)?(\d)\s+(\d+):`,
	`(?:=\s*)?(\d)\s*(\d+):`,
}

type splitDecimalPattern struct {
	shapes []*regexp2.Regexp
}

// newSplitDecimalPattern compiles the built-in detector for decimal numbers
// split across group boundaries.
func newSplitDecimalPattern() *splitDecimalPattern {
	p := &splitDecimalPattern{}
	for _, shape := range splitDecimalShapes {
		p.shapes = append(p.shapes, regexp2.MustCompile(shape, regexp2.IgnoreCase))
	}
	return p
}

func (p *splitDecimalPattern) Name() string { return "split-decimal" }

func (p *splitDecimalPattern) Detect(_ context.Context, text string) ([]StructuralMatch, error) {
	var out []StructuralMatch
	seen := make(map[int]bool)
	for _, re := range p.shapes {
		m, err := re.FindStringMatch(text)
		for err == nil && m != nil {
			if !seen[m.Index] { // shapes overlap; the earliest compiled shape wins
				seen[m.Index] = true
				integer := m.GroupByNumber(1)
				fraction := m.GroupByNumber(2)
				// The span starts at the integer digit; the optional prefix
				// stays outside the edit.
				out = append(out, StructuralMatch{
					Start: integer.Index,
					End:   m.Index + m.Length,
					Text:  integer.String() + "." + fraction.String() + ":",
				})
			}
			m, err = re.FindNextMatch(m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End > out[j].End
	})
	return out, nil
}

// ScriptPattern adapts a user-supplied detector script to a
// StructuralPattern. The script sees the window text as `text` and returns
// candidate spans; candidates are rebuilt with the generic redistribution
// rule rather than the decimal one.
type ScriptPattern struct {
	name   string
	engine scripting.Engine
	source string
}

// NewScriptPattern wraps a detector script running on the given engine.
func NewScriptPattern(name string, engine scripting.Engine, source string) *ScriptPattern {
	return &ScriptPattern{name: name, engine: engine, source: source}
}

func (p *ScriptPattern) Name() string { return p.name }

func (p *ScriptPattern) Detect(ctx context.Context, text string) ([]StructuralMatch, error) {
	candidates, err := p.engine.Detect(ctx, p.source, text)
	if err != nil {
		return nil, err
	}
	out := make([]StructuralMatch, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, StructuralMatch{Start: c.Start, End: c.End, Text: c.Text})
	}
	return out, nil
}
