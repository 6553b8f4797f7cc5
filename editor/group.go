package editor

import (
	"strings"

	"github.com/shekharashishraj/codex-code-glyph/contentstream"
	"github.com/shekharashishraj/codex-code-glyph/vocab"
)

// RewriteGroup applies the vocabulary to one TJ group and redistributes the
// replaced text across the group's original element boundaries. It returns
// (nil, nil) when nothing changed, which lets callers skip rewriting.
func RewriteGroup(elems []contentstream.Operand, v *vocab.Vocabulary) ([]contentstream.Operand, []vocab.Match) {
	return rewriteElements(elems, v, DefaultSpaceThreshold)
}

func rewriteElements(elems []contentstream.Operand, v *vocab.Vocabulary, threshold float64) ([]contentstream.Operand, []vocab.Match) {
	if len(elems) == 0 {
		return nil, nil
	}
	n := Normalize(elems, threshold)
	if strings.TrimSpace(n.Text) == "" {
		return nil, nil
	}
	matches := v.Matches(n.Text)
	if len(matches) == 0 {
		return nil, nil
	}
	return applyEdits(elems, n, matches)
}

// applyEdits splices the edits into the normalized text and aggregates the
// result back onto the original elements. Each edit is a span of logical
// text with its replacement; spans must be ordered and non-overlapping.
func applyEdits(elems []contentstream.Operand, n Normalized, edits []vocab.Match) ([]contentstream.Operand, []vocab.Match) {
	original := make([]strings.Builder, len(elems))
	rebuilt := make([]strings.Builder, len(elems))

	for i, owner := range n.Owners {
		if !owner.Space {
			original[owner.Element].WriteByte(n.Text[i])
		}
	}

	cursor := 0
	for _, m := range edits {
		for ; cursor < m.Start; cursor++ {
			if owner := n.Owners[cursor]; !owner.Space {
				rebuilt[owner.Element].WriteByte(n.Text[cursor])
			}
		}
		if m.Replacement != "" {
			if owner := replacementOwner(n.Owners, m.Start, m.End); owner >= 0 {
				rebuilt[owner].WriteString(m.Replacement)
			}
		}
		cursor = m.End
	}
	for ; cursor < len(n.Text); cursor++ {
		if owner := n.Owners[cursor]; !owner.Space {
			rebuilt[owner.Element].WriteByte(n.Text[cursor])
		}
	}

	out := make([]contentstream.Operand, 0, len(elems))
	changed := false
	for i, elem := range elems {
		if _, ok := elem.(contentstream.StringOperand); !ok {
			// Adjustments and anything else pass through untouched, in
			// their original positions.
			out = append(out, elem)
			continue
		}
		if rebuilt[i].String() == original[i].String() {
			// Unchanged runs keep their original bytes, ligature markers
			// included.
			out = append(out, elem)
			continue
		}
		out = append(out, contentstream.StringOperand{Value: []byte(rebuilt[i].String())})
		changed = true
	}
	if !changed {
		return nil, nil
	}
	return out, edits
}

// replacementOwner picks the element that receives replacement characters:
// the owner of the span's first character when it is a text run, otherwise
// the nearest preceding text owner, otherwise the nearest one past the span.
// Returns -1 when the whole group is inferred spaces.
func replacementOwner(owners []Owner, start, end int) int {
	if start < len(owners) && !owners[start].Space {
		return owners[start].Element
	}
	for i := min(start, len(owners)) - 1; i >= 0; i-- {
		if !owners[i].Space {
			return owners[i].Element
		}
	}
	for i := min(end, len(owners)); i < len(owners); i++ {
		if !owners[i].Space {
			return owners[i].Element
		}
	}
	return -1
}
