package editor

import (
	"github.com/shekharashishraj/codex-code-glyph/contentstream"
)

// DefaultSpaceThreshold is the adjustment magnitude at which a positioning
// adjustment is read as a word-separating space. Adjustments closer to zero
// are kerning noise and contribute no character.
const DefaultSpaceThreshold = -120

// ligatureExpansions maps the reserved single-codepoint ligature markers to
// the letter sequences they stand for. Declarative so new markers can be
// added without touching the normalizer walk.
var ligatureExpansions = map[byte]string{
	0x0c: "fi",
	0x0b: "fl",
	0x0e: "ff",
	0x0f: "ffi",
}

// Owner ties one logical character back to the element that produced it.
type Owner struct {
	Element int
	Offset  int
	// Space marks characters inferred from an Adjustment. They carry no
	// element text and never receive replacement characters.
	Space bool
}

// Normalized is a group's logical text together with its ownership map.
// Owners has exactly one entry per byte of Text.
type Normalized struct {
	Text   string
	Owners []Owner
}

// Normalize reconstructs the logical text of one element sequence. Text runs
// contribute their printable characters with ligature markers expanded in
// place; adjustments at or below spaceThreshold contribute one inferred
// space owned by the adjustment element. Normalization is total: any element
// sequence yields a consistent ownership map.
func Normalize(elems []contentstream.Operand, spaceThreshold float64) Normalized {
	var text []byte
	var owners []Owner
	for i, elem := range elems {
		switch e := elem.(type) {
		case contentstream.StringOperand:
			for off, c := range e.Value {
				if expansion, ok := ligatureExpansions[c]; ok {
					for j := 0; j < len(expansion); j++ {
						text = append(text, expansion[j])
						owners = append(owners, Owner{Element: i, Offset: off})
					}
					continue
				}
				if !printable(c) {
					continue
				}
				text = append(text, c)
				owners = append(owners, Owner{Element: i, Offset: off})
			}
		case contentstream.NumberOperand:
			if e.Value <= spaceThreshold {
				text = append(text, ' ')
				owners = append(owners, Owner{Element: i, Space: true})
			}
		}
	}
	n := Normalized{Text: string(text), Owners: owners}
	if len(n.Text) != len(n.Owners) {
		// Contract failure internal to the normalizer; input data cannot
		// trigger this.
		panic("editor: ownership map out of step with logical text")
	}
	return n
}

func printable(c byte) bool {
	return (c >= 0x20 && c <= 0x7e) || c == '\n' || c == '\t'
}
