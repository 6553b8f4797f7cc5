package editor

import (
	"testing"

	"github.com/shekharashishraj/codex-code-glyph/contentstream"
)

func strOp(s string) contentstream.Operand {
	return contentstream.StringOperand{Value: []byte(s)}
}

func numOp(v float64) contentstream.Operand {
	return contentstream.NumberOperand{Value: v}
}

func TestNormalizeInfersSpaces(t *testing.T) {
	n := Normalize([]contentstream.Operand{strOp("Over"), numOp(-120), strOp("fitting")}, DefaultSpaceThreshold)
	if n.Text != "Over fitting" {
		t.Fatalf("normalized to %q", n.Text)
	}
	if len(n.Owners) != len(n.Text) {
		t.Fatalf("ownership map has %d entries for %d characters", len(n.Owners), len(n.Text))
	}
	sp := n.Owners[4]
	if !sp.Space || sp.Element != 1 {
		t.Fatalf("inferred space owner = %+v", sp)
	}
}

func TestNormalizeThresholdBoundary(t *testing.T) {
	n := Normalize([]contentstream.Operand{strOp("a"), numOp(-119), strOp("b")}, DefaultSpaceThreshold)
	if n.Text != "ab" {
		t.Fatalf("kerning adjustment produced a space: %q", n.Text)
	}
	n = Normalize([]contentstream.Operand{strOp("a"), numOp(-120), strOp("b")}, DefaultSpaceThreshold)
	if n.Text != "a b" {
		t.Fatalf("threshold adjustment dropped: %q", n.Text)
	}
}

func TestNormalizeExpandsLigatures(t *testing.T) {
	n := Normalize([]contentstream.Operand{strOp("di\x0eicult")}, DefaultSpaceThreshold)
	if n.Text != "difficult" {
		t.Fatalf("ligature expansion gave %q", n.Text)
	}
	// Both expansion characters answer to the marker byte's offset.
	if n.Owners[2].Offset != 2 || n.Owners[3].Offset != 2 {
		t.Fatalf("expansion owners = %+v, %+v", n.Owners[2], n.Owners[3])
	}
}

func TestNormalizeTotality(t *testing.T) {
	elems := []contentstream.Operand{
		strOp(""),
		numOp(-200),
		numOp(-30),
		strOp("a\x01b"),
		strOp(""),
	}
	n := Normalize(elems, DefaultSpaceThreshold)
	if n.Text != " ab" {
		t.Fatalf("normalized to %q", n.Text)
	}
	if len(n.Owners) != 3 {
		t.Fatalf("owners = %+v", n.Owners)
	}
	if n.Owners[1].Element != 3 || n.Owners[2].Offset != 2 {
		t.Fatalf("control byte skewed offsets: %+v", n.Owners)
	}
}

func TestNormalizeEmptyGroup(t *testing.T) {
	n := Normalize(nil, DefaultSpaceThreshold)
	if n.Text != "" || len(n.Owners) != 0 {
		t.Fatalf("empty group normalized to %q %+v", n.Text, n.Owners)
	}
}
