package editor

import (
	"bytes"
	"testing"

	"github.com/shekharashishraj/codex-code-glyph/contentstream"
	"github.com/shekharashishraj/codex-code-glyph/vocab"
)

func operandText(t *testing.T, elem contentstream.Operand) string {
	t.Helper()
	s, ok := elem.(contentstream.StringOperand)
	if !ok {
		t.Fatalf("expected string operand, got %#v", elem)
	}
	return string(s.Value)
}

func TestRewriteGroupKeepsAdjustments(t *testing.T) {
	v := vocab.Compile(map[string]string{"Over": "Under"})
	elems := []contentstream.Operand{strOp("Over"), numOp(-120), strOp("fitting")}

	out, matches := RewriteGroup(elems, v)
	if out == nil {
		t.Fatal("expected a rewrite")
	}
	if len(out) != 3 {
		t.Fatalf("element count changed: %d", len(out))
	}
	if got := operandText(t, out[0]); got != "Under" {
		t.Fatalf("first run = %q", got)
	}
	if adj, ok := out[1].(contentstream.NumberOperand); !ok || adj.Value != -120 {
		t.Fatalf("adjustment lost: %#v", out[1])
	}
	if got := operandText(t, out[2]); got != "fitting" {
		t.Fatalf("untouched run rewritten: %q", got)
	}
	if len(matches) != 1 || matches[0].Original != "Over" {
		t.Fatalf("matches = %+v", matches)
	}
}

func TestRewriteGroupAcrossLigatureMarker(t *testing.T) {
	v := vocab.Compile(map[string]string{"Overfitting": "Underfitting"})
	elems := []contentstream.Operand{strOp("Over"), strOp("\x0ctting")}

	out, _ := RewriteGroup(elems, v)
	if out == nil {
		t.Fatal("expected a rewrite across the ligature marker")
	}
	// The replacement lands in the run owning the match start; the second
	// run is consumed down to an empty string.
	if got := operandText(t, out[0]); got != "Underfitting" {
		t.Fatalf("first run = %q", got)
	}
	if got := operandText(t, out[1]); got != "" {
		t.Fatalf("consumed run = %q", got)
	}
}

func TestRewriteGroupPreservesUntouchedLigatures(t *testing.T) {
	v := vocab.Compile(map[string]string{"Hello": "Hi"})
	marker := []byte("di\x0eicult")
	elems := []contentstream.Operand{strOp("Hello "), contentstream.StringOperand{Value: marker}}

	out, _ := RewriteGroup(elems, v)
	if out == nil {
		t.Fatal("expected a rewrite")
	}
	if got := operandText(t, out[0]); got != "Hi " {
		t.Fatalf("first run = %q", got)
	}
	// The unmatched run keeps its original bytes, marker included.
	if !bytes.Equal(out[1].(contentstream.StringOperand).Value, marker) {
		t.Fatalf("ligature marker expanded in output: %q", out[1].(contentstream.StringOperand).Value)
	}
}

func TestRewriteGroupNoMatchReturnsNil(t *testing.T) {
	v := vocab.Compile(map[string]string{"absent": "present"})
	out, matches := RewriteGroup([]contentstream.Operand{strOp("nothing here")}, v)
	if out != nil || matches != nil {
		t.Fatalf("expected no-op, got %v %v", out, matches)
	}
}

func TestRewriteGroupBlankGroupReturnsNil(t *testing.T) {
	v := vocab.Compile(map[string]string{"a": "b"})
	out, _ := RewriteGroup([]contentstream.Operand{numOp(-200), numOp(-150)}, v)
	if out != nil {
		t.Fatalf("blank group rewritten: %v", out)
	}
}

func TestRewriteGroupSplitWord(t *testing.T) {
	v := vocab.Compile(map[string]string{"Transformer": "Adapter"})
	elems := []contentstream.Operand{strOp("Trans"), numOp(-40), strOp("former models")}

	out, _ := RewriteGroup(elems, v)
	if out == nil {
		t.Fatal("expected a rewrite")
	}
	if got := operandText(t, out[0]); got != "Adapter" {
		t.Fatalf("first run = %q", got)
	}
	if got := operandText(t, out[2]); got != " models" {
		t.Fatalf("tail run = %q", got)
	}
}

func TestReplacementOwnerFallsBackAroundSpaces(t *testing.T) {
	owners := []Owner{
		{Element: 0, Offset: 0},
		{Element: 1, Space: true},
		{Element: 2, Offset: 0},
	}
	if got := replacementOwner(owners, 1, 2); got != 0 {
		t.Fatalf("preceding owner = %d", got)
	}
	if got := replacementOwner([]Owner{{Element: 1, Space: true}, {Element: 2, Offset: 0}}, 0, 1); got != 2 {
		t.Fatalf("following owner = %d", got)
	}
	if got := replacementOwner([]Owner{{Element: 0, Space: true}}, 0, 1); got != -1 {
		t.Fatalf("all-space group owner = %d", got)
	}
}
