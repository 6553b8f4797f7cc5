package contentstream

import (
	"bytes"
	"testing"
)

func TestParseShowTextOperations(t *testing.T) {
	ops, err := Parse([]byte("BT (Hello) Tj [(Over) -120 (fitting)] TJ ET"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(ops) != 4 {
		t.Fatalf("expected 4 operations, got %d", len(ops))
	}
	text, ok := ops[1].Text()
	if !ok || string(text) != "Hello" {
		t.Fatalf("unexpected Tj operand: %q ok=%v", text, ok)
	}
	elems, ok := ops[2].TextArray()
	if !ok || len(elems) != 3 {
		t.Fatalf("unexpected TJ elements: %v ok=%v", elems, ok)
	}
	num, ok := elems[1].(NumberOperand)
	if !ok || num.Value != -120 {
		t.Fatalf("expected adjustment -120, got %#v", elems[1])
	}
}

func TestParseStringEscapes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`(a\(b\)c)`, "a(b)c"},
		{`(line\nbreak)`, "line\nbreak"},
		{`(octal \014 marker)`, "octal \x0c marker"},
		{`(nested (parens) kept)`, "nested (parens) kept"},
		{`(back\\slash)`, `back\slash`},
	}
	for _, tc := range cases {
		ops, err := Parse([]byte(tc.in + " Tj"))
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		text, ok := ops[0].Text()
		if !ok || string(text) != tc.want {
			t.Fatalf("parse %q: got %q, want %q", tc.in, text, tc.want)
		}
	}
}

func TestParseHexString(t *testing.T) {
	ops, err := Parse([]byte("<48656C6C6F> Tj <48656C6C6> Tj"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if text, _ := ops[0].Text(); string(text) != "Hello" {
		t.Fatalf("hex string decoded to %q", text)
	}
	// Odd digit count implies a trailing zero nibble.
	if text, _ := ops[1].Text(); string(text) != "Hell`" {
		t.Fatalf("odd hex string decoded to %q", text)
	}
}

func TestParseReportsDanglingOperands(t *testing.T) {
	if _, err := Parse([]byte("(orphan)")); err == nil {
		t.Fatal("expected error for dangling operands")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	src := []byte("BT\n/F1 12 Tf\n(Hello) Tj\n[(Over) -120 (fitting)] TJ\nET")
	ops, err := Parse(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	out := Serialize(ops)
	if !bytes.Equal(out, src) {
		t.Fatalf("round trip drifted:\n in: %q\nout: %q", src, out)
	}
}

func TestSerializeEscapesControlBytes(t *testing.T) {
	op := ShowTextPositioning([]Operand{
		StringOperand{Value: []byte("Ov")},
		StringOperand{Value: []byte("\x0ctting")},
	})
	out := Serialize([]Operation{op})
	want := `[(Ov) (\014tting)] TJ`
	if string(out) != want {
		t.Fatalf("serialized %q, want %q", out, want)
	}
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	elems, _ := back[0].TextArray()
	if string(elems[1].(StringOperand).Value) != "\x0ctting" {
		t.Fatalf("ligature marker lost in round trip: %q", elems[1].(StringOperand).Value)
	}
}

func TestParseSkipsComments(t *testing.T) {
	ops, err := Parse([]byte("% header comment\n(Hi) Tj"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(ops) != 1 || ops[0].Operator != OpShowText {
		t.Fatalf("unexpected operations: %+v", ops)
	}
}
