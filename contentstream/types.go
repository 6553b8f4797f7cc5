package contentstream

// Operand is a type-safe operand value appearing ahead of an operator.
type Operand interface {
	operand()
	Type() string
}

// NumberOperand carries a numeric operand. Inside a show-text array it is a
// positioning adjustment and must survive rewriting numerically unchanged.
type NumberOperand struct{ Value float64 }

func (NumberOperand) operand()     {}
func (NumberOperand) Type() string { return "number" }

// StringOperand carries a byte-string operand (a text run).
type StringOperand struct{ Value []byte }

func (StringOperand) operand()     {}
func (StringOperand) Type() string { return "string" }

// NameOperand carries a /Name operand.
type NameOperand struct{ Value string }

func (NameOperand) operand()     {}
func (NameOperand) Type() string { return "name" }

// ArrayOperand carries an ordered operand sequence. The operand of a TJ
// operation is one ArrayOperand whose values are text runs and adjustments.
type ArrayOperand struct{ Values []Operand }

func (ArrayOperand) operand()     {}
func (ArrayOperand) Type() string { return "array" }

// Operation represents one operator and its operands. Operations are
// immutable inputs to the rewrite engine; rewriting produces new Operations.
type Operation struct {
	Operands []Operand
	Operator string
}

// Text-showing operators handled by the rewrite engine. Every other operator
// passes through untouched.
const (
	OpShowText            = "Tj"
	OpShowTextPositioning = "TJ"
)

// TextArray returns the element array of a TJ operation, or false when the
// operation is not a well-formed TJ.
func (op Operation) TextArray() ([]Operand, bool) {
	if op.Operator != OpShowTextPositioning || len(op.Operands) == 0 {
		return nil, false
	}
	arr, ok := op.Operands[len(op.Operands)-1].(ArrayOperand)
	if !ok {
		return nil, false
	}
	return arr.Values, true
}

// Text returns the string operand of a Tj operation, or false when the
// operation is not a well-formed Tj.
func (op Operation) Text() ([]byte, bool) {
	if op.Operator != OpShowText || len(op.Operands) == 0 {
		return nil, false
	}
	str, ok := op.Operands[len(op.Operands)-1].(StringOperand)
	if !ok {
		return nil, false
	}
	return str.Value, true
}

// ShowTextPositioning builds a TJ operation from the given elements.
func ShowTextPositioning(elems []Operand) Operation {
	return Operation{
		Operands: []Operand{ArrayOperand{Values: elems}},
		Operator: OpShowTextPositioning,
	}
}

// ShowText builds a Tj operation from the given byte-string.
func ShowText(text []byte) Operation {
	return Operation{
		Operands: []Operand{StringOperand{Value: text}},
		Operator: OpShowText,
	}
}
