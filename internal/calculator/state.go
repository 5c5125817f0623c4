package calculator

import "encoding/json"

// Operand is a textual operand that may be absent. The empty string is a
// present operand (it is what a failed evaluation produces), so presence is
// tracked separately from the value.
type Operand struct {
	value string
	set   bool
}

// Some returns a present operand holding s.
func Some(s string) Operand {
	return Operand{value: s, set: true}
}

// None returns an absent operand.
func None() Operand {
	return Operand{}
}

// Value returns the operand text and whether it is present.
func (o Operand) Value() (string, bool) {
	return o.value, o.set
}

// String returns the operand text, or "" when absent.
func (o Operand) String() string {
	return o.value
}

// IsSet reports whether the operand is present.
func (o Operand) IsSet() bool {
	return o.set
}

// MarshalJSON encodes an absent operand as null.
func (o Operand) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as absent.
func (o *Operand) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = Some(s)
	return nil
}

// Operator is one of the four arithmetic symbols. The zero value means no
// operator is pending.
type Operator string

const (
	OpNone     Operator = ""
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
)

// Name returns the operation name used for span names and metric attributes.
func (op Operator) Name() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	}
	return "none"
}

// MarshalJSON encodes a missing operator as null.
func (op Operator) MarshalJSON() ([]byte, error) {
	if op == OpNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(op))
}

// UnmarshalJSON decodes null as OpNone.
func (op *Operator) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*op = OpNone
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*op = Operator(s)
	return nil
}

// State is the complete calculator state. It is a plain value: the reducer
// never mutates a State in place, and two States compare equal with ==.
type State struct {
	Current   Operand  `json:"current_operand"`
	Previous  Operand  `json:"previous_operand"`
	Operator  Operator `json:"operator"`
	Overwrite bool     `json:"overwrite"`
}

// NewState returns a fresh calculator with every field absent.
func NewState() State {
	return State{}
}
