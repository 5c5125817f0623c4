package calculator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDigit    = errors.New("invalid digit")
	ErrInvalidOperator = errors.New("invalid operator")
	ErrUnknownAction   = errors.New("unknown action")
)

// ActionType identifies a state transition.
type ActionType string

const (
	ActionDigit    ActionType = "digit"
	ActionOperator ActionType = "operator"
	ActionReset    ActionType = "reset"
	ActionDelete   ActionType = "delete"
	ActionEvaluate ActionType = "evaluate"
	ActionClear    ActionType = "clear"
)

// Action is a transition plus its payload. Payload is the digit for
// ActionDigit and the operator symbol for ActionOperator; other actions
// carry no payload.
type Action struct {
	Type    ActionType `json:"type"`
	Payload string     `json:"value,omitempty"`
}

func Digit(d string) Action     { return Action{Type: ActionDigit, Payload: d} }
func Choose(op Operator) Action { return Action{Type: ActionOperator, Payload: string(op)} }
func Reset() Action             { return Action{Type: ActionReset} }
func Delete() Action            { return Action{Type: ActionDelete} }
func Evaluate() Action          { return Action{Type: ActionEvaluate} }
func Clear() Action             { return Action{Type: ActionClear} }

// ParseDigit validates a single digit or decimal point.
func ParseDigit(s string) (string, error) {
	if len(s) == 1 && (s == "." || (s[0] >= '0' && s[0] <= '9')) {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDigit, s)
}

// ParseOperator validates an operator symbol.
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(s); op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return op, nil
	}
	return OpNone, fmt.Errorf("%w: %q", ErrInvalidOperator, s)
}

// ParseAction validates an action received from outside the process.
func ParseAction(typ, value string) (Action, error) {
	switch ActionType(typ) {
	case ActionDigit:
		d, err := ParseDigit(value)
		if err != nil {
			return Action{}, err
		}
		return Digit(d), nil
	case ActionOperator:
		op, err := ParseOperator(value)
		if err != nil {
			return Action{}, err
		}
		return Choose(op), nil
	case ActionReset:
		return Reset(), nil
	case ActionDelete:
		return Delete(), nil
	case ActionEvaluate:
		return Evaluate(), nil
	case ActionClear:
		return Clear(), nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, typ)
}

// Reduce applies a to s and returns the resulting state. It is pure and
// total: an action that does not apply to s returns s unchanged.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionDigit:
		return enterDigit(s, a.Payload)
	case ActionOperator:
		return chooseOperator(s, Operator(a.Payload))
	case ActionReset:
		// Only the operand being typed is cleared; a pending operator and
		// previous operand survive.
		s.Current = None()
		return s
	case ActionDelete:
		return deleteLast(s)
	case ActionEvaluate:
		return evaluate(s)
	case ActionClear:
		return NewState()
	}
	return s
}

func enterDigit(s State, digit string) State {
	if s.Overwrite {
		s.Current = Some(digit)
		s.Overwrite = false
		return s
	}

	cur := s.Current.String()
	if digit == "0" && s.Current.IsSet() && cur == "0" {
		return s
	}
	if digit == "." && strings.Contains(cur, ".") {
		return s
	}

	s.Current = Some(cur + digit)
	return s
}

func chooseOperator(s State, op Operator) State {
	switch {
	case !s.Current.IsSet() && !s.Previous.IsSet():
		return s
	case !s.Current.IsSet():
		s.Operator = op
		return s
	case !s.Previous.IsSet():
		s.Previous = s.Current
		s.Current = None()
		s.Operator = op
		return s
	}

	s.Previous = Some(Compute(s.Previous.String(), s.Current.String(), s.Operator))
	s.Current = None()
	s.Operator = op
	return s
}

func deleteLast(s State) State {
	if s.Overwrite {
		s.Overwrite = false
		s.Current = None()
		return s
	}

	cur, ok := s.Current.Value()
	switch {
	case !ok, cur == "":
		return s
	case len(cur) == 1:
		s.Current = None()
	default:
		s.Current = Some(cur[:len(cur)-1])
	}
	return s
}

func evaluate(s State) State {
	if !s.Current.IsSet() || !s.Previous.IsSet() || s.Operator == OpNone {
		return s
	}

	return State{
		Current:   Some(Compute(s.Previous.String(), s.Current.String(), s.Operator)),
		Previous:  None(),
		Operator:  OpNone,
		Overwrite: true,
	}
}
