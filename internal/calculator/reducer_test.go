package calculator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run applies actions to a fresh state.
func run(actions ...Action) State {
	s := NewState()
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

// keys turns keypad labels into actions.
func keys(t *testing.T, labels ...string) []Action {
	t.Helper()
	out := make([]Action, 0, len(labels))
	for _, l := range labels {
		a, err := KeyAction(l)
		require.NoError(t, err)
		out = append(out, a)
	}
	return out
}

func TestDigitEntry(t *testing.T) {
	tests := []struct {
		name  string
		start State
		digit string
		want  State
	}{
		{
			name:  "absent current takes the digit",
			start: NewState(),
			digit: "7",
			want:  State{Current: Some("7")},
		},
		{
			name:  "appends to current",
			start: State{Current: Some("12")},
			digit: "3",
			want:  State{Current: Some("123")},
		},
		{
			name:  "repeated zero suppressed",
			start: State{Current: Some("0")},
			digit: "0",
			want:  State{Current: Some("0")},
		},
		{
			name:  "zero after other digits appends",
			start: State{Current: Some("10")},
			digit: "0",
			want:  State{Current: Some("100")},
		},
		{
			name:  "leading decimal point",
			start: NewState(),
			digit: ".",
			want:  State{Current: Some(".")},
		},
		{
			name:  "second decimal point ignored",
			start: State{Current: Some("1.5")},
			digit: ".",
			want:  State{Current: Some("1.5")},
		},
		{
			name:  "overwrite replaces the result",
			start: State{Current: Some("16"), Overwrite: true},
			digit: "4",
			want:  State{Current: Some("4")},
		},
		{
			name:  "overwrite wins over duplicate zero check",
			start: State{Current: Some("0"), Overwrite: true},
			digit: "0",
			want:  State{Current: Some("0")},
		},
		{
			name:  "pending operator untouched",
			start: State{Previous: Some("5"), Operator: OpAdd},
			digit: "3",
			want:  State{Current: Some("3"), Previous: Some("5"), Operator: OpAdd},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Reduce(tc.start, Digit(tc.digit)))
		})
	}
}

func TestDigitEntryIntoAbsentOperand(t *testing.T) {
	starts := []State{
		NewState(),
		{Previous: Some("9"), Operator: OpSubtract},
		{Previous: Some(""), Operator: OpDivide},
	}

	for _, start := range starts {
		for _, d := range []string{"0", "1", "5", "9", "."} {
			got := Reduce(start, Digit(d))
			assert.Equal(t, Some(d), got.Current, "start=%+v digit=%s", start, d)
		}
	}
}

func TestDecimalPointIsIdempotent(t *testing.T) {
	once := run(Digit("3"), Digit("."))
	twice := run(Digit("3"), Digit("."), Digit("."))

	assert.Equal(t, once, twice)
	assert.Equal(t, "3.", twice.Current.String())
}

func TestChooseOperator(t *testing.T) {
	tests := []struct {
		name  string
		start State
		op    Operator
		want  State
	}{
		{
			name:  "nothing to operate on",
			start: NewState(),
			op:    OpAdd,
			want:  NewState(),
		},
		{
			name:  "changes pending operator",
			start: State{Previous: Some("5"), Operator: OpAdd},
			op:    OpMultiply,
			want:  State{Previous: Some("5"), Operator: OpMultiply},
		},
		{
			name:  "moves current into previous",
			start: State{Current: Some("5")},
			op:    OpSubtract,
			want:  State{Previous: Some("5"), Operator: OpSubtract},
		},
		{
			name:  "chains pending computation",
			start: State{Current: Some("3"), Previous: Some("5"), Operator: OpAdd},
			op:    OpMultiply,
			want:  State{Previous: Some("8"), Operator: OpMultiply},
		},
		{
			name:  "chain with unparsable operand yields empty previous",
			start: State{Current: Some("."), Previous: Some("5"), Operator: OpAdd},
			op:    OpDivide,
			want:  State{Previous: Some(""), Operator: OpDivide},
		},
		{
			name:  "result after evaluate becomes previous",
			start: State{Current: Some("16"), Overwrite: true},
			op:    OpAdd,
			want:  State{Previous: Some("16"), Operator: OpAdd, Overwrite: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Reduce(tc.start, Choose(tc.op)))
		})
	}
}

func TestResetClearsOnlyCurrentOperand(t *testing.T) {
	start := State{Current: Some("42"), Previous: Some("7"), Operator: OpMultiply}

	got := Reduce(start, Reset())

	assert.Equal(t, State{Previous: Some("7"), Operator: OpMultiply}, got)
}

func TestClearReturnsFreshState(t *testing.T) {
	start := State{Current: Some("42"), Previous: Some("7"), Operator: OpMultiply, Overwrite: true}

	assert.Equal(t, NewState(), Reduce(start, Clear()))
}

func TestDeleteSaturates(t *testing.T) {
	s := State{Current: Some("12")}

	s = Reduce(s, Delete())
	assert.Equal(t, Some("1"), s.Current)

	s = Reduce(s, Delete())
	assert.False(t, s.Current.IsSet())

	s = Reduce(s, Delete())
	assert.Equal(t, NewState(), s)
}

func TestDeleteAfterEvaluateDiscardsResult(t *testing.T) {
	s := run(keys(t, "6", "*", "7", "=")...)
	require.Equal(t, "42", s.Current.String())
	require.True(t, s.Overwrite)

	s = Reduce(s, Delete())

	assert.Equal(t, NewState(), s)
}

func TestDeleteKeepsEmptyResultPresent(t *testing.T) {
	s := State{Current: Some("")}

	assert.Equal(t, s, Reduce(s, Delete()))
}

func TestEvaluateIsNoOpWithMissingFields(t *testing.T) {
	states := []State{
		NewState(),
		{Current: Some("1")},
		{Previous: Some("1"), Operator: OpAdd},
		{Current: Some("1"), Previous: Some("2")},
		{Current: Some("1"), Operator: OpAdd},
	}

	for _, s := range states {
		assert.Equal(t, s, Reduce(s, Evaluate()), "state=%+v", s)
	}
}

func TestEvaluate(t *testing.T) {
	got := Reduce(State{Current: Some("4"), Previous: Some("10"), Operator: OpSubtract}, Evaluate())

	assert.Equal(t, State{Current: Some("6"), Overwrite: true}, got)
}

func TestEvaluateThenDigitOverwrites(t *testing.T) {
	s := run(keys(t, "2", "+", "2", "=", "9")...)

	assert.Equal(t, State{Current: Some("9")}, s)
}

func TestChainedOperationsHaveNoPrecedence(t *testing.T) {
	s := run(keys(t, "5", "+", "3", "*", "2", "=")...)

	assert.Equal(t, "16", s.Current.String())
	assert.False(t, s.Previous.IsSet())
	assert.Equal(t, OpNone, s.Operator)
	assert.True(t, s.Overwrite)
}

func TestDivisionByZeroIsNotAnError(t *testing.T) {
	s := Reduce(State{Current: Some("0"), Previous: Some("6"), Operator: OpDivide}, Evaluate())
	assert.Equal(t, "Infinity", s.Current.String())

	s = Reduce(State{Current: Some("0"), Previous: Some("0"), Operator: OpDivide}, Evaluate())
	assert.Equal(t, "NaN", s.Current.String())
}

func TestEvaluateOverflowingOperandYieldsInfinity(t *testing.T) {
	huge := "1" + strings.Repeat("0", 400)

	s := Reduce(State{Current: Some(huge), Previous: Some("2"), Operator: OpMultiply}, Evaluate())
	assert.Equal(t, State{Current: Some("Infinity"), Overwrite: true}, s)

	s = Reduce(State{Current: Some("1"), Previous: Some("0." + strings.Repeat("0", 400) + "1"), Operator: OpAdd}, Evaluate())
	assert.Equal(t, "1", s.Current.String())
}

func TestUnknownActionLeavesStateUnchanged(t *testing.T) {
	s := State{Current: Some("3")}

	assert.Equal(t, s, Reduce(s, Action{Type: "square"}))
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		typ, value string
		want       Action
		wantErr    error
	}{
		{typ: "digit", value: "7", want: Digit("7")},
		{typ: "digit", value: ".", want: Digit(".")},
		{typ: "digit", value: "12", wantErr: ErrInvalidDigit},
		{typ: "digit", value: "a", wantErr: ErrInvalidDigit},
		{typ: "operator", value: "/", want: Choose(OpDivide)},
		{typ: "operator", value: "^", wantErr: ErrInvalidOperator},
		{typ: "reset", want: Reset()},
		{typ: "delete", want: Delete()},
		{typ: "evaluate", want: Evaluate()},
		{typ: "clear", want: Clear()},
		{typ: "sqrt", wantErr: ErrUnknownAction},
	}

	for _, tc := range tests {
		t.Run(tc.typ+"/"+tc.value, func(t *testing.T) {
			got, err := ParseAction(tc.typ, tc.value)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
