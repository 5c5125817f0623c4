package calculator

import (
	"errors"
	"fmt"
)

var ErrUnknownKey = errors.New("unknown key")

// ButtonType selects the rendering variant of a key.
type ButtonType string

const (
	ButtonBase      ButtonType = "base"
	ButtonOperation ButtonType = "operation"
)

// Variant resolves the zero value to ButtonBase.
func (b ButtonType) Variant() ButtonType {
	if b == "" {
		return ButtonBase
	}
	return b
}

// Key is one button on the keypad.
type Key struct {
	Label  string     `json:"label"`
	Type   ButtonType `json:"type"`
	Action Action     `json:"action"`
}

// Keypad returns the key layout in row order.
func Keypad() []Key {
	keys := []Key{
		{Label: "AC", Action: Reset()},
		{Label: "DEL", Action: Delete()},
		{Label: "/", Type: ButtonOperation, Action: Choose(OpDivide)},

		{Label: "1", Action: Digit("1")},
		{Label: "2", Action: Digit("2")},
		{Label: "3", Action: Digit("3")},
		{Label: "*", Type: ButtonOperation, Action: Choose(OpMultiply)},

		{Label: "4", Action: Digit("4")},
		{Label: "5", Action: Digit("5")},
		{Label: "6", Action: Digit("6")},
		{Label: "+", Type: ButtonOperation, Action: Choose(OpAdd)},

		{Label: "7", Action: Digit("7")},
		{Label: "8", Action: Digit("8")},
		{Label: "9", Action: Digit("9")},
		{Label: "-", Type: ButtonOperation, Action: Choose(OpSubtract)},

		{Label: ".", Action: Digit(".")},
		{Label: "0", Action: Digit("0")},
		{Label: "=", Type: ButtonOperation, Action: Evaluate()},
	}
	for i := range keys {
		keys[i].Type = keys[i].Type.Variant()
	}
	return keys
}

// keysByLabel indexes Keypad by label.
var keysByLabel = func() map[string]Key {
	keys := Keypad()
	m := make(map[string]Key, len(keys))
	for _, k := range keys {
		m[k.Label] = k
	}
	return m
}()

// LookupKey returns the key with the given label.
func LookupKey(label string) (Key, error) {
	k, ok := keysByLabel[label]
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, label)
	}
	return k, nil
}

// KeyAction resolves a key label to the action it dispatches.
func KeyAction(label string) (Action, error) {
	k, err := LookupKey(label)
	if err != nil {
		return Action{}, err
	}
	return k.Action, nil
}
