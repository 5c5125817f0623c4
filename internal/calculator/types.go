package calculator

// SessionResponse is the JSON response for every session endpoint.
type SessionResponse struct {
	ID    string `json:"id"`
	State State  `json:"state"`
}

// ActionRequest is the JSON body for POST /calculator/sessions/{id}/actions.
type ActionRequest struct {
	Type  string `json:"type"`            // "digit", "operator", "reset", "delete", "evaluate", "clear"
	Value string `json:"value,omitempty"` // digit or operator symbol
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
	Operator string `json:"operator"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
// Result is "" when an operand is not a number.
type EvaluateResponse struct {
	Operator string `json:"operator"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
	Result   string `json:"result"`
}

// ReplayRequest is the JSON body for POST /calculator/replay.
type ReplayRequest struct {
	State *State   `json:"state,omitempty"` // starting state; fresh when omitted
	Keys  []string `json:"keys"`            // keypad labels, e.g. "5", "+", "="
}

// ReplayResponse is the JSON response for POST /calculator/replay.
type ReplayResponse struct {
	Initial State        `json:"initial"`
	Steps   []ReplayStep `json:"steps"`
	State   State        `json:"state"`
}

// ReplayStep records the state after one key press.
type ReplayStep struct {
	Key   string `json:"key"`
	State State  `json:"state"`
}
