package domain

import (
	"encoding/json"
	"time"
)

// VariableDefinition describes a named variable and how it resets
type VariableDefinition struct {
	Key          string          `json:"key"`
	Scope        Scope           `json:"scope"`
	Cycle        Cycle           `json:"cycle"`
	ResetActions []string        `json:"reset_actions,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

// HasCycle reports whether the variable takes part in cycle resets
func (d VariableDefinition) HasCycle() bool {
	return !d.Cycle.IsNone()
}

// Player is an online player handed to post-reset actions
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VariableValue is a stored value of a variable. PlayerID is empty for global variables.
type VariableValue struct {
	Key       string    `json:"key"`
	PlayerID  string    `json:"player_id,omitempty"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
