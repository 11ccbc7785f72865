package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangedMessage tells the snapshot worker that the planner state
// moved. It carries only the operation and the entity touched; the worker
// reads the full snapshot from the shared store.
type LedgerChangedMessage struct {
	Op        string    `json:"op"`
	EntityID  string    `json:"entity_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a change message stamped with now.
func NewLedgerChangedMessage(op, entityID string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Op:        op,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
