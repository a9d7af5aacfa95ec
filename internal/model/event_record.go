package model

import "encoding/json"

// EventRecord is the normalized representation of an engine event for
// storage. Seq is a monotonically increasing commit-order index; events are
// never observable before the state change they report is committed.
type EventRecord struct {
	Seq       uint64          `json:"seq"`
	Timestamp uint64          `json:"timestamp"`
	Emitter   string          `json:"emitter"`
	EventName string          `json:"event_name"`
	Decoded   json.RawMessage `json:"decoded"`
}

// MarshalJSON ensures EventRecord is encoded with stable field names.
func (er EventRecord) MarshalJSON() ([]byte, error) {
	type Alias EventRecord
	return json.Marshal(Alias(er))
}

// UnmarshalJSON decodes an EventRecord from JSON.
func (er *EventRecord) UnmarshalJSON(data []byte) error {
	type Alias EventRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*er = EventRecord(a)
	return nil
}
