package kafka

import (
	"encoding/json"
	"time"
)

// Message is the transport-neutral shape handed to the producer.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// NewJSONMessage marshals a payload into a keyed message stamped with the
// current time.
func NewJSONMessage(key string, payload any) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Key:       key,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}, nil
}
