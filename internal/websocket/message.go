package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// TypeCredentialUpdate is pushed when a credential is created or
	// modified. The payload identifies the record; it never carries the
	// secret, plaintext or sealed.
	TypeCredentialUpdate MessageType = "credential_update"

	// TypeCredentialDelete is pushed when a credential is removed.
	TypeCredentialDelete MessageType = "credential_delete"

	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type CredentialUpdatePayload struct {
	CredentialID string    `json:"credential_id"`
	SiteName     string    `json:"site_name"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CredentialDeletePayload struct {
	CredentialID string `json:"credential_id"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
