package ai

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the accepted roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ChatMessage is a single entry in a conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ValidatedMessages is a non-empty, ordered, immutable conversation.
type ValidatedMessages struct {
	msgs []ChatMessage
}

// ValidateMessages checks each message and returns the conversation in
// the same order.
func ValidateMessages(msgs []ChatMessage) (ValidatedMessages, error) {
	if len(msgs) == 0 {
		return ValidatedMessages{}, ErrEmptyConversation
	}
	for i, msg := range msgs {
		if !msg.Role.Valid() {
			return ValidatedMessages{}, &MessageError{Index: i, Field: "role",
				Reason: fmt.Sprintf("must be one of system, user, assistant; got %q", msg.Role)}
		}
		if strings.TrimSpace(msg.Content) == "" {
			return ValidatedMessages{}, &MessageError{Index: i, Field: "content", Reason: "is empty"}
		}
	}
	return ValidatedMessages{msgs: slices.Clone(msgs)}, nil
}

// ValidateMessageRecords validates loosely typed records such as decoded
// JSON objects. Each record needs string "role" and "content" fields.
func ValidateMessageRecords(records []map[string]any) (ValidatedMessages, error) {
	if len(records) == 0 {
		return ValidatedMessages{}, ErrEmptyConversation
	}
	msgs := make([]ChatMessage, 0, len(records))
	for i, rec := range records {
		role, err := stringField(rec, i, "role")
		if err != nil {
			return ValidatedMessages{}, err
		}
		content, err := stringField(rec, i, "content")
		if err != nil {
			return ValidatedMessages{}, err
		}
		msgs = append(msgs, ChatMessage{Role: Role(role), Content: content})
	}
	return ValidateMessages(msgs)
}

func stringField(rec map[string]any, index int, field string) (string, error) {
	raw, ok := rec[field]
	if !ok || raw == nil {
		return "", &MessageError{Index: index, Field: field, Reason: "is missing"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &MessageError{Index: index, Field: field, Reason: fmt.Sprintf("must be a string, got %T", raw)}
	}
	return s, nil
}

// ParseMessages decodes a JSON array of {"role", "content"} objects and
// validates it.
func ParseMessages(data []byte) (ValidatedMessages, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return ValidatedMessages{}, &MessageError{Index: -1, Reason: "expected a JSON array of message objects: " + err.Error()}
	}
	return ValidateMessageRecords(records)
}

// Len returns the number of messages.
func (m ValidatedMessages) Len() int {
	return len(m.msgs)
}

// At returns the message at index i.
func (m ValidatedMessages) At(i int) ChatMessage {
	return m.msgs[i]
}

// All returns a copy of the messages in order.
func (m ValidatedMessages) All() []ChatMessage {
	return slices.Clone(m.msgs)
}
