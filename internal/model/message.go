package model

import (
	"strings"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// TurnMessage is a single role-tagged message in a conversation.
type TurnMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// IsBlank reports whether the message has no content once trimmed.
func (m TurnMessage) IsBlank() bool {
	return strings.TrimSpace(m.Content) == ""
}
