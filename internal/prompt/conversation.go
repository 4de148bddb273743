package prompt

import (
	"strings"

	"github.com/promptforge/generation-api/internal/model"
)

// AssembleConversation builds the ordered message list: an optional system
// message from the interpolated template, the usable history turns in their
// original order, then the current user turn. History entries with another
// role or blank content are dropped without error.
func AssembleConversation(system string, history []model.TurnMessage, currentTurn string) ([]model.TurnMessage, error) {
	messages := make([]model.TurnMessage, 0, len(history)+2)

	if s := strings.TrimSpace(system); s != "" {
		messages = append(messages, model.TurnMessage{Role: model.RoleSystem, Content: s})
	}

	for _, turn := range history {
		if turn.Role != model.RoleUser && turn.Role != model.RoleAssistant {
			continue
		}
		if turn.IsBlank() {
			continue
		}
		messages = append(messages, turn)
	}

	if c := strings.TrimSpace(currentTurn); c != "" {
		messages = append(messages, model.TurnMessage{Role: model.RoleUser, Content: c})
	}

	if len(messages) == 0 {
		return nil, model.NewError(model.ErrInvalidRequest, "conversation is empty: no system prompt, history or input")
	}

	return messages, nil
}
