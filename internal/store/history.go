package store

import (
	"github.com/tmc/langchaingo/llms"
)

// AddMessage appends one turn to a conversation's history.
func (s *Store) AddMessage(conversationID, role, content string) error {
	_, err := s.DB.Exec(
		`INSERT INTO messages (conversation_id, role, content) VALUES (?, ?, ?)`,
		conversationID, role, content)
	return err
}

// GetHistory returns the last limit turns of a conversation in
// chronological order, converted to LLM message content.
func (s *Store) GetHistory(conversationID string, limit int) ([]llms.MessageContent, error) {
	rows, err := s.DB.Query(
		`SELECT role, content FROM messages WHERE conversation_id = ? ORDER BY id DESC LIMIT ?`,
		conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []llms.MessageContent
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, err
		}

		var msgRole llms.ChatMessageType
		switch role {
		case "human":
			msgRole = llms.ChatMessageTypeHuman
		case "ai":
			msgRole = llms.ChatMessageTypeAI
		case "system":
			msgRole = llms.ChatMessageTypeSystem
		default:
			msgRole = llms.ChatMessageTypeHuman
		}

		history = append(history, llms.MessageContent{
			Role: msgRole,
			Parts: []llms.ContentPart{
				llms.TextPart(content),
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}

	return history, nil
}

// HasMessages reports whether a conversation already has any history.
// Used to decide whether plan context still needs to be injected.
func (s *Store) HasMessages(conversationID string) (bool, error) {
	var n int
	err := s.DB.QueryRow(
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&n)
	return n > 0, err
}
