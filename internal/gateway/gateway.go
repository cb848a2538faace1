package gateway

import "context"

// Messenger defines the interface for communication gateways (Telegram, CLI, etc.)
type Messenger interface {
	// Start begins the message listening loop
	Start() error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}

// Assistant is the conversational engine a gateway talks to. The returned
// string is the text to show the user.
type Assistant interface {
	Handle(ctx context.Context, userID, conversationID, message string) (string, error)
}
