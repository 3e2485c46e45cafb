package ws

import "github.com/lingochat/internal/model"

type EventType string

const (
	// сервер -> клиент
	EventNewMessage          EventType = "new_message"
	EventConversationUpdated EventType = "conversation_updated"
	EventTyping              EventType = "typing"
	EventError               EventType = "error"

	// клиент -> сервер
	EventSend EventType = "send"
	EventRead EventType = "read"
)

// IncomingMessage это то, что присылает клиент. Адресат задан userId/groupId или chatId.
type IncomingMessage struct {
	Type    EventType `json:"type"`
	ChatID  string    `json:"chatId,omitempty"`
	UserID  string    `json:"userId,omitempty"`
	GroupID string    `json:"groupId,omitempty"`
	Text    string    `json:"text,omitempty"`

	MediaType model.MediaType `json:"mediaType,omitempty"`
	MediaURL  string          `json:"mediaUrl,omitempty"`

	// для typing
	Typing bool `json:"typing,omitempty"`
}

// OutgoingMessage is what the server sends to the client.
type OutgoingMessage struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// ErrorPayload: ответ на некорректное входящее событие.
type ErrorPayload struct {
	Message string `json:"message"`
}
