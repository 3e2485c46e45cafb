package model

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
	MediaTypeFile  MediaType = "file"
)

// Message неизменяемо после создания. Звёзды и реакции хранятся в отдельных
// коллекциях по id сообщения, а не в самом сообщении.
type Message struct {
	ID                 string            `json:"id"`
	SenderID           string            `json:"senderId"`
	ReceiverID         string            `json:"receiverId,omitempty"`
	GroupID            string            `json:"groupId,omitempty"`
	OriginalText       string            `json:"originalText"`
	OriginalLanguage   string            `json:"originalLanguage"`
	TranslatedText     string            `json:"translatedText"`
	TranslatedLanguage string            `json:"translatedLanguage"`
	Translations       map[string]string `json:"translations,omitempty"`
	Timestamp          int64             `json:"timestamp"`
	Status             MessageStatus     `json:"status"`
	MediaType          MediaType         `json:"mediaType,omitempty"`
	MediaURL           string            `json:"mediaUrl,omitempty"`
	ForwardedFrom      string            `json:"forwardedFrom,omitempty"`
}

// Target: адресат сообщения с точки зрения отправителя.
func (m *Message) Target() ChatTarget {
	if m.GroupID != "" {
		return ChatTarget{GroupID: m.GroupID}
	}
	return ChatTarget{UserID: m.ReceiverID}
}
