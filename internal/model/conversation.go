package model

type Category string

const (
	CategoryNone     Category = ""
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryFamily   Category = "family"
	CategoryFriends  Category = "friends"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryNone, CategoryPersonal, CategoryWork, CategoryFamily, CategoryFriends:
		return true
	}
	return false
}

// Conversation: строка списка чатов владельца. Одна строка на собеседника или группу.
type Conversation struct {
	ID          string   `json:"id"`
	UserID      string   `json:"userId,omitempty"`
	GroupID     string   `json:"groupId,omitempty"`
	LastMessage *Message `json:"lastMessage,omitempty"`
	UnreadCount int      `json:"unreadCount"`
	IsPinned    bool     `json:"isPinned"`
	IsArchived  bool     `json:"isArchived"`
	Category    Category `json:"category,omitempty"`
	IsGroup     bool     `json:"isGroup"`
}

func (c *Conversation) ChatID() string {
	if c.GroupID != "" {
		return c.GroupID
	}
	return c.UserID
}

// LastTimestamp: время последнего сообщения, 0 если сообщений нет.
func (c *Conversation) LastTimestamp() int64 {
	if c.LastMessage == nil {
		return 0
	}
	return c.LastMessage.Timestamp
}
