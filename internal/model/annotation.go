package model

import "time"

// Reaction хранится в reactions_<chatId> по id сообщения.
type Reaction struct {
	UserID    string    `json:"userId"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
}

// StarredMessage ссылается на сообщение мягко: при чтении висячие ссылки отбрасываются.
type StarredMessage struct {
	MessageID string    `json:"messageId"`
	UserID    string    `json:"userId"`
	ChatID    string    `json:"chatId"`
	CreatedAt time.Time `json:"createdAt"`
}

type StarredView struct {
	StarredMessage
	Message Message `json:"message"`
}

// PushSubscription: подписка Web Push из браузера.
type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}
