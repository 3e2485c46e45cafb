package model

import "time"

type IntentKind string

const (
	IntentSend    IntentKind = "send"
	IntentReceive IntentKind = "receive"
)

// Intent описывает запись журнала: сообщение и строка разговора, которые должны появиться вместе.
// Conversation хранит строку после применения сообщения, UnreadDelta хранит прирост счётчика,
// чтобы при восстановлении слить сообщение с текущей строкой, а не затереть её.
type Intent struct {
	ID           string       `json:"id"`
	Kind         IntentKind   `json:"kind"`
	ChatID       string       `json:"chatId"`
	Message      Message      `json:"message"`
	Conversation Conversation `json:"conversation"`
	UnreadDelta  int          `json:"unreadDelta"`
	CreatedAt    time.Time    `json:"createdAt"`
}
