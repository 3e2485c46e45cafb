package storage

// Ключи документов. Форма ключей совпадает с данными на устройствах; менять только с миграцией.
const (
	UsersKey  = "users"
	GroupsKey = "groups"
)

func MessagesKey(chatID string) string      { return "messages_" + chatID }
func ConversationsKey(userID string) string { return "conversations_" + userID }
func ReactionsKey(chatID string) string     { return "reactions_" + chatID }
func StarredKey(userID string) string       { return "starred_" + userID }
func BlockedKey(userID string) string       { return "blocked_" + userID }

// IntentsKey: журнал незавершённых отправок/доставок владельца.
func IntentsKey(userID string) string { return "intents_" + userID }

// PushKey: Web Push подписки пользователя.
func PushKey(userID string) string { return "push_" + userID }
