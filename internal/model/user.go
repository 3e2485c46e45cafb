package model

import "time"

type UserStatus string

const (
	UserStatusOnline  UserStatus = "online"
	UserStatusAway    UserStatus = "away"
	UserStatusOffline UserStatus = "offline"
)

// User: запись справочника users. Создаётся при регистрации, меняется через профиль
// и настройки приватности; в этой системе не удаляется.
type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	DisplayName       string     `json:"displayName"`
	PreferredLanguage string     `json:"preferredLanguage"`
	Status            UserStatus `json:"status"`
	BlockedUsers      []string   `json:"blockedUsers"`
	AvatarURL         string     `json:"avatarUrl,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// HasBlocked сообщает, заблокировал ли пользователь userID.
func (u *User) HasBlocked(userID string) bool {
	for _, id := range u.BlockedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
