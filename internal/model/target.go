package model

// ChatTarget задаёт адресата отправки: либо пользователь, либо группа (ровно одно из полей).
type ChatTarget struct {
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
}

// Valid: ровно одно из UserID/GroupID задано.
func (t ChatTarget) Valid() bool {
	return (t.UserID == "") != (t.GroupID == "")
}

func (t ChatTarget) IsGroup() bool { return t.GroupID != "" }

// ChatID: groupId ?? userId, ключ лога сообщений.
func (t ChatTarget) ChatID() string {
	if t.GroupID != "" {
		return t.GroupID
	}
	return t.UserID
}
