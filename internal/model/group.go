package model

import "time"

type GroupRole string

const (
	GroupRoleAdmin  GroupRole = "admin"
	GroupRoleMember GroupRole = "member"
)

type GroupMember struct {
	UserID            string    `json:"userId"`
	PreferredLanguage string    `json:"preferredLanguage"`
	Role              GroupRole `json:"role"`
	JoinedAt          time.Time `json:"joinedAt"`
}

type Group struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Members   []GroupMember `json:"members"`
	Admins    []string      `json:"admins"`
	CreatedBy string        `json:"createdBy"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Member возвращает участника по userID.
func (g *Group) Member(userID string) (GroupMember, bool) {
	for _, m := range g.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return GroupMember{}, false
}
