package domain

import "time"

// User is a person listed by the API. RoleID always references an existing Role.
type User struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	First     string    `json:"first"`
	Last      string    `json:"last"`
	RoleID    string    `json:"roleId"`
	Photo     string    `json:"photo,omitempty"`
}

// SearchFields returns the values matched by a user search term.
func (u User) SearchFields() []string {
	return []string{u.First, u.Last}
}
