package domain

import "time"

// Role groups users. Names are unique (case-sensitive) and exactly one role
// in a store is the default.
type Role struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"isDefault"`
}

// SearchFields returns the values matched by a role search term.
func (r Role) SearchFields() []string {
	return []string{r.Name, r.Description}
}
