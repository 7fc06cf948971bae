package memory

import (
	"fmt"
	"time"

	"github.com/rolecall/mock-api/internal/core/domain"
)

// Seed is the dataset a Store starts from and returns to on Reset.
type Seed struct {
	Users []domain.User
	Roles []domain.Role
}

const (
	RoleAdminID    = "8f1d4c52-0b6e-4d0a-9a4b-2f6c1e0d7a01"
	RoleEditorID   = "5a3e9b17-6c2d-4f8e-8b1a-7d4c3e2f1a02"
	RoleViewerID   = "c7b2a6e4-1f3d-4a5c-9e8b-0d6f2a4c3b03"
	RoleMemberID   = "2e9c7d15-8a4b-4c3f-b6d2-9f1e0a8b7c04"
	seededUserBase = "b4a1c3d2-7e6f-4a8b-9c0d-1e2f3a4b5c"
)

var seedEpoch = time.Date(2024, time.January, 8, 9, 30, 0, 0, time.UTC)

type seedUser struct {
	first, last, roleID, photo string
}

// Member is the default role; Editor carries seven users so deleting it
// exercises reassignment.
var seedUsers = []seedUser{
	{"Ada", "Lovelace", RoleAdminID, "women/12"},
	{"Grace", "Hopper", RoleEditorID, "women/44"},
	{"Alan", "Turing", RoleEditorID, "men/32"},
	{"Katherine", "Johnson", RoleMemberID, "women/65"},
	{"Linus", "Torvalds", RoleViewerID, "men/75"},
	{"Margaret", "Hamilton", RoleEditorID, "women/21"},
	{"Dennis", "Ritchie", RoleMemberID, "men/41"},
	{"Barbara", "Liskov", RoleEditorID, "women/9"},
	{"Ken", "Thompson", RoleViewerID, "men/15"},
	{"Frances", "Allen", RoleEditorID, "women/33"},
	{"Edsger", "Dijkstra", RoleMemberID, "men/52"},
	{"Radia", "Perlman", RoleEditorID, "women/58"},
	{"Donald", "Knuth", RoleViewerID, "men/63"},
	{"Hedy", "Lamarr", RoleMemberID, "women/71"},
	{"John", "Backus", RoleEditorID, "men/8"},
	{"Sophie", "Wilson", RoleMemberID, "women/27"},
}

// DefaultSeed returns a fresh copy of the built-in dataset: four roles, one
// of them default, and sixteen users.
func DefaultSeed() Seed {
	roles := []domain.Role{
		{ID: RoleAdminID, Name: "Admin", Description: "Full access to every workspace setting"},
		{ID: RoleEditorID, Name: "Editor", Description: "Can create and edit content"},
		{ID: RoleViewerID, Name: "Viewer", Description: "Read-only access"},
		{ID: RoleMemberID, Name: "Member", Description: "Standard workspace member", IsDefault: true},
	}
	for i := range roles {
		ts := seedEpoch.Add(time.Duration(i) * time.Minute)
		roles[i].CreatedAt, roles[i].UpdatedAt = ts, ts
	}

	users := make([]domain.User, len(seedUsers))
	for i, su := range seedUsers {
		ts := seedEpoch.Add(24*time.Hour + time.Duration(i)*time.Hour)
		users[i] = domain.User{
			ID:        fmt.Sprintf("%s%02d", seededUserBase, i),
			CreatedAt: ts,
			UpdatedAt: ts,
			First:     su.first,
			Last:      su.last,
			RoleID:    su.roleID,
			Photo:     "https://randomuser.me/api/portraits/" + su.photo + ".jpg",
		}
	}
	return Seed{Users: users, Roles: roles}
}
