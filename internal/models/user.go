package models

import "time"

// Role is a staff role. The set is closed; see Roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleWaiter     Role = "waiter"
	RoleManager    Role = "manager"
	RoleCashier    Role = "cashier"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleSupervisor, RoleWaiter, RoleManager, RoleCashier}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents a staff account
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Actor is the authenticated user performing a request.
type Actor struct {
	ID       string
	Username string
	Role     Role
}

// ActorOf builds the Actor for u.
func ActorOf(u *User) Actor {
	return Actor{ID: u.ID, Username: u.Username, Role: u.Role}
}
