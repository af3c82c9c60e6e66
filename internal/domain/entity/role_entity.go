package entity

// Role represents an authorization role
// Many-to-many with User via user_roles
type Role struct {
	ID   int64
	Name string
}
