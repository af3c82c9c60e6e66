package entity

// UserRole records role membership. The pair is its own key.
type UserRole struct {
	UserID int64
	RoleID int64
}
