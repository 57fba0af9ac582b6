// Package models holds the data-access objects for departments, roles and
// users. Every failure is reported as a titled persistence error so the
// error page can show it.
package models

// Department represents a tbl_departments row.
type Department struct {
	ID   int64
	Name string
}

// Role represents a tbl_roles row.
type Role struct {
	ID   int64
	Name string
}

// User represents a tbl_users row with the department and role names
// resolved. The password hash is never read back.
type User struct {
	ID             int64
	Username       string
	DepartmentID   int64
	RoleID         int64
	DepartmentName string
	RoleName       string
}

// UserInput carries the writable user columns. Password is plain text and
// is hashed before storage; on update an empty Password keeps the old hash.
type UserInput struct {
	ID           int64
	Username     string
	Password     string
	DepartmentID int64
	RoleID       int64
}

const (
	departmentTitle = "Department Database Error"
	roleTitle       = "Role Database Error"
	userTitle       = "User Database Error"
)
