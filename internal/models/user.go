package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleEmployee  UserRole = "employee"
	RoleManager   UserRole = "manager"
	RoleExecutive UserRole = "executive"
)

// User represents an application user stored in the users table. The
// points accumulator is mutated exclusively through the reward ledger.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Department   string     `db:"department" json:"department"`
	Role         UserRole   `db:"role" json:"role"`
	Points       int        `db:"points" json:"points"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Contributor pairs a user with their accumulated points for ranking.
type Contributor struct {
	UserID   string   `db:"id" json:"userId"`
	FullName string   `db:"full_name" json:"fullName"`
	Role     UserRole `db:"role" json:"role"`
	Points   int      `db:"points" json:"points"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
