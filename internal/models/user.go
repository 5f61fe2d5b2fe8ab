package models

// Role defines what a staff account may do.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// User represents a staff account.
type User struct {
	Base         `bson:",inline"`
	Username     string `bson:"username" json:"username"`
	FullName     string `bson:"full_name" json:"fullName"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"password" json:"-"` // Store hash, not plaintext
	Role         Role   `bson:"role" json:"role"`
	IsActive     bool   `bson:"is_active" json:"isActive"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
