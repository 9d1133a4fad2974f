package models

import "time"

type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Avatar       string    `json:"avatar"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null;default:'STUDENT'" json:"role"`
}

// CanAuthor reports whether the user may create courses, sections, lessons and quizzes.
func (u *User) CanAuthor() bool {
	return u.Role == RoleInstructor || u.Role == RoleAdmin
}
