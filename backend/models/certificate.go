package models

import "time"

type Certificate struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_certificate_user_course" json:"user_id"`
	CourseID uint      `gorm:"not null;uniqueIndex:idx_certificate_user_course" json:"course_id"`
	Number   string    `gorm:"size:64;not null;uniqueIndex" json:"number"`
	IssuedAt time.Time `gorm:"not null" json:"issued_at"`

	User   *User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Course *Course `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Section{},
		&Lesson{},
		&Enrollment{},
		&LessonProgress{},
		&Quiz{},
		&Question{},
		&Attempt{},
		&Certificate{},
	}
}
