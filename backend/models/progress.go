package models

import "time"

// LessonProgress is the per-user completion record of one lesson.
type LessonProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson" json:"user_id"`
	LessonID    uint       `gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson;index" json:"lesson_id"`
	Completed   bool       `gorm:"not null" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	User   *User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Lesson *Lesson `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

type EnrollmentState string

const (
	StateNotEnrolled    EnrollmentState = "NOT_ENROLLED"
	StateEnrolledUnpaid EnrollmentState = "ENROLLED_UNPAID"
	StateEnrolledPaid   EnrollmentState = "ENROLLED_PAID"
)

type Enrollment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID    uint       `gorm:"not null;uniqueIndex:idx_enrollment_user_course;index" json:"course_id"`
	Paid        bool       `gorm:"not null" json:"paid"`
	Progress    int        `gorm:"not null;default:0;check:progress >= 0 AND progress <= 100" json:"progress"`
	CompletedAt *time.Time `json:"completed_at"`
	EnrolledAt  time.Time  `gorm:"not null" json:"enrolled_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	User   *User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Course *Course `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// State derives the payment state. A nil enrollment is NOT_ENROLLED; completion
// is tracked separately through CompletedAt.
func (e *Enrollment) State() EnrollmentState {
	switch {
	case e == nil:
		return StateNotEnrolled
	case !e.Paid:
		return StateEnrolledUnpaid
	default:
		return StateEnrolledPaid
	}
}

func (e *Enrollment) IsCompleted() bool {
	return e != nil && e.CompletedAt != nil
}
