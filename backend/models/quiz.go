package models

import (
	"time"

	"gorm.io/datatypes"
)

type Quiz struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	CourseID     *uint      `gorm:"index" json:"course_id"`
	Title        string     `gorm:"not null" json:"title"`
	PassingScore *int       `json:"passing_score"` // percent, nil means every attempt passes
	Questions    []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

type Question struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	QuizID        uint                        `gorm:"not null;index" json:"quiz_id"`
	Prompt        string                      `gorm:"type:text;not null" json:"prompt"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer string                      `gorm:"not null" json:"-"`
	Points        int                         `gorm:"not null" json:"points"`
	SequenceOrder int                         `gorm:"not null;default:0" json:"sequence_order"`
}

// Attempt is immutable once stored.
type Attempt struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	QuizID      uint           `gorm:"not null;index" json:"quiz_id"`
	Score       int            `gorm:"not null" json:"score"`
	TotalPoints int            `gorm:"not null" json:"total_points"`
	Passed      bool           `gorm:"not null" json:"passed"`
	Answers     datatypes.JSON `json:"answers"`
	SubmittedAt time.Time      `gorm:"not null;index" json:"submitted_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Quiz *Quiz `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
