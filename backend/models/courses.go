package models

import "time"

type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Price       int64     `gorm:"not null;default:0" json:"price"` // cents
	AuthorID    uint      `gorm:"index" json:"author_id"`
	Sections    []Section `gorm:"constraint:OnDelete:CASCADE" json:"sections,omitempty"`
}

// IsFree reports whether enrolling in the course needs no payment.
func (c *Course) IsFree() bool {
	return c.Price == 0
}

type Section struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	CourseID      uint      `gorm:"not null;index" json:"course_id"`
	Title         string    `gorm:"not null" json:"title"`
	SequenceOrder int       `gorm:"not null;default:0" json:"sequence_order"`
	Lessons       []Lesson  `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

type Lesson struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	SectionID     uint      `gorm:"not null;index" json:"section_id"`
	Title         string    `gorm:"not null" json:"title"`
	Content       string    `gorm:"type:text" json:"content,omitempty"`
	SequenceOrder int       `gorm:"not null;default:0" json:"sequence_order"`
}
