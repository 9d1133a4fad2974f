package services

import (
	"context"

	"philosofium/backend/models"

	"gorm.io/gorm"
)

type CourseStats struct {
	CourseID        uint    `json:"course_id"`
	TotalLessons    int64   `json:"total_lessons"`
	Enrolled        int64   `json:"enrolled"`
	Paid            int64   `json:"paid"`
	Completed       int64   `json:"completed"`
	AverageProgress float64 `json:"average_progress"`
}

type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

func (s *AnalyticsService) Course(ctx context.Context, courseID uint) (*CourseStats, error) {
	const op = "analytics.Course"
	db := s.db.WithContext(ctx)

	course, err := findCourse(db, courseID)
	if err != nil {
		return nil, wrap(op, err)
	}
	if course == nil {
		return nil, notFound(op, "course not found")
	}

	stats := CourseStats{CourseID: courseID}
	err = db.Model(&models.Enrollment{}).
		Select("COUNT(*) AS enrolled, "+
			"COALESCE(SUM(CASE WHEN paid = ? THEN 1 ELSE 0 END), 0) AS paid, "+
			"COALESCE(SUM(CASE WHEN completed_at IS NOT NULL THEN 1 ELSE 0 END), 0) AS completed, "+
			"COALESCE(AVG(progress), 0) AS average_progress", true).
		Where("course_id = ?", courseID).
		Scan(&stats).Error
	if err != nil {
		return nil, wrap(op, err)
	}

	if stats.TotalLessons, err = countCourseLessons(db, courseID); err != nil {
		return nil, wrap(op, err)
	}
	return &stats, nil
}
