package services

import (
	"errors"

	"philosofium/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func userExists(tx *gorm.DB, userID uint) (bool, error) {
	var n int64
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func findCourse(tx *gorm.DB, courseID uint) (*models.Course, error) {
	var course models.Course
	err := tx.Take(&course, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// courseIDForLesson resolves the owning course through the lesson's section.
func courseIDForLesson(tx *gorm.DB, lessonID uint) (uint, bool, error) {
	var row struct{ CourseID uint }
	res := tx.Table("lessons").
		Select("sections.course_id AS course_id").
		Joins("JOIN sections ON sections.id = lessons.section_id").
		Where("lessons.id = ?", lessonID).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return 0, false, res.Error
	}
	return row.CourseID, res.RowsAffected > 0, nil
}

var lockForUpdate = clause.Locking{Strength: "UPDATE"}

// lockEnrollment reads the enrollment row FOR UPDATE so that every write to
// the same (user, course) pair is serialized until the transaction ends.
// The sqlite dialect drops the locking clause; its single connection
// serializes transactions instead.
func lockEnrollment(tx *gorm.DB, userID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := tx.Clauses(lockForUpdate).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Take(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func countCourseLessons(tx *gorm.DB, courseID uint) (int64, error) {
	var total int64
	err := tx.Model(&models.Lesson{}).
		Joins("JOIN sections ON sections.id = lessons.section_id").
		Where("sections.course_id = ?", courseID).
		Count(&total).Error
	return total, err
}

func countCompletedLessons(tx *gorm.DB, userID, courseID uint) (int64, error) {
	var completed int64
	err := tx.Model(&models.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Joins("JOIN sections ON sections.id = lessons.section_id").
		Where("lesson_progress.user_id = ? AND sections.course_id = ? AND lesson_progress.completed = ?", userID, courseID, true).
		Count(&completed).Error
	return completed, err
}
