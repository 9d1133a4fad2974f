package services

import (
	"context"
	"errors"
	"time"

	"philosofium/backend/models"
	"philosofium/backend/utils"

	"gorm.io/gorm"
)

type ProgressService struct {
	db  *gorm.DB
	log *utils.Logger
	now func() time.Time
}

func NewProgressService(db *gorm.DB, log *utils.Logger) *ProgressService {
	return &ProgressService{db: db, log: log, now: utcNow}
}

type LessonCompletionResult struct {
	LessonProgress *models.LessonProgress `json:"lesson_progress"`
	CourseID       uint                   `json:"course_id"`
	CourseProgress int                    `json:"course_progress"`
}

// LessonState is one row of the student progress view.
type LessonState struct {
	LessonID    uint       `json:"lesson_id"`
	SectionID   uint       `json:"section_id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

type CourseProgressView struct {
	Enrollment       *models.Enrollment     `json:"enrollment"`
	State            models.EnrollmentState `json:"state"`
	Completed        bool                   `json:"completed"`
	TotalLessons     int                    `json:"total_lessons"`
	CompletedLessons int                    `json:"completed_lessons"`
	Lessons          []LessonState          `json:"lessons"`
}

// Percentage rounds 100*completed/total half up using integer arithmetic.
// Only a fully completed course reaches 100; anything short of it caps at 99.
func Percentage(completed, total int64) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return min(int((200*completed+total)/(2*total)), 99)
}

// SetLessonCompletion records the target completion state of a lesson and
// recomputes the course progress in the same transaction.
func (s *ProgressService) SetLessonCompletion(ctx context.Context, userID, lessonID uint, completed bool) (*LessonCompletionResult, error) {
	const op = "progress.SetLessonCompletion"

	var result *LessonCompletionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courseID, ok, err := courseIDForLesson(tx, lessonID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(op, "lesson not found")
		}

		enrollment, err := lockEnrollment(tx, userID, courseID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return notFound(op, "enrollment not found")
		}

		lp, err := s.upsertLessonProgress(tx, userID, lessonID, completed)
		if err != nil {
			return err
		}

		pct, err := recompute(tx, enrollment)
		if err != nil {
			return err
		}

		result = &LessonCompletionResult{LessonProgress: lp, CourseID: courseID, CourseProgress: pct}
		return nil
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	s.log.Debug("lesson completion set",
		"user_id", userID,
		"lesson_id", lessonID,
		"course_id", result.CourseID,
		"completed", completed,
		"progress", result.CourseProgress,
	)
	return result, nil
}

func (s *ProgressService) upsertLessonProgress(tx *gorm.DB, userID, lessonID uint, completed bool) (*models.LessonProgress, error) {
	var lp models.LessonProgress
	err := tx.Where("user_id = ? AND lesson_id = ?", userID, lessonID).Take(&lp).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		lp = models.LessonProgress{UserID: userID, LessonID: lessonID}
	case err != nil:
		return nil, err
	}

	lp.Completed = completed
	if completed {
		now := s.now()
		lp.CompletedAt = &now
	} else {
		lp.CompletedAt = nil
	}

	if err := tx.Save(&lp).Error; err != nil {
		return nil, err
	}
	return &lp, nil
}

// RecomputeProgress derives the enrollment's progress from the current lesson
// completions and persists it. Completion timestamps are left alone.
func (s *ProgressService) RecomputeProgress(ctx context.Context, userID, courseID uint) (int, error) {
	const op = "progress.RecomputeProgress"

	var pct int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := userExists(tx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(op, "user not found")
		}
		course, err := findCourse(tx, courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return notFound(op, "course not found")
		}

		enrollment, err := lockEnrollment(tx, userID, courseID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return notEnrolled(op)
		}

		pct, err = recompute(tx, enrollment)
		return err
	})
	if err != nil {
		return 0, wrap(op, err)
	}
	return pct, nil
}

// recompute counts fresh rows inside tx; the caller must hold the enrollment lock.
func recompute(tx *gorm.DB, enrollment *models.Enrollment) (int, error) {
	total, err := countCourseLessons(tx, enrollment.CourseID)
	if err != nil {
		return 0, err
	}
	completed, err := countCompletedLessons(tx, enrollment.UserID, enrollment.CourseID)
	if err != nil {
		return 0, err
	}

	pct := Percentage(completed, total)
	if err := tx.Model(enrollment).Update("progress", pct).Error; err != nil {
		return 0, err
	}
	return pct, nil
}

// CourseProgress returns the enrollment together with every lesson of the
// course in curriculum order and the user's completion state for each.
func (s *ProgressService) CourseProgress(ctx context.Context, userID, courseID uint) (*CourseProgressView, error) {
	const op = "progress.CourseProgress"
	db := s.db.WithContext(ctx)

	course, err := findCourse(db, courseID)
	if err != nil {
		return nil, wrap(op, err)
	}
	if course == nil {
		return nil, notFound(op, "course not found")
	}

	var enrollment models.Enrollment
	err = db.Where("user_id = ? AND course_id = ?", userID, courseID).Take(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notEnrolled(op)
	}
	if err != nil {
		return nil, wrap(op, err)
	}

	lessons := make([]LessonState, 0)
	err = db.Table("lessons").
		Select("lessons.id AS lesson_id, lessons.section_id AS section_id, lessons.title AS title, "+
			"COALESCE(lesson_progress.completed, ?) AS completed, lesson_progress.completed_at AS completed_at", false).
		Joins("JOIN sections ON sections.id = lessons.section_id").
		Joins("LEFT JOIN lesson_progress ON lesson_progress.lesson_id = lessons.id AND lesson_progress.user_id = ?", userID).
		Where("sections.course_id = ?", courseID).
		Order("sections.sequence_order, sections.id, lessons.sequence_order, lessons.id").
		Scan(&lessons).Error
	if err != nil {
		return nil, wrap(op, err)
	}

	view := &CourseProgressView{
		Enrollment:   &enrollment,
		State:        enrollment.State(),
		Completed:    enrollment.IsCompleted(),
		TotalLessons: len(lessons),
		Lessons:      lessons,
	}
	for _, l := range lessons {
		if l.Completed {
			view.CompletedLessons++
		}
	}
	return view, nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
