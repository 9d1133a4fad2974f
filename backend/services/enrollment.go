package services

import (
	"context"
	"errors"
	"time"

	"philosofium/backend/models"
	"philosofium/backend/utils"

	"gorm.io/gorm"
)

type EnrollmentService struct {
	db  *gorm.DB
	log *utils.Logger
	now func() time.Time
}

func NewEnrollmentService(db *gorm.DB, log *utils.Logger) *EnrollmentService {
	return &EnrollmentService{db: db, log: log, now: utcNow}
}

type EnrollResult struct {
	Enrollment      *models.Enrollment `json:"enrollment"`
	RequiresPayment bool               `json:"requires_payment"`
}

// Enroll creates the enrollment. Free courses start paid.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID uint) (*EnrollResult, error) {
	const op = "enrollment.Enroll"

	var enrollment *models.Enrollment
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

		var existing int64
		if err := tx.Model(&models.Enrollment{}).
			Where("user_id = ? AND course_id = ?", userID, courseID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return alreadyEnrolled(op)
		}

		enrollment = &models.Enrollment{
			UserID:     userID,
			CourseID:   courseID,
			Paid:       course.IsFree(),
			EnrolledAt: s.now(),
		}
		if err := tx.Create(enrollment).Error; err != nil {
			if isUniqueViolation(err) {
				return alreadyEnrolled(op)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	s.log.Debug("enrolled", "user_id", userID, "course_id", courseID, "paid", enrollment.Paid)
	return &EnrollResult{Enrollment: enrollment, RequiresPayment: !enrollment.Paid}, nil
}

// CompletePayment marks the enrollment paid. Paying twice is a no-op.
func (s *EnrollmentService) CompletePayment(ctx context.Context, userID, courseID uint) (*models.Enrollment, error) {
	const op = "enrollment.CompletePayment"

	enrollment, err := s.mutate(ctx, op, userID, courseID, func(tx *gorm.DB, e *models.Enrollment) error {
		if e.Paid {
			return nil
		}
		e.Paid = true
		return tx.Model(e).Update("paid", true).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("payment completed", "user_id", userID, "course_id", courseID)
	return enrollment, nil
}

// SetCourseCompletion is the explicit completion toggle. Marking complete forces
// progress to 100; un-marking clears CompletedAt and keeps progress as is.
func (s *EnrollmentService) SetCourseCompletion(ctx context.Context, userID, courseID uint, completed bool) (*models.Enrollment, error) {
	const op = "enrollment.SetCourseCompletion"

	enrollment, err := s.mutate(ctx, op, userID, courseID, func(tx *gorm.DB, e *models.Enrollment) error {
		updates := map[string]interface{}{}
		if completed {
			now := s.now()
			e.CompletedAt = &now
			e.Progress = 100
			updates["completed_at"] = now
			updates["progress"] = 100
		} else {
			e.CompletedAt = nil
			updates["completed_at"] = nil
		}
		return tx.Model(e).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("course completion set", "user_id", userID, "course_id", courseID, "completed", completed)
	return enrollment, nil
}

// mutate locks the enrollment of an existing user and course and applies fn in one transaction.
func (s *EnrollmentService) mutate(ctx context.Context, op string, userID, courseID uint, fn func(tx *gorm.DB, e *models.Enrollment) error) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
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

		enrollment, err = lockEnrollment(tx, userID, courseID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return notEnrolled(op)
		}
		return fn(tx, enrollment)
	})
	if err != nil {
		return nil, wrap(op, err)
	}
	return enrollment, nil
}

// Get returns the enrollment, or nil when the user is not enrolled.
func (s *EnrollmentService) Get(ctx context.Context, userID, courseID uint) (*models.Enrollment, error) {
	const op = "enrollment.Get"

	var enrollment models.Enrollment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Take(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(op, err)
	}
	return &enrollment, nil
}

func (s *EnrollmentService) ListForUser(ctx context.Context, userID uint) ([]models.Enrollment, error) {
	const op = "enrollment.ListForUser"

	enrollments := make([]models.Enrollment, 0)
	err := s.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC, id DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, wrap(op, err)
	}
	return enrollments, nil
}
