package services

import (
	"context"
	"errors"
	"time"

	"philosofium/backend/models"
	"philosofium/backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateService struct {
	db  *gorm.DB
	log *utils.Logger
	now func() time.Time
}

func NewCertificateService(db *gorm.DB, log *utils.Logger) *CertificateService {
	return &CertificateService{db: db, log: log, now: utcNow}
}

// Issue returns the user's certificate for a completed course, creating it on
// first call.
func (s *CertificateService) Issue(ctx context.Context, userID, courseID uint) (*models.Certificate, error) {
	const op = "certificate.Issue"

	var cert models.Certificate
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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
		if !enrollment.IsCompleted() {
			return invalid(op, "course not completed")
		}

		err = tx.Where("user_id = ? AND course_id = ?", userID, courseID).Take(&cert).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		cert = models.Certificate{
			UserID:   userID,
			CourseID: courseID,
			Number:   uuid.NewString(),
			IssuedAt: s.now(),
		}
		created = true
		return tx.Create(&cert).Error
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	if created {
		s.log.Info("certificate issued", "user_id", userID, "course_id", courseID, "number", cert.Number)
	}
	return &cert, nil
}

func (s *CertificateService) ListForUser(ctx context.Context, userID uint) ([]models.Certificate, error) {
	const op = "certificate.ListForUser"

	certs := make([]models.Certificate, 0)
	err := s.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("issued_at DESC, id DESC").
		Find(&certs).Error
	if err != nil {
		return nil, wrap(op, err)
	}
	return certs, nil
}
