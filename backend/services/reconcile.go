package services

import (
	"context"
	"errors"
	"fmt"

	"philosofium/backend/models"
	"philosofium/backend/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReconcileJob recomputes stored progress for open enrollments, e.g. after
// lessons were added to a course.
type ReconcileJob struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewReconcileJob(db *gorm.DB, log *utils.Logger) *ReconcileJob {
	return &ReconcileJob{db: db, log: log.With("component", "reconcile")}
}

type ReconcileReport struct {
	Checked int
	Updated int
}

// Run reconciles every enrollment that has not been explicitly completed.
// Each enrollment gets its own transaction; failures are collected.
func (j *ReconcileJob) Run(ctx context.Context) (ReconcileReport, error) {
	const op = "reconcile.Run"

	var report ReconcileReport
	var ids []uint
	err := j.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("completed_at IS NULL").
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return report, wrap(op, err)
	}

	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		changed, err := j.reconcileOne(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("enrollment %d: %w", id, err))
			continue
		}
		report.Checked++
		if changed {
			report.Updated++
		}
	}

	if len(errs) > 0 {
		return report, wrap(op, errors.Join(errs...))
	}
	return report, nil
}

func (j *ReconcileJob) reconcileOne(ctx context.Context, enrollmentID uint) (bool, error) {
	changed := false
	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e models.Enrollment
		err := tx.Clauses(lockForUpdate).Take(&e, enrollmentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		// completed while the job was running
		if e.IsCompleted() {
			return nil
		}

		before := e.Progress
		pct, err := recompute(tx, &e)
		if err != nil {
			return err
		}
		changed = pct != before
		return nil
	})
	return changed, err
}

// Schedule registers Run on c under spec.
func (j *ReconcileJob) Schedule(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() {
		report, err := j.Run(context.Background())
		if err != nil {
			j.log.Error("reconcile failed", "checked", report.Checked, "updated", report.Updated, "error", err)
			return
		}
		j.log.Info("reconcile finished", "checked", report.Checked, "updated", report.Updated)
	})
	return err
}
