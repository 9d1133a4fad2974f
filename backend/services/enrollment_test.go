package services

import (
	"context"
	"testing"

	"philosofium/backend/models"
	"philosofium/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollPaidCourseRequiresPayment(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, _ := seedCourse(t, db, 4900, 2)

	res, err := svc.Enroll(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, res.RequiresPayment)
	assert.False(t, res.Enrollment.Paid)
	assert.Equal(t, 0, res.Enrollment.Progress)
	assert.Equal(t, models.StateEnrolledUnpaid, res.Enrollment.State())

	paid, err := svc.CompletePayment(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	assert.Equal(t, models.StateEnrolledPaid, paid.State())

	again, err := svc.CompletePayment(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, again.Paid)
	assert.True(t, reloadEnrollment(t, db, user.ID, course.ID).Paid)
}

func TestEnrollFreeCourseIsPaid(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db, utils.NopLogger())

	user := seedUser(t, db, "ada")
	course, _ := seedCourse(t, db, 0, 1)

	res, err := svc.Enroll(context.Background(), user.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, res.RequiresPayment)
	assert.True(t, res.Enrollment.Paid)
	assert.False(t, res.Enrollment.EnrolledAt.IsZero())
}

func TestEnrollTwiceFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, _ := seedCourse(t, db, 0, 1)

	_, err := svc.Enroll(ctx, user.ID, course.ID)
	require.NoError(t, err)

	_, err = svc.Enroll(ctx, user.ID, course.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	var n int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestEnrollmentUniqueIndexMapsToAlreadyEnrolled(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "ada")
	course, _ := seedCourse(t, db, 0, 1)
	seedEnrollment(t, db, user.ID, course.ID)

	err := db.Create(&models.Enrollment{UserID: user.ID, CourseID: course.ID}).Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}

func TestEnrollMissingEntities(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, _ := seedCourse(t, db, 0, 1)

	_, err := svc.Enroll(ctx, user.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Enroll(ctx, 9999, course.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStateMachineWithoutEnrollment(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, _ := seedCourse(t, db, 100, 1)

	_, err := svc.CompletePayment(ctx, user.ID, course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = svc.SetCourseCompletion(ctx, user.ID, course.ID, true)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = svc.CompletePayment(ctx, user.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CompletePayment(ctx, 9999, course.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrNotEnrolled)

	_, err = svc.SetCourseCompletion(ctx, 9999, course.ID, true)
	assert.ErrorIs(t, err, ErrNotFound)

	e, err := svc.Get(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.Equal(t, models.StateNotEnrolled, e.State())
}

func TestCourseCompletionOverridesProgress(t *testing.T) {
	db := newTestDB(t)
	progress := NewProgressService(db, utils.NopLogger())
	svc := NewEnrollmentService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, lessons := seedCourse(t, db, 0, 4)
	seedEnrollment(t, db, user.ID, course.ID)

	for _, l := range lessons[:3] {
		_, err := progress.SetLessonCompletion(ctx, user.ID, l.ID, true)
		require.NoError(t, err)
	}
	assert.Equal(t, 75, reloadEnrollment(t, db, user.ID, course.ID).Progress)

	e, err := svc.SetCourseCompletion(ctx, user.ID, course.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 100, e.Progress)
	assert.NotNil(t, e.CompletedAt)

	stored := reloadEnrollment(t, db, user.ID, course.ID)
	assert.Equal(t, 100, stored.Progress)
	assert.NotNil(t, stored.CompletedAt)

	e, err = svc.SetCourseCompletion(ctx, user.ID, course.ID, false)
	require.NoError(t, err)
	assert.Nil(t, e.CompletedAt)
	assert.Equal(t, 100, e.Progress)

	stored = reloadEnrollment(t, db, user.ID, course.ID)
	assert.Equal(t, 100, stored.Progress)
	assert.Nil(t, stored.CompletedAt)

	// the next lesson change recomputes from lesson rows again
	res, err := progress.SetLessonCompletion(ctx, user.ID, lessons[0].ID, false)
	require.NoError(t, err)
	assert.Equal(t, 50, res.CourseProgress)
}

func TestListForUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	c1, _ := seedCourse(t, db, 0, 1)
	c2, _ := seedCourse(t, db, 500, 1)

	_, err := svc.Enroll(ctx, user.ID, c1.ID)
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, user.ID, c2.ID)
	require.NoError(t, err)

	list, err := svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, c2.ID, list[0].CourseID)
	require.NotNil(t, list[0].Course)
	assert.Equal(t, int64(500), list[0].Course.Price)

	empty, err := svc.ListForUser(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
