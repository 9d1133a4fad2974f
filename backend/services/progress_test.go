package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"philosofium/backend/models"
	"philosofium/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		completed, total int64
		want             int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 4, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{1, 200, 1},
		{1, 201, 0},
		{2, 4, 50},
		{3, 4, 75},
		{4, 4, 100},
		{5, 4, 100},
		{199, 200, 99},
		{999, 1000, 99},
		{995, 1000, 99},
		{994, 1000, 99},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.completed, tt.total), "%d/%d", tt.completed, tt.total)
	}
}

func TestSetLessonCompletionIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, lessons := seedCourse(t, db, 0, 4)
	seedEnrollment(t, db, user.ID, course.ID)

	first, err := svc.SetLessonCompletion(ctx, user.ID, lessons[0].ID, true)
	require.NoError(t, err)
	second, err := svc.SetLessonCompletion(ctx, user.ID, lessons[0].ID, true)
	require.NoError(t, err)

	assert.True(t, second.LessonProgress.Completed)
	assert.Equal(t, first.LessonProgress.ID, second.LessonProgress.ID)
	assert.Equal(t, 25, first.CourseProgress)
	assert.Equal(t, first.CourseProgress, second.CourseProgress)
	assert.Equal(t, 25, reloadEnrollment(t, db, user.ID, course.ID).Progress)

	var rows int64
	require.NoError(t, db.Model(&models.LessonProgress{}).Where("user_id = ?", user.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestProgressPercentageForFourLessons(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, lessons := seedCourse(t, db, 0, 4)
	seedEnrollment(t, db, user.ID, course.ID)

	for _, i := range []int{0, 2} {
		_, err := svc.SetLessonCompletion(ctx, user.ID, lessons[i].ID, true)
		require.NoError(t, err)
	}
	pct, err := svc.RecomputeProgress(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, pct)

	_, err = svc.SetLessonCompletion(ctx, user.ID, lessons[1].ID, true)
	require.NoError(t, err)
	pct, err = svc.RecomputeProgress(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, pct)

	res, err := svc.SetLessonCompletion(ctx, user.ID, lessons[3].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 100, res.CourseProgress)

	e := reloadEnrollment(t, db, user.ID, course.ID)
	assert.Equal(t, 100, e.Progress)
	assert.Nil(t, e.CompletedAt, "reaching 100 through lessons must not complete the course")
}

func TestProgressRoundsOneThirdDown(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, lessons := seedCourse(t, db, 0, 3)
	seedEnrollment(t, db, user.ID, course.ID)

	res, err := svc.SetLessonCompletion(ctx, user.ID, lessons[0].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 33, res.CourseProgress)

	res, err = svc.SetLessonCompletion(ctx, user.ID, lessons[1].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 67, res.CourseProgress)
}

func TestUncompletingLessonClearsCompletedAt(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, lessons := seedCourse(t, db, 0, 4)
	seedEnrollment(t, db, user.ID, course.ID)

	for _, l := range lessons[:2] {
		res, err := svc.SetLessonCompletion(ctx, user.ID, l.ID, true)
		require.NoError(t, err)
		assert.NotNil(t, res.LessonProgress.CompletedAt)
	}

	res, err := svc.SetLessonCompletion(ctx, user.ID, lessons[1].ID, false)
	require.NoError(t, err)
	assert.False(t, res.LessonProgress.Completed)
	assert.Nil(t, res.LessonProgress.CompletedAt)
	assert.Equal(t, 25, res.CourseProgress)

	var stored models.LessonProgress
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", user.ID, lessons[1].ID).Take(&stored).Error)
	assert.False(t, stored.Completed)
	assert.Nil(t, stored.CompletedAt)
}

func TestUncompletingUnknownLessonProgressCreatesRecord(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())

	user := seedUser(t, db, "ada")
	course, lessons := seedCourse(t, db, 0, 2)
	seedEnrollment(t, db, user.ID, course.ID)

	res, err := svc.SetLessonCompletion(context.Background(), user.ID, lessons[0].ID, false)
	require.NoError(t, err)
	assert.NotZero(t, res.LessonProgress.ID)
	assert.False(t, res.LessonProgress.Completed)
	assert.Equal(t, 0, res.CourseProgress)
}

func TestSetLessonCompletionWithoutEnrollment(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())

	user := seedUser(t, db, "ada")
	_, lessons := seedCourse(t, db, 0, 2)

	_, err := svc.SetLessonCompletion(context.Background(), user.ID, lessons[0].ID, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var rows int64
	require.NoError(t, db.Model(&models.LessonProgress{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestSetLessonCompletionUnknownLesson(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())
	user := seedUser(t, db, "ada")

	_, err := svc.SetLessonCompletion(context.Background(), user.ID, 9999, true)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRecomputeProgressFailures(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, _ := seedCourse(t, db, 0, 2)

	_, err := svc.RecomputeProgress(ctx, user.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.RecomputeProgress(ctx, user.ID, course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = svc.RecomputeProgress(ctx, 9999, course.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProgressStaysBelowHundredUntilLastLesson(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, lessons := seedCourse(t, db, 0, 200)
	seedEnrollment(t, db, user.ID, course.ID)

	rows := make([]models.LessonProgress, 0, len(lessons)-2)
	now := time.Now().UTC()
	for _, l := range lessons[:len(lessons)-2] {
		rows = append(rows, models.LessonProgress{UserID: user.ID, LessonID: l.ID, Completed: true, CompletedAt: &now})
	}
	require.NoError(t, db.CreateInBatches(&rows, 50).Error)

	res, err := svc.SetLessonCompletion(ctx, user.ID, lessons[198].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 99, res.CourseProgress)
	assert.Equal(t, 99, reloadEnrollment(t, db, user.ID, course.ID).Progress)

	res, err = svc.SetLessonCompletion(ctx, user.ID, lessons[199].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 100, res.CourseProgress)
}

func TestRecomputeProgressEmptyCourse(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())

	user := seedUser(t, db, "ada")
	course, _ := seedCourse(t, db, 0, 0)
	seedEnrollment(t, db, user.ID, course.ID)

	pct, err := svc.RecomputeProgress(context.Background(), user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, pct)
}

func TestRecomputeProgressIgnoresOtherCourses(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	courseA, lessonsA := seedCourse(t, db, 0, 2)
	courseB, _ := seedCourse(t, db, 0, 4)
	seedEnrollment(t, db, user.ID, courseA.ID)
	seedEnrollment(t, db, user.ID, courseB.ID)

	_, err := svc.SetLessonCompletion(ctx, user.ID, lessonsA[0].ID, true)
	require.NoError(t, err)

	pct, err := svc.RecomputeProgress(ctx, user.ID, courseB.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, pct)
	assert.Equal(t, 50, reloadEnrollment(t, db, user.ID, courseA.ID).Progress)
}

func TestConcurrentDisjointLessonCompletions(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, lessons := seedCourse(t, db, 0, 4)
	seedEnrollment(t, db, user.ID, course.ID)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SetLessonCompletion(ctx, user.ID, lessons[i].ID, true)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 50, reloadEnrollment(t, db, user.ID, course.ID).Progress)
}

func TestConcurrentSameLessonLastWriterWins(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, lessons := seedCourse(t, db, 0, 2)
	seedEnrollment(t, db, user.ID, course.ID)

	var wg sync.WaitGroup
	for _, completed := range []bool{true, false, true, false} {
		wg.Add(1)
		go func(completed bool) {
			defer wg.Done()
			_, err := svc.SetLessonCompletion(ctx, user.ID, lessons[0].ID, completed)
			assert.NoError(t, err)
		}(completed)
	}
	wg.Wait()

	var lp models.LessonProgress
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", user.ID, lessons[0].ID).Take(&lp).Error)
	want := 0
	if lp.Completed {
		want = 50
	}
	assert.Equal(t, want, reloadEnrollment(t, db, user.ID, course.ID).Progress)
}

func TestCourseProgressView(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, utils.NopLogger())
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	course, lessons := seedCourse(t, db, 0, 3)
	seedEnrollment(t, db, user.ID, course.ID)

	_, err := svc.SetLessonCompletion(ctx, user.ID, lessons[1].ID, true)
	require.NoError(t, err)

	view, err := svc.CourseProgress(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateEnrolledPaid, view.State)
	assert.False(t, view.Completed)
	assert.Equal(t, 3, view.TotalLessons)
	assert.Equal(t, 1, view.CompletedLessons)
	require.Len(t, view.Lessons, 3)
	assert.Equal(t, lessons[0].ID, view.Lessons[0].LessonID)
	assert.False(t, view.Lessons[0].Completed)
	assert.True(t, view.Lessons[1].Completed)
	assert.Equal(t, 33, view.Enrollment.Progress)

	other := seedUser(t, db, "bob")
	_, err = svc.CourseProgress(ctx, other.ID, course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}
