package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"philosofium/backend/config"
	"philosofium/backend/models"
	"philosofium/backend/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := utils.InitDB(&config.Config{DBDriver: "sqlite", SQLitePath: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

var userSeq atomic.Int64

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s-%d@example.com", name, userSeq.Add(1)),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// seedCourse creates a course with one section holding n lessons.
func seedCourse(t *testing.T, db *gorm.DB, price int64, n int) (*models.Course, []models.Lesson) {
	t.Helper()
	course := &models.Course{Title: "Course", Price: price}
	require.NoError(t, db.Create(course).Error)
	section := &models.Section{CourseID: course.ID, Title: "Section", SequenceOrder: 1}
	require.NoError(t, db.Create(section).Error)

	lessons := make([]models.Lesson, 0, n)
	for i := 0; i < n; i++ {
		l := models.Lesson{SectionID: section.ID, Title: fmt.Sprintf("Lesson %d", i+1), SequenceOrder: i + 1}
		require.NoError(t, db.Create(&l).Error)
		lessons = append(lessons, l)
	}
	return course, lessons
}

func seedEnrollment(t *testing.T, db *gorm.DB, userID, courseID uint) *models.Enrollment {
	t.Helper()
	e := &models.Enrollment{UserID: userID, CourseID: courseID, Paid: true, EnrolledAt: time.Now().UTC()}
	require.NoError(t, db.Create(e).Error)
	return e
}

func seedQuiz(t *testing.T, db *gorm.DB, passingScore *int, points ...int) (*models.Quiz, []models.Question) {
	t.Helper()
	quiz := &models.Quiz{Title: "Quiz", PassingScore: passingScore}
	require.NoError(t, db.Create(quiz).Error)

	questions := make([]models.Question, 0, len(points))
	for i, p := range points {
		q := models.Question{
			QuizID:        quiz.ID,
			Prompt:        fmt.Sprintf("Q%d", i+1),
			Options:       []string{"a", "b", "c"},
			CorrectAnswer: "a",
			Points:        p,
			SequenceOrder: i + 1,
		}
		require.NoError(t, db.Create(&q).Error)
		questions = append(questions, q)
	}
	return quiz, questions
}

func reloadEnrollment(t *testing.T, db *gorm.DB, userID, courseID uint) models.Enrollment {
	t.Helper()
	var e models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, courseID).Take(&e).Error)
	return e
}

func key(id uint) string {
	return fmt.Sprintf("%d", id)
}

func intPtr(v int) *int { return &v }

// memoryCache is an in-process LeaderboardCache for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]LeaderboardEntry
	gets    int
	hits    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]LeaderboardEntry{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]LeaderboardEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	e, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return e, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, entries []LeaderboardEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entries
	return nil
}
