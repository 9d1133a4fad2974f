package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"philosofium/backend/models"
	"philosofium/backend/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizService struct {
	db  *gorm.DB
	log *utils.Logger
	now func() time.Time
}

func NewQuizService(db *gorm.DB, log *utils.Logger) *QuizService {
	return &QuizService{db: db, log: log, now: utcNow}
}

type AttemptResult struct {
	AttemptID   uint `json:"attempt_id"`
	Score       int  `json:"score"`
	TotalPoints int  `json:"total_points"`
	Passed      bool `json:"passed"`
}

// Score sums the points of every question whose answer matches exactly.
// Answers are keyed by the decimal question id; unknown keys are ignored.
func Score(questions []models.Question, answers map[string]string) (score, totalPoints int) {
	for _, q := range questions {
		totalPoints += q.Points
		answer, ok := answers[strconv.FormatUint(uint64(q.ID), 10)]
		if ok && answer == q.CorrectAnswer {
			score += q.Points
		}
	}
	return score, totalPoints
}

// Passed applies the passing threshold in percent. A nil threshold always passes.
func Passed(score, totalPoints int, passingScore *int) bool {
	if passingScore == nil {
		return true
	}
	return score*100 >= totalPoints*(*passingScore)
}

// SubmitAttempt scores the answers and stores a new attempt. A nil answers
// map is rejected; an empty one is a valid submission scoring zero.
func (s *QuizService) SubmitAttempt(ctx context.Context, userID, quizID uint, answers map[string]string) (*AttemptResult, error) {
	const op = "quiz.SubmitAttempt"

	if answers == nil {
		return nil, invalid(op, "answers are required")
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, wrap(op, err)
	}

	var attempt models.Attempt
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := userExists(tx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(op, "user not found")
		}

		var quiz models.Quiz
		err = tx.Preload("Questions").Take(&quiz, quizID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(op, "quiz not found")
		}
		if err != nil {
			return err
		}

		score, total := Score(quiz.Questions, answers)
		attempt = models.Attempt{
			UserID:      userID,
			QuizID:      quizID,
			Score:       score,
			TotalPoints: total,
			Passed:      Passed(score, total, quiz.PassingScore),
			Answers:     datatypes.JSON(raw),
			SubmittedAt: s.now(),
		}
		return tx.Create(&attempt).Error
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	s.log.Debug("quiz attempt stored",
		"user_id", userID,
		"quiz_id", quizID,
		"score", attempt.Score,
		"total_points", attempt.TotalPoints,
		"passed", attempt.Passed,
	)
	return &AttemptResult{
		AttemptID:   attempt.ID,
		Score:       attempt.Score,
		TotalPoints: attempt.TotalPoints,
		Passed:      attempt.Passed,
	}, nil
}

// GetQuiz loads the quiz with its questions in order. Correct answers are
// never serialized.
func (s *QuizService) GetQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	const op = "quiz.GetQuiz"

	var quiz models.Quiz
	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order, id")
		}).
		Take(&quiz, quizID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(op, "quiz not found")
	}
	if err != nil {
		return nil, wrap(op, err)
	}
	return &quiz, nil
}

// ListAttempts returns the user's attempts at a quiz, newest first.
func (s *QuizService) ListAttempts(ctx context.Context, userID, quizID uint) ([]models.Attempt, error) {
	const op = "quiz.ListAttempts"
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Quiz{}).Where("id = ?", quizID).Count(&n).Error; err != nil {
		return nil, wrap(op, err)
	}
	if n == 0 {
		return nil, notFound(op, "quiz not found")
	}

	attempts := make([]models.Attempt, 0)
	err := db.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("submitted_at DESC, id DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, wrap(op, err)
	}
	return attempts, nil
}
