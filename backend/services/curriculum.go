package services

import (
	"context"
	"errors"
	"slices"

	"philosofium/backend/models"
	"philosofium/backend/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CurriculumService holds the authoring writes for courses and quizzes.
type CurriculumService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewCurriculumService(db *gorm.DB, log *utils.Logger) *CurriculumService {
	return &CurriculumService{db: db, log: log}
}

type NewCourse struct {
	Title       string
	Description string
	Price       int64
	AuthorID    uint
}

type NewSection struct {
	CourseID      uint
	Title         string
	SequenceOrder int
}

type NewLesson struct {
	SectionID     uint
	Title         string
	Content       string
	SequenceOrder int
}

type NewQuiz struct {
	CourseID     *uint
	Title        string
	PassingScore *int
}

type NewQuestion struct {
	QuizID        uint
	Prompt        string
	Options       []string
	CorrectAnswer string
	Points        int
	SequenceOrder int
}

func (s *CurriculumService) CreateCourse(ctx context.Context, in NewCourse) (*models.Course, error) {
	const op = "curriculum.CreateCourse"

	if in.Price < 0 {
		return nil, invalid(op, "price must not be negative")
	}
	course := &models.Course{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		AuthorID:    in.AuthorID,
	}
	if err := s.db.WithContext(ctx).Create(course).Error; err != nil {
		return nil, wrap(op, err)
	}
	s.log.Info("course created", "course_id", course.ID, "author_id", in.AuthorID)
	return course, nil
}

func (s *CurriculumService) AddSection(ctx context.Context, in NewSection) (*models.Section, error) {
	const op = "curriculum.AddSection"

	var section *models.Section
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := findCourse(tx, in.CourseID)
		if err != nil {
			return err
		}
		if course == nil {
			return notFound(op, "course not found")
		}
		section = &models.Section{CourseID: in.CourseID, Title: in.Title, SequenceOrder: in.SequenceOrder}
		return tx.Create(section).Error
	})
	if err != nil {
		return nil, wrap(op, err)
	}
	return section, nil
}

// AddLesson appends a lesson. Existing enrollments keep their stored progress
// until the next completion change or reconcile run.
func (s *CurriculumService) AddLesson(ctx context.Context, in NewLesson) (*models.Lesson, error) {
	const op = "curriculum.AddLesson"

	var lesson *models.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Section{}).Where("id = ?", in.SectionID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return notFound(op, "section not found")
		}
		lesson = &models.Lesson{
			SectionID:     in.SectionID,
			Title:         in.Title,
			Content:       in.Content,
			SequenceOrder: in.SequenceOrder,
		}
		return tx.Create(lesson).Error
	})
	if err != nil {
		return nil, wrap(op, err)
	}
	return lesson, nil
}

func (s *CurriculumService) CreateQuiz(ctx context.Context, in NewQuiz) (*models.Quiz, error) {
	const op = "curriculum.CreateQuiz"

	if in.PassingScore != nil && (*in.PassingScore < 0 || *in.PassingScore > 100) {
		return nil, invalid(op, "passing score must be between 0 and 100")
	}

	var quiz *models.Quiz
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.CourseID != nil {
			course, err := findCourse(tx, *in.CourseID)
			if err != nil {
				return err
			}
			if course == nil {
				return notFound(op, "course not found")
			}
		}
		quiz = &models.Quiz{CourseID: in.CourseID, Title: in.Title, PassingScore: in.PassingScore}
		return tx.Create(quiz).Error
	})
	if err != nil {
		return nil, wrap(op, err)
	}
	return quiz, nil
}

func (s *CurriculumService) AddQuestion(ctx context.Context, in NewQuestion) (*models.Question, error) {
	const op = "curriculum.AddQuestion"

	if in.Points < 0 {
		return nil, invalid(op, "points must not be negative")
	}
	if len(in.Options) > 0 && !slices.Contains(in.Options, in.CorrectAnswer) {
		return nil, invalid(op, "correct answer must be one of the options")
	}

	var question *models.Question
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Select("id").Take(&models.Quiz{}, in.QuizID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(op, "quiz not found")
		}
		if err != nil {
			return err
		}
		question = &models.Question{
			QuizID:        in.QuizID,
			Prompt:        in.Prompt,
			Options:       datatypes.JSONSlice[string](in.Options),
			CorrectAnswer: in.CorrectAnswer,
			Points:        in.Points,
			SequenceOrder: in.SequenceOrder,
		}
		return tx.Create(question).Error
	})
	if err != nil {
		return nil, wrap(op, err)
	}
	return question, nil
}
