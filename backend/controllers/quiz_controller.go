package controllers

import (
	"philosofium/backend/services"
	"philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type QuizController struct {
	Quizzes    *services.QuizService
	Curriculum *services.CurriculumService
}

func NewQuizController(quizzes *services.QuizService, curriculum *services.CurriculumService) *QuizController {
	return &QuizController{Quizzes: quizzes, Curriculum: curriculum}
}

// SubmitAttemptRequest maps question ids to the chosen option.
type SubmitAttemptRequest struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

type CreateQuizRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	CourseID     *uint  `json:"course_id" validate:"omitempty,gt=0"`
	PassingScore *int   `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
}

type AddQuestionRequest struct {
	Prompt        string   `json:"prompt" validate:"required"`
	Options       []string `json:"options" validate:"omitempty,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Points        int      `json:"points" validate:"gte=0"`
	SequenceOrder int      `json:"sequence_order"`
}

func (qc *QuizController) GetQuiz(c *fiber.Ctx) error {
	quizID, err := paramID(c, "quizId")
	if err != nil {
		return err
	}

	quiz, err := qc.Quizzes.GetQuiz(c.UserContext(), quizID)
	if err != nil {
		return err
	}
	return utils.OK(c, quiz)
}

// SubmitAttempt godoc
// @Summary Submit quiz answers
// @Description Scores the answers by exact match and stores a new attempt
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quizId path int true "Quiz ID"
// @Param request body SubmitAttemptRequest true "Answers keyed by question id"
// @Success 201 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{quizId}/submit [post]
func (qc *QuizController) SubmitAttempt(c *fiber.Ctx) error {
	quizID, err := paramID(c, "quizId")
	if err != nil {
		return err
	}
	var req SubmitAttemptRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	result, err := qc.Quizzes.SubmitAttempt(c.UserContext(), currentUserID(c), quizID, req.Answers)
	if err != nil {
		return err
	}
	return utils.Created(c, result)
}

func (qc *QuizController) ListAttempts(c *fiber.Ctx) error {
	quizID, err := paramID(c, "quizId")
	if err != nil {
		return err
	}

	attempts, err := qc.Quizzes.ListAttempts(c.UserContext(), currentUserID(c), quizID)
	if err != nil {
		return err
	}
	return utils.OK(c, attempts)
}

func (qc *QuizController) CreateQuiz(c *fiber.Ctx) error {
	var req CreateQuizRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	quiz, err := qc.Curriculum.CreateQuiz(c.UserContext(), services.NewQuiz{
		CourseID:     req.CourseID,
		Title:        req.Title,
		PassingScore: req.PassingScore,
	})
	if err != nil {
		return err
	}
	return utils.Created(c, quiz)
}

func (qc *QuizController) AddQuestion(c *fiber.Ctx) error {
	quizID, err := paramID(c, "quizId")
	if err != nil {
		return err
	}
	var req AddQuestionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	question, err := qc.Curriculum.AddQuestion(c.UserContext(), services.NewQuestion{
		QuizID:        quizID,
		Prompt:        req.Prompt,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
		SequenceOrder: req.SequenceOrder,
	})
	if err != nil {
		return err
	}
	return utils.Created(c, question)
}
