package controllers

import (
	"philosofium/backend/services"
	"philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	Progress    *services.ProgressService
	Enrollments *services.EnrollmentService
}

func NewProgressController(progress *services.ProgressService, enrollments *services.EnrollmentService) *ProgressController {
	return &ProgressController{Progress: progress, Enrollments: enrollments}
}

// CompletionRequest is the body of both completion toggles. Completed is the
// target state, not a flip.
type CompletionRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// SetLessonCompletion godoc
// @Summary Mark a lesson complete or incomplete
// @Tags progress
// @Accept json
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Param request body CompletionRequest true "Target state"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /student/progress/{lessonId} [post]
func (pc *ProgressController) SetLessonCompletion(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return err
	}
	var req CompletionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	result, err := pc.Progress.SetLessonCompletion(c.UserContext(), currentUserID(c), lessonID, *req.Completed)
	if err != nil {
		return err
	}
	return utils.OK(c, result)
}

// SetCourseCompletion godoc
// @Summary Explicitly mark a course complete or incomplete
// @Tags progress
// @Accept json
// @Produce json
// @Param courseId path int true "Course ID"
// @Param request body CompletionRequest true "Target state"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /student/complete-course/{courseId} [post]
func (pc *ProgressController) SetCourseCompletion(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	var req CompletionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	enrollment, err := pc.Enrollments.SetCourseCompletion(c.UserContext(), currentUserID(c), courseID, *req.Completed)
	if err != nil {
		return err
	}
	return utils.OK(c, enrollment)
}

func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}

	view, err := pc.Progress.CourseProgress(c.UserContext(), currentUserID(c), courseID)
	if err != nil {
		return err
	}
	return utils.OK(c, view)
}

func (pc *ProgressController) ListCourses(c *fiber.Ctx) error {
	enrollments, err := pc.Enrollments.ListForUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return utils.OK(c, enrollments)
}
