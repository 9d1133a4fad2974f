package controllers

import (
	"philosofium/backend/services"
	"philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Enrollments *services.EnrollmentService
	Curriculum  *services.CurriculumService
}

func NewCoursesController(enrollments *services.EnrollmentService, curriculum *services.CurriculumService) *CoursesController {
	return &CoursesController{Enrollments: enrollments, Curriculum: curriculum}
}

type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"gte=0"`
}

type AddSectionRequest struct {
	Title         string `json:"title" validate:"required,max=255"`
	SequenceOrder int    `json:"sequence_order"`
}

type AddLessonRequest struct {
	Title         string `json:"title" validate:"required,max=255"`
	Content       string `json:"content"`
	SequenceOrder int    `json:"sequence_order"`
}

// Enroll godoc
// @Summary Enroll the current user in a course
// @Tags courses
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 201 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /student/enroll/{courseId} [post]
func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}

	result, err := cc.Enrollments.Enroll(c.UserContext(), currentUserID(c), courseID)
	if err != nil {
		return err
	}
	return utils.Created(c, result)
}

// Pay confirms payment for an enrollment. Payment capture itself is mocked.
func (cc *CoursesController) Pay(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}

	enrollment, err := cc.Enrollments.CompletePayment(c.UserContext(), currentUserID(c), courseID)
	if err != nil {
		return err
	}
	return utils.OK(c, enrollment)
}

// [+] CreateCourse godoc
// @Summary Create course
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CreateCourseRequest true "Course"
// @Success 201 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /admin/courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var req CreateCourseRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	course, err := cc.Curriculum.CreateCourse(c.UserContext(), services.NewCourse{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		AuthorID:    currentUserID(c),
	})
	if err != nil {
		return err
	}
	return utils.Created(c, course)
}

func (cc *CoursesController) AddSection(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	var req AddSectionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	section, err := cc.Curriculum.AddSection(c.UserContext(), services.NewSection{
		CourseID:      courseID,
		Title:         req.Title,
		SequenceOrder: req.SequenceOrder,
	})
	if err != nil {
		return err
	}
	return utils.Created(c, section)
}

func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	sectionID, err := paramID(c, "sectionId")
	if err != nil {
		return err
	}
	var req AddLessonRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	lesson, err := cc.Curriculum.AddLesson(c.UserContext(), services.NewLesson{
		SectionID:     sectionID,
		Title:         req.Title,
		Content:       req.Content,
		SequenceOrder: req.SequenceOrder,
	})
	if err != nil {
		return err
	}
	return utils.Created(c, lesson)
}
