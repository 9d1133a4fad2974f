package controllers

import (
	"philosofium/backend/services"
	"philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsController struct {
	Analytics *services.AnalyticsService
}

func NewAnalyticsController(analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Analytics: analytics}
}

// GetCourseAnalytics возвращает статистику записей и прогресса по курсу
func (ac *AnalyticsController) GetCourseAnalytics(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}

	stats, err := ac.Analytics.Course(c.UserContext(), courseID)
	if err != nil {
		return err
	}
	return utils.OK(c, stats)
}
