package routes

import (
	"philosofium/backend/config"
	"philosofium/backend/controllers"
	"philosofium/backend/middleware"
	"philosofium/backend/models"
	"philosofium/backend/services"
	"philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the shared handles every route is built from.
type Deps struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *utils.Logger
	// LeaderboardCache is optional.
	LeaderboardCache services.LeaderboardCache
}

func SetupRoutes(app *fiber.App, d Deps) {
	progressService := services.NewProgressService(d.DB, d.Log)
	enrollmentService := services.NewEnrollmentService(d.DB, d.Log)
	quizService := services.NewQuizService(d.DB, d.Log)
	curriculumService := services.NewCurriculumService(d.DB, d.Log)
	leaderboardService := services.NewLeaderboardService(d.DB, d.Log, d.LeaderboardCache)
	certificateService := services.NewCertificateService(d.DB, d.Log)
	analyticsService := services.NewAnalyticsService(d.DB)

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return utils.Error(c, fiber.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
		}
		return utils.OK(c, fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth routes
	authController := controllers.NewAuthController(d.DB, d.Cfg, d.Log)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(d.Cfg)
	authorMiddleware := middleware.RequireRole(models.RoleInstructor, models.RoleAdmin)

	// User routes
	userController := controllers.NewUserController(d.DB)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Student routes
	progressController := controllers.NewProgressController(progressService, enrollmentService)
	coursesController := controllers.NewCoursesController(enrollmentService, curriculumService)
	certificateController := controllers.NewCertificateController(certificateService)
	student := app.Group("/api/student", authMiddleware)
	student.Post("/progress/:lessonId", progressController.SetLessonCompletion)
	student.Post("/complete-course/:courseId", progressController.SetCourseCompletion)
	student.Post("/enroll/:courseId", coursesController.Enroll)
	student.Post("/pay/:courseId", coursesController.Pay)
	student.Get("/courses", progressController.ListCourses)
	student.Get("/courses/:courseId/progress", progressController.GetCourseProgress)
	student.Post("/certificate/:courseId", certificateController.Issue)
	student.Get("/certificates", certificateController.List)

	// Quiz routes
	quizController := controllers.NewQuizController(quizService, curriculumService)
	quizzes := app.Group("/api/quizzes", authMiddleware)
	quizzes.Get("/:quizId", quizController.GetQuiz)
	quizzes.Post("/:quizId/submit", quizController.SubmitAttempt)
	quizzes.Get("/:quizId/attempts", quizController.ListAttempts)

	leaderboardController := controllers.NewLeaderboardController(leaderboardService)
	app.Get("/api/leaderboard", authMiddleware, leaderboardController.GetLeaderboard)

	// Admin routes
	analyticsController := controllers.NewAnalyticsController(analyticsService)
	admin := app.Group("/api/admin", authMiddleware, authorMiddleware)
	admin.Post("/courses", coursesController.CreateCourse)
	admin.Post("/courses/:courseId/sections", coursesController.AddSection)
	admin.Get("/courses/:courseId/analytics", analyticsController.GetCourseAnalytics)
	admin.Post("/sections/:sectionId/lessons", coursesController.AddLesson)
	admin.Post("/quizzes", quizController.CreateQuiz)
	admin.Post("/quizzes/:quizId/questions", quizController.AddQuestion)
}
