package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/opencourse/coursework-service/internal/services"
	"github.com/opencourse/coursework-service/internal/utils"
	"github.com/opencourse/coursework-service/internal/validator"
)

type HandlerManager struct {
	courseHandler     *CourseHandler
	exerciseHandler   *ExerciseHandler
	submissionHandler *SubmissionHandler
	gradingHandler    *GradingHandler
	summaryHandler    *SummaryHandler
	auth              *AuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	auth *AuthMiddleware,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		courseHandler:     NewCourseHandler(serviceManager.Course(), validator, logger),
		exerciseHandler:   NewExerciseHandler(serviceManager.Exercise(), validator, logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), serviceManager.Deviation(), validator, logger),
		gradingHandler:    NewGradingHandler(serviceManager.Submission(), validator, logger),
		summaryHandler:    NewSummaryHandler(serviceManager.Summary(), serviceManager.Export(), logger),
		auth:              auth,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "coursework-service",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Grading callback routes are called by grading services, not users
		grading := v1.Group("/grading")
		{
			grading.POST("/submissions/:id/dispatch", hm.gradingHandler.DispatchSubmission)
			grading.POST("/submissions/:id/result", hm.gradingHandler.SubmitGradingResult)
			grading.POST("/submissions/:id/error", hm.gradingHandler.MarkSubmissionError)
		}

		authed := v1.Group("")
		authed.Use(hm.auth.RequireAuth())
		{
			// Course structure routes
			courses := authed.Group("/courses")
			{
				courses.GET("/:id", hm.courseHandler.GetInstance)
				courses.POST("", hm.auth.RequireStaff(), hm.courseHandler.CreateInstance)
			}

			modules := authed.Group("/modules")
			{
				modules.GET("/:id", hm.courseHandler.GetModule)
				modules.POST("", hm.auth.RequireStaff(), hm.courseHandler.CreateModule)
			}

			categories := authed.Group("/categories")
			{
				categories.GET("/:id", hm.courseHandler.GetCategory)
				categories.POST("", hm.auth.RequireStaff(), hm.courseHandler.CreateCategory)
				categories.PUT("/:id/hidden", hm.auth.RequireStaff(), hm.courseHandler.SetCategoryHidden)
			}

			// Exercise routes
			exercises := authed.Group("/exercises")
			{
				exercises.GET("", hm.exerciseHandler.ListExercises)
				exercises.GET("/:id", hm.exerciseHandler.GetExercise)
				exercises.GET("/:id/open", hm.exerciseHandler.IsOpen)
				exercises.GET("/:id/can-submit", hm.exerciseHandler.CheckSubmissionAllowed)
				exercises.GET("/:id/best-submission", hm.exerciseHandler.GetBestSubmission)
				exercises.POST("", hm.auth.RequireStaff(), hm.exerciseHandler.CreateExercise)
				exercises.GET("/:id/stats", hm.auth.RequireStaff(), hm.exerciseHandler.GetStats)
			}

			// Submission routes
			submissions := authed.Group("/submissions")
			{
				submissions.POST("", hm.submissionHandler.CreateSubmission)
				submissions.GET("/:id", hm.submissionHandler.GetSubmission)
				submissions.GET("/exercise/:exercise_id", hm.submissionHandler.ListOwnSubmissions)
			}

			// Deadline deviation routes
			deviations := authed.Group("/deviations")
			deviations.Use(hm.auth.RequireStaff())
			{
				deviations.POST("", hm.submissionHandler.CreateDeviation)
				deviations.DELETE("/:id", hm.submissionHandler.DeleteDeviation)
				deviations.GET("/exercise/:exercise_id", hm.submissionHandler.ListDeviations)
			}

			// Summary routes
			summaries := authed.Group("/summaries")
			{
				summaries.GET("/:instance_id", hm.summaryHandler.GetOwnSummary)
				summaries.GET("/:instance_id/users/:user_id", hm.auth.RequireStaff(), hm.summaryHandler.GetUserSummary)
				summaries.GET("/:instance_id/users/:user_id/export", hm.auth.RequireStaff(), hm.summaryHandler.ExportUserResults)
			}
		}
	}
}
