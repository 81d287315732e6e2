// internal/routes/api_routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/farhanpermana/react-event-reminder/internal/handlers"
)

// RegisterAPIRoutes registers every /api route group.
func RegisterAPIRoutes(r *gin.Engine, deps Deps) {
	apiGroup := r.Group("/api")
	{
		users := apiGroup.Group("/users")
		{
			users.GET("", handlers.ListUsersHandler)
			users.GET("/:id", handlers.GetUserHandler)
			users.GET("/by-telegram/:telegramId", handlers.GetUserByTelegramHandler)
			users.POST("", handlers.CreateUserHandler)
			users.PUT("/:id", handlers.UpdateUserHandler)
			users.DELETE("/:id", handlers.DeleteUserHandler)
		}

		courses := apiGroup.Group("/courses")
		{
			courses.GET("", handlers.ListCoursesHandler)
			courses.GET("/:id", handlers.GetCourseHandler)
			courses.POST("", handlers.CreateCourseHandler)
			courses.PUT("/:id", handlers.UpdateCourseHandler)
			courses.DELETE("/:id", handlers.DeleteCourseHandler)
		}

		tryoutSections := apiGroup.Group("/tryout-sections")
		{
			tryoutSections.GET("", handlers.ListTryoutSectionsHandler)
			tryoutSections.GET("/:id", handlers.GetTryoutSectionHandler)
			tryoutSections.POST("", handlers.CreateTryoutSectionHandler)
			tryoutSections.PUT("/:id", handlers.UpdateTryoutSectionHandler)
			tryoutSections.DELETE("/:id", handlers.DeleteTryoutSectionHandler)
		}

		broadcasts := apiGroup.Group("/broadcasts")
		{
			broadcasts.GET("", handlers.ListBroadcastsHandler)
			broadcasts.GET("/export", handlers.ExportBroadcastsHandler)
			broadcasts.GET("/scheduler/status", handlers.SchedulerStatusHandler(deps.Scheduler))
			broadcasts.GET("/:id", handlers.GetBroadcastHandler)
			broadcasts.GET("/:id/next-reminder", handlers.NextReminderHandler(deps.Scheduler))
			broadcasts.POST("/sync", handlers.SyncBroadcastsHandler(deps.Sheets, deps.Scheduler))
			broadcasts.POST("/:id/execute", handlers.ExecuteBroadcastHandler(deps.Scheduler))
			broadcasts.POST("/test-telegram", handlers.TestTelegramHandler(deps.Telegram))
		}
	}
}
