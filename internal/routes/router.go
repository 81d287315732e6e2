// internal/routes/router.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farhanpermana/react-event-reminder/internal/bot"
	"github.com/farhanpermana/react-event-reminder/internal/handlers"
	"github.com/farhanpermana/react-event-reminder/internal/notify"
	"github.com/farhanpermana/react-event-reminder/internal/scheduler"
	"github.com/farhanpermana/react-event-reminder/internal/sheets"
)

// Deps carries the wired services the route handlers close over. Bot, Sheets
// and Telegram may be nil when the corresponding integration is not
// configured; the handlers degrade gracefully.
type Deps struct {
	Bot       *bot.Handler
	Scheduler *scheduler.Scheduler
	Sheets    *sheets.Service
	Telegram  notify.ChatAPI
}

// SetupRoutes wires every route of the application onto the engine.
func SetupRoutes(r *gin.Engine, deps Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Telegram pushes updates here; registered as the webhook path on startup.
	r.POST("/telegram-bot", handlers.TelegramWebhookHandler(deps.Bot))

	RegisterAPIRoutes(r, deps)
}
