// internal/handlers/webhook_handler.go
package handlers

import (
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"

	"github.com/farhanpermana/react-event-reminder/internal/bot"
)

// TelegramWebhookHandler receives updates pushed by Telegram. It always
// answers 200: any other status makes Telegram redeliver the update and the
// failure is better handled on our side.
func TelegramWebhookHandler(h *bot.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h == nil {
			c.Status(http.StatusOK)
			return
		}

		var update tgbotapi.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			c.Status(http.StatusOK)
			return
		}

		h.HandleUpdate(update)
		c.Status(http.StatusOK)
	}
}
