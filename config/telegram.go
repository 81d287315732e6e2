// config/telegram.go
package config

import (
	"log/slog"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var Bot *tgbotapi.BotAPI

// InitTelegram connects the bot API and, when WEBHOOK_URL is set, registers
// the webhook so Telegram pushes updates to POST /telegram-bot.
func InitTelegram() {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		slog.Warn("TELEGRAM_BOT_TOKEN is not set, telegram delivery and the bot are disabled")
		return
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		slog.Error("failed to connect to the Telegram bot API", "error", err)
		os.Exit(1)
	}
	Bot = bot
	slog.Info("telegram bot authorized", "username", bot.Self.UserName)

	webhookURL := os.Getenv("WEBHOOK_URL")
	if webhookURL == "" {
		slog.Warn("WEBHOOK_URL is not set, telegram webhook was not registered")
		return
	}

	wh, err := tgbotapi.NewWebhook(webhookURL + "/telegram-bot")
	if err != nil {
		slog.Error("invalid WEBHOOK_URL", "error", err)
		os.Exit(1)
	}
	if _, err := bot.Request(wh); err != nil {
		slog.Error("failed to register telegram webhook", "error", err)
		os.Exit(1)
	}
	slog.Info("telegram webhook registered", "url", webhookURL+"/telegram-bot")
}
