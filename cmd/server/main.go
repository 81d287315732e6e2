// cmd/server/main.go
package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/farhanpermana/react-event-reminder/config"
	"github.com/farhanpermana/react-event-reminder/internal/bot"
	"github.com/farhanpermana/react-event-reminder/internal/notify"
	"github.com/farhanpermana/react-event-reminder/internal/routes"
	"github.com/farhanpermana/react-event-reminder/internal/scheduler"
	"github.com/farhanpermana/react-event-reminder/internal/sheets"
	"github.com/farhanpermana/react-event-reminder/models"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}

	config.InitTimezone()
	config.ConnectDB()
	config.ConnectRedis()
	config.InitTelegram()
	config.InitMailer()

	err := config.DB.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.TryoutSection{},
		&models.Broadcast{},
	)
	if err != nil {
		slog.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	var sheetSvc *sheets.Service
	if err := config.InitSheets(); err != nil {
		slog.Warn("Google Sheets integration disabled", "error", err)
	} else {
		sheetSvc = sheets.NewService(config.SheetsAPI, config.DB)
	}

	directory := &notify.GormDirectory{DB: config.DB}
	marker := &notify.GormMarker{DB: config.DB}

	var chatAPI notify.ChatAPI
	var telegramChannel notify.TelegramChannel
	if config.Bot != nil {
		api := &notify.BotAPI{Bot: config.Bot}
		chatAPI = api
		telegramChannel = &notify.TelegramSender{API: api, Users: directory}
	}

	var emailChannel notify.EmailChannel
	if config.Mailer != nil {
		emailChannel = &notify.EmailSender{
			Transport:   &notify.GomailTransport{Dialer: config.Mailer, From: config.EmailFrom},
			Users:       directory,
			CompanyName: companyName(),
		}
	}

	dispatcher := notify.NewDispatcher(telegramChannel, emailChannel, marker)

	var syncer scheduler.Syncer
	if sheetSvc != nil {
		syncer = sheetSvc
	}
	sched := scheduler.New(
		&scheduler.GormStore{DB: config.DB},
		&scheduler.GormReferences{DB: config.DB},
		dispatcher,
		syncer,
		config.Timezone,
	)
	if err := sched.Init(); err != nil {
		slog.Error("failed to build reminder jobs", "error", err)
	}
	defer sched.Stop()

	var botHandler *bot.Handler
	if config.Bot != nil {
		botHandler = bot.New(config.Bot, config.DB, bot.NewPendingStore(config.RDB))
	}

	r := gin.Default()
	routes.SetupRoutes(r, routes.Deps{
		Bot:       botHandler,
		Scheduler: sched,
		Sheets:    sheetSvc,
		Telegram:  chatAPI,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func companyName() string {
	if name := os.Getenv("COMPANY_NAME"); name != "" {
		return name
	}
	return "Course Reminder"
}
