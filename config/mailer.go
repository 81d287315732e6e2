// config/mailer.go
package config

import (
	"log/slog"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"
)

var (
	Mailer    *gomail.Dialer
	EmailFrom string
)

func InitMailer() {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		slog.Warn("SMTP_HOST is not set, email delivery is disabled")
		return
	}

	port := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			slog.Error("invalid SMTP_PORT value", "port", portStr, "error", err)
			os.Exit(1)
		}
		port = p
	}

	Mailer = gomail.NewDialer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASSWORD"))
	EmailFrom = os.Getenv("EMAIL_FROM")
	if EmailFrom == "" {
		EmailFrom = os.Getenv("SMTP_USER")
	}

	slog.Info("SMTP mailer configured", "host", host, "port", port)
}
