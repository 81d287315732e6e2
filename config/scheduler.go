// config/scheduler.go
package config

import (
	"log/slog"
	"os"
	"time"
)

// Timezone is the fixed zone every schedule computation runs in. Reminder
// times must not drift with the server locale.
var Timezone *time.Location

func InitTimezone() {
	name := os.Getenv("TIMEZONE")
	if name == "" {
		name = "Asia/Jakarta"
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Error("invalid TIMEZONE value", "timezone", name, "error", err)
		os.Exit(1)
	}

	Timezone = loc
	slog.Info("scheduler timezone configured", "timezone", name)
}
