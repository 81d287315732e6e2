// internal/notify/dispatcher.go

// Package notify delivers broadcast content to recipients over Telegram or
// SMTP and records the attempt.
package notify

import (
	"log/slog"
	"time"

	"github.com/farhanpermana/react-event-reminder/models"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// DeliveryResult is the per-recipient outcome of a dispatch.
type DeliveryResult struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// DispatchResult aggregates one firing of one broadcast.
type DispatchResult struct {
	BroadcastID uint             `json:"broadcastId"`
	Deliveries  []DeliveryResult `json:"deliveries"`
}

// UserDirectory is the read surface the senders need over the user table.
type UserDirectory interface {
	FindByUsername(username string) (*models.User, error)
	ListActiveWithTelegram() ([]models.User, error)
	ListActive() ([]models.User, error)
}

// ExecutionMarker records that a dispatch was attempted. It is a "was
// attempted" marker, not a "fully succeeded" one.
type ExecutionMarker interface {
	MarkExecuted(broadcastID uint, at time.Time) error
}

// TelegramChannel and EmailChannel exist so the dispatcher can be exercised
// with fakes.
type TelegramChannel interface {
	SendToUser(username, content string) (*DeliveryResult, error)
	SendToAll(content string) []DeliveryResult
}

type EmailChannel interface {
	SendToUser(username, subject, content string) (*DeliveryResult, error)
	SendToAll(subject, content string) []DeliveryResult
}

type Dispatcher struct {
	telegram TelegramChannel
	email    EmailChannel
	marker   ExecutionMarker
}

func NewDispatcher(telegram TelegramChannel, email EmailChannel, marker ExecutionMarker) *Dispatcher {
	return &Dispatcher{telegram: telegram, email: email, marker: marker}
}

// Dispatch sends a broadcast to its audience: the named user when Username is
// set, otherwise all matching active users. LastExecuted is stamped after the
// attempt regardless of how many recipients succeeded.
func (d *Dispatcher) Dispatch(b *models.Broadcast) (*DispatchResult, error) {
	slog.Info("executing reminder", "broadcast", b.ID, "code", b.Code, "type", b.Type)
	result := &DispatchResult{BroadcastID: b.ID}

	switch b.Type {
	case models.BroadcastTelegram:
		if d.telegram == nil {
			slog.Warn("telegram channel is not configured", "broadcast", b.ID)
			break
		}
		if b.Username != nil && *b.Username != "" {
			r, err := d.telegram.SendToUser(*b.Username, b.Content)
			if err != nil {
				return nil, err
			}
			if r != nil {
				result.Deliveries = append(result.Deliveries, *r)
			}
		} else {
			result.Deliveries = d.telegram.SendToAll(b.Content)
		}

	case models.BroadcastEmail:
		if d.email == nil {
			slog.Warn("email channel is not configured", "broadcast", b.ID)
			break
		}
		subject := "Course Reminder: " + b.Code
		if b.Username != nil && *b.Username != "" {
			r, err := d.email.SendToUser(*b.Username, subject, b.Content)
			if err != nil {
				return nil, err
			}
			if r != nil {
				result.Deliveries = append(result.Deliveries, *r)
			}
		} else {
			result.Deliveries = d.email.SendToAll(subject, b.Content)
		}

	default:
		slog.Warn("unknown broadcast type", "broadcast", b.ID, "type", b.Type)
	}

	if err := d.marker.MarkExecuted(b.ID, time.Now()); err != nil {
		slog.Error("failed to update lastExecuted", "broadcast", b.ID, "error", err)
	}

	slog.Info("reminder executed", "broadcast", b.ID, "code", b.Code, "deliveries", len(result.Deliveries))
	return result, nil
}
