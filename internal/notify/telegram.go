// internal/notify/telegram.go

package notify

import (
	"errors"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"
)

// ChatAPI is the slice of the Telegram bot API the sender needs.
type ChatAPI interface {
	SendMessage(chatID int64, text string) error
	// ChatExists probes the chat before a send to a named recipient.
	ChatExists(chatID int64) error
}

// BotAPI adapts tgbotapi.BotAPI to ChatAPI.
type BotAPI struct {
	Bot *tgbotapi.BotAPI
}

func (a *BotAPI) SendMessage(chatID int64, text string) error {
	_, err := a.Bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (a *BotAPI) ChatExists(chatID int64) error {
	_, err := a.Bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	return err
}

// TelegramSender delivers reminder content over the chat platform.
type TelegramSender struct {
	API   ChatAPI
	Users UserDirectory
}

// SendToUser delivers to a single named recipient. A missing, inactive or
// unlinked recipient is a logged no-op, not an error: the result is nil.
func (s *TelegramSender) SendToUser(username, content string) (*DeliveryResult, error) {
	user, err := s.Users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("telegram send skipped: user not found", "username", username)
			return nil, nil
		}
		return nil, err
	}
	if !user.Active() {
		slog.Warn("telegram send skipped: user inactive", "username", username)
		return nil, nil
	}

	telegramID, ok := user.TelegramID()
	if !ok {
		slog.Warn("telegram send skipped: user has no telegram id", "username", username)
		return nil, nil
	}

	if err := s.API.ChatExists(telegramID); err != nil {
		slog.Warn("telegram send skipped: chat unreachable", "username", username, "telegramId", telegramID, "error", err)
		return nil, nil
	}

	if err := s.API.SendMessage(telegramID, content); err != nil {
		slog.Error("failed to send telegram message", "username", username, "telegramId", telegramID, "error", err)
		return &DeliveryResult{UserID: user.ID, Username: user.Username, Status: StatusFailed, Error: err.Error()}, nil
	}

	slog.Info("telegram message delivered", "username", username, "telegramId", telegramID)
	return &DeliveryResult{UserID: user.ID, Username: user.Username, Status: StatusSuccess}, nil
}

// SendToAll delivers to every active user with a linked chat identity.
// Individual failures are collected, never propagated: one bad recipient must
// not block the rest.
func (s *TelegramSender) SendToAll(content string) []DeliveryResult {
	users, err := s.Users.ListActiveWithTelegram()
	if err != nil {
		slog.Error("failed to load telegram recipients", "error", err)
		return nil
	}
	if len(users) == 0 {
		slog.Warn("no active users with telegram ids found")
		return []DeliveryResult{}
	}

	results := make([]DeliveryResult, 0, len(users))
	for i := range users {
		user := &users[i]
		telegramID, ok := user.TelegramID()
		if !ok {
			// The directory filters on the JSON path, but the bag may still be malformed.
			slog.Warn("skipping recipient with unreadable telegram id", "username", user.Username)
			continue
		}

		if err := s.API.SendMessage(telegramID, content); err != nil {
			slog.Error("failed to send telegram message", "username", user.Username, "error", err)
			results = append(results, DeliveryResult{UserID: user.ID, Username: user.Username, Status: StatusFailed, Error: err.Error()})
			continue
		}
		results = append(results, DeliveryResult{UserID: user.ID, Username: user.Username, Status: StatusSuccess})
	}

	return results
}
