// internal/bot/bot.go

// Package bot implements the Telegram registration conversation. Updates
// arrive through the webhook handler and are routed by command here.
package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"github.com/farhanpermana/react-event-reminder/models"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Sender is the outbound half of the Telegram API the handler needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handler struct {
	Sender  Sender
	DB      *gorm.DB
	Pending PendingStore
}

func New(sender Sender, db *gorm.DB, pending PendingStore) *Handler {
	return &Handler{Sender: sender, DB: db, Pending: pending}
}

// HandleUpdate routes one webhook update. Errors are logged, never returned:
// Telegram retries on non-200 responses and a retry storm helps nobody.
func (h *Handler) HandleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "/start":
		h.reply(msg.Chat.ID, "Welcome! Use /register to link this chat to your account, or /help for the command list.")
	case text == "/help":
		h.reply(msg.Chat.ID, "Commands:\n/register <name> - create an account linked to this chat\n/help - show this message")
	case text == "/register" || strings.HasPrefix(text, "/register "):
		h.handleRegister(msg, strings.TrimSpace(strings.TrimPrefix(text, "/register")))
	default:
		h.handleFreeText(msg)
	}
}

// handleRegister opens a registration conversation. The desired username may
// be passed as an argument ("/register alice"); without one the Telegram
// username is used.
func (h *Handler) handleRegister(msg *tgbotapi.Message, requested string) {
	telegramID := msg.From.ID

	existing, err := models.FindUserByTelegramID(h.DB, telegramID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Error("failed to look up telegram user", "telegramId", telegramID, "error", err)
		h.reply(msg.Chat.ID, "Something went wrong, please try again later.")
		return
	}
	if existing != nil {
		h.reply(msg.Chat.ID, fmt.Sprintf("This chat is already linked to the account %q.", existing.Username))
		return
	}

	username := requested
	if username == "" {
		username = msg.From.UserName
	}
	if username == "" {
		h.reply(msg.Chat.ID, "Your Telegram account has no username. Use /register <name> or set a username in Telegram settings.")
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		slog.Error("failed to check username", "username", username, "error", err)
		h.reply(msg.Chat.ID, "Something went wrong, please try again later.")
		return
	}
	if count > 0 {
		h.reply(msg.Chat.ID, fmt.Sprintf("The username %q is already taken. Contact an administrator to link this chat.", username))
		return
	}

	pending := PendingRegistration{
		Username:             username,
		GeneratedFullName:    randomFullName(),
		GeneratedPhoneNumber: randomPhoneNumber(),
	}
	if err := h.Pending.Set(telegramID, pending); err != nil {
		slog.Error("failed to store pending registration", "telegramId", telegramID, "error", err)
		h.reply(msg.Chat.ID, "Something went wrong, please try again later.")
		return
	}

	h.reply(msg.Chat.ID, "Almost done! Reply with your email address to finish registration.")
}

func (h *Handler) handleFreeText(msg *tgbotapi.Message) {
	telegramID := msg.From.ID

	pending, err := h.Pending.Get(telegramID)
	if err != nil {
		slog.Error("failed to load pending registration", "telegramId", telegramID, "error", err)
		return
	}
	if pending == nil {
		registered, err := models.FindUserByTelegramID(h.DB, telegramID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("failed to look up telegram user", "telegramId", telegramID, "error", err)
			return
		}
		if registered != nil {
			h.reply(msg.Chat.ID, fmt.Sprintf("Hi %s! You are registered and will receive reminders here. Use /help for the command list.", registered.FullName))
			return
		}
		h.reply(msg.Chat.ID, "I did not understand that. Use /register to create an account, or /help for the command list.")
		return
	}

	email := strings.TrimSpace(msg.Text)
	if !emailRe.MatchString(email) {
		h.reply(msg.Chat.ID, "That does not look like an email address. Please try again.")
		return
	}

	// Re-check conflicts: the pending entry may have outlived a change made
	// through the API in the meantime.
	existing, err := models.FindUserByTelegramID(h.DB, telegramID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Error("failed to look up telegram user", "telegramId", telegramID, "error", err)
		h.reply(msg.Chat.ID, "Something went wrong, please try again later.")
		return
	}
	if existing != nil {
		_ = h.Pending.Delete(telegramID)
		h.reply(msg.Chat.ID, fmt.Sprintf("This chat is already linked to the account %q.", existing.Username))
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("username = ?", pending.Username).Count(&count).Error; err != nil {
		slog.Error("failed to check username", "username", pending.Username, "error", err)
		h.reply(msg.Chat.ID, "Something went wrong, please try again later.")
		return
	}
	if count > 0 {
		_ = h.Pending.Delete(telegramID)
		h.reply(msg.Chat.ID, fmt.Sprintf("The username %q is already taken. Contact an administrator to link this chat.", pending.Username))
		return
	}

	user := models.User{
		Username:    pending.Username,
		Email:       email,
		FullName:    pending.GeneratedFullName,
		PhoneNumber: pending.GeneratedPhoneNumber,
	}
	if err := user.SetTelegramID(telegramID); err != nil {
		slog.Error("failed to encode telegram id", "telegramId", telegramID, "error", err)
		h.reply(msg.Chat.ID, "Something went wrong, please try again later.")
		return
	}
	if err := h.DB.Create(&user).Error; err != nil {
		slog.Error("failed to create user from telegram", "username", user.Username, "error", err)
		h.reply(msg.Chat.ID, "Something went wrong, please try again later.")
		return
	}

	if err := h.Pending.Delete(telegramID); err != nil {
		slog.Warn("failed to clear pending registration", "telegramId", telegramID, "error", err)
	}

	h.reply(msg.Chat.ID, fmt.Sprintf("You are all set, %s! Reminders will be delivered to this chat.", user.FullName))
}

func (h *Handler) reply(chatID int64, text string) {
	if _, err := h.Sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Error("failed to send telegram reply", "chatId", chatID, "error", err)
	}
}
