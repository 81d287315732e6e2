// internal/bot/bot_test.go
package bot

import (
	"fmt"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/farhanpermana/react-event-reminder/models"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1].Text
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestHandler(t *testing.T) (*Handler, *fakeSender, *gorm.DB) {
	t.Helper()
	sender := &fakeSender{}
	db := testDB(t)
	h := New(sender, db, NewMemoryPendingStore())
	return h, sender, db
}

func update(telegramID int64, username, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: telegramID, UserName: username},
			Chat: &tgbotapi.Chat{ID: telegramID},
			Text: text,
		},
	}
}

func TestStartAndHelp(t *testing.T) {
	h, sender, _ := newTestHandler(t)

	h.HandleUpdate(update(100, "alice", "/start"))
	assert.Contains(t, sender.lastText(t), "/register")

	h.HandleUpdate(update(100, "alice", "/help"))
	assert.Contains(t, sender.lastText(t), "/register")
}

func TestRegisterFlowCreatesUser(t *testing.T) {
	h, sender, db := newTestHandler(t)

	h.HandleUpdate(update(100, "alice", "/register"))
	assert.Contains(t, sender.lastText(t), "email")

	h.HandleUpdate(update(100, "alice", "alice@example.com"))
	assert.Contains(t, sender.lastText(t), "all set")

	var user models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&user).Error)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.FullName)
	assert.NotEmpty(t, user.PhoneNumber)

	id, ok := user.TelegramID()
	require.True(t, ok)
	assert.EqualValues(t, 100, id)

	// The pending entry is consumed.
	pending, err := h.Pending.Get(100)
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestRegisterWithExplicitName(t *testing.T) {
	h, sender, db := newTestHandler(t)

	// The argument wins over the Telegram username.
	h.HandleUpdate(update(100, "alice", "/register bob"))
	assert.Contains(t, sender.lastText(t), "email")

	h.HandleUpdate(update(100, "alice", "bob@example.com"))
	assert.Contains(t, sender.lastText(t), "all set")

	var user models.User
	require.NoError(t, db.Where("username = ?", "bob").First(&user).Error)
	assert.Equal(t, "bob@example.com", user.Email)
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	h, sender, db := newTestHandler(t)

	h.HandleUpdate(update(100, "alice", "/register"))
	h.HandleUpdate(update(100, "alice", "not-an-email"))
	assert.Contains(t, sender.lastText(t), "does not look like an email")

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)

	// The conversation is still open and a valid reply completes it.
	h.HandleUpdate(update(100, "alice", "alice@example.com"))
	assert.Contains(t, sender.lastText(t), "all set")
}

func TestRegisterAlreadyLinked(t *testing.T) {
	h, sender, db := newTestHandler(t)

	existing := models.User{Username: "alice", Email: "old@example.com"}
	require.NoError(t, existing.SetTelegramID(100))
	require.NoError(t, db.Create(&existing).Error)

	h.HandleUpdate(update(100, "alice-new", "/register"))
	assert.Contains(t, sender.lastText(t), "already linked")
}

func TestRegisterUsernameTaken(t *testing.T) {
	h, sender, db := newTestHandler(t)

	require.NoError(t, db.Create(&models.User{Username: "alice", Email: "a@example.com"}).Error)

	h.HandleUpdate(update(200, "alice", "/register"))
	assert.Contains(t, sender.lastText(t), "already taken")
}

func TestRegisterWithoutTelegramUsername(t *testing.T) {
	h, sender, _ := newTestHandler(t)

	h.HandleUpdate(update(100, "", "/register"))
	assert.Contains(t, sender.lastText(t), "no username")
}

func TestFreeTextWithoutPending(t *testing.T) {
	h, sender, _ := newTestHandler(t)

	h.HandleUpdate(update(100, "alice", "hello bot"))
	assert.Contains(t, sender.lastText(t), "/register")
}

func TestFreeTextFromRegisteredUser(t *testing.T) {
	h, sender, db := newTestHandler(t)

	u := models.User{Username: "alice", Email: "a@example.com", FullName: "Alice A"}
	require.NoError(t, u.SetTelegramID(100))
	require.NoError(t, db.Create(&u).Error)

	h.HandleUpdate(update(100, "alice", "thanks"))
	assert.Contains(t, sender.lastText(t), "Alice A")
	assert.Contains(t, sender.lastText(t), "registered")
}

func TestEmailReplyRechecksUsername(t *testing.T) {
	h, sender, db := newTestHandler(t)

	h.HandleUpdate(update(100, "alice", "/register"))

	// An administrator creates the same username while the conversation waits.
	require.NoError(t, db.Create(&models.User{Username: "alice", Email: "taken@example.com"}).Error)

	h.HandleUpdate(update(100, "alice", "alice@example.com"))
	assert.Contains(t, sender.lastText(t), "already taken")

	pending, err := h.Pending.Get(100)
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestMemoryPendingStoreExpiry(t *testing.T) {
	s := NewMemoryPendingStore()
	require.NoError(t, s.Set(1, PendingRegistration{Username: "bob"}))

	p, err := s.Get(1)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "bob", p.Username)

	// Force expiry instead of sleeping.
	s.mu.Lock()
	entry := s.entries[1]
	entry.expires = time.Now().Add(-time.Second)
	s.entries[1] = entry
	s.mu.Unlock()

	p, err = s.Get(1)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestNilMessageIgnored(t *testing.T) {
	h, sender, _ := newTestHandler(t)
	h.HandleUpdate(tgbotapi.Update{})
	assert.Empty(t, sender.sent)
}
