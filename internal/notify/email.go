// internal/notify/email.go

package notify

import (
	"errors"
	"log/slog"

	gomail "gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// MailTransport sends one rendered HTML message.
type MailTransport interface {
	Send(to, subject, html string) error
}

// GomailTransport is the SMTP-backed transport.
type GomailTransport struct {
	Dialer *gomail.Dialer
	From   string
}

func (t *GomailTransport) Send(to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", t.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)
	return t.Dialer.DialAndSend(m)
}

// EmailSender delivers reminder content over SMTP with the HTML template.
type EmailSender struct {
	Transport   MailTransport
	Users       UserDirectory
	CompanyName string
}

// SendToUser delivers to a single named recipient. Absent or inactive
// recipients are a logged no-op.
func (s *EmailSender) SendToUser(username, subject, content string) (*DeliveryResult, error) {
	user, err := s.Users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("email send skipped: user not found", "username", username)
			return nil, nil
		}
		return nil, err
	}
	if !user.Active() || user.Email == "" {
		slog.Warn("email send skipped: user inactive or without address", "username", username)
		return nil, nil
	}

	html, err := renderReminderEmail(reminderEmailData{
		UserName:    user.FullName,
		Title:       subject,
		Message:     content,
		CompanyName: s.CompanyName,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Transport.Send(user.Email, subject, html); err != nil {
		slog.Error("failed to send email", "username", username, "email", user.Email, "error", err)
		return &DeliveryResult{UserID: user.ID, Username: user.Username, Status: StatusFailed, Error: err.Error()}, nil
	}

	slog.Info("email delivered", "username", username, "email", user.Email)
	return &DeliveryResult{UserID: user.ID, Username: user.Username, Status: StatusSuccess}, nil
}

// SendToAll delivers to every active user. Individual failures are collected
// into the result list and never abort the batch.
func (s *EmailSender) SendToAll(subject, content string) []DeliveryResult {
	users, err := s.Users.ListActive()
	if err != nil {
		slog.Error("failed to load email recipients", "error", err)
		return nil
	}

	results := make([]DeliveryResult, 0, len(users))
	for i := range users {
		user := &users[i]
		if user.Email == "" {
			slog.Warn("skipping recipient without email address", "username", user.Username)
			continue
		}

		html, err := renderReminderEmail(reminderEmailData{
			UserName:    user.FullName,
			Title:       subject,
			Message:     content,
			CompanyName: s.CompanyName,
		})
		if err != nil {
			results = append(results, DeliveryResult{UserID: user.ID, Username: user.Username, Status: StatusFailed, Error: err.Error()})
			continue
		}

		if err := s.Transport.Send(user.Email, subject, html); err != nil {
			slog.Error("failed to send email", "username", user.Username, "error", err)
			results = append(results, DeliveryResult{UserID: user.ID, Username: user.Username, Status: StatusFailed, Error: err.Error()})
			continue
		}
		results = append(results, DeliveryResult{UserID: user.ID, Username: user.Username, Status: StatusSuccess})
	}

	return results
}
