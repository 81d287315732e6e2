// internal/notify/template.go

package notify

import (
	"bytes"
	"html/template"
)

type reminderEmailData struct {
	UserName    string
	Title       string
	Message     string
	CompanyName string
}

var reminderEmailTemplate = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; }
        .footer { color: #7f8c8d; font-size: 0.8em; }
    </style>
</head>
<body>
    <div class="header">
        <h2>{{.Title}}</h2>
    </div>
    <p>Hello {{.UserName}},</p>
    <p>{{.Message}}</p>
    <div class="footer">
        <p>Best regards,<br>{{.CompanyName}}</p>
    </div>
</body>
</html>
`))

func renderReminderEmail(data reminderEmailData) (string, error) {
	var buf bytes.Buffer
	if err := reminderEmailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
