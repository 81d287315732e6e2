// internal/bot/random.go
package bot

import "github.com/brianvoe/gofakeit/v7"

// Profile fields the conversation never asks for are filled with generated
// placeholders so the created record is complete. Administrators can correct
// them later through the API.

func randomFullName() string {
	return gofakeit.Name()
}

func randomPhoneNumber() string {
	return gofakeit.Phone()
}
