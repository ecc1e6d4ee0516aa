package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rokotuskortti/vaccination-erecord/internal/config"
)

func TestSendRejectsIncompleteMessage(t *testing.T) {
	service := NewService(config.EmailConfig{
		SMTPHost: "localhost",
		SMTPPort: "2525",
		From:     "noreply@rokotuskortti.com",
	})

	tests := []struct {
		name string
		msg  Message
	}{
		{"no recipient", Message{Subject: "s", Text: "t"}},
		{"no subject", Message{To: "a@example.com", Text: "t"}},
		{"no body", Message{To: "a@example.com", Subject: "s"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := service.Send(context.Background(), tc.msg)
			assert.Error(t, err)
		})
	}
}
