package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/vacationrentals/internal/application/services"
)

func TestChatbotService_Reply(t *testing.T) {
	bot := services.NewChatbotService()

	tests := []struct {
		name     string
		message  string
		contains string
	}{
		{"empty greets", "   ", "I'm Sara"},
		{"greeting", "Hello there", "I'm Sara"},
		{"booking", "How do I book a place?", "pick your dates"},
		{"cancellation wins over booking", "I want to cancel my booking", "cancel a confirmed booking"},
		{"refund", "When do I get my refund", "original payment method"},
		{"payment", "Can I pay with PayPal?", "We accept credit cards"},
		{"phrase keyword", "what time is check-in", "Check-in and check-out"},
		{"price phrase", "How much does it cost", "priced by the host"},
		{"hosting", "I'd like to become a host", "Listing your place is free"},
		{"support first", "Let me talk to someone about my payment", "support team"},
		{"thanks", "thanks!", "You're welcome"},
		{"whole words only", "this is a shipment question", "I'm not sure I understood"},
		{"unknown", "blorp", "I'm not sure I understood"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := bot.Reply(tt.message)
			assert.Contains(t, reply.Message, tt.contains)
			assert.NotEmpty(t, reply.Options)
		})
	}
}
