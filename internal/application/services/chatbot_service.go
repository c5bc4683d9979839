package services

import (
	"strings"
	"unicode"
)

// ChatReply is the chatbot's answer with quick-reply button labels
type ChatReply struct {
	Message string   `json:"message"`
	Options []string `json:"options"`
}

type chatRule struct {
	name     string
	keywords []string
	reply    ChatReply
}

var mainMenu = []string{"Book a stay", "Payments", "Cancellations", "Become a host", "Talk to a human"}

var greetingReply = ChatReply{
	Message: "Hi, I'm Sara! I can help with bookings, payments, cancellations and hosting. What do you need?",
	Options: mainMenu,
}

var fallbackReply = ChatReply{
	Message: "I'm not sure I understood. Here are some things I can help with:",
	Options: mainMenu,
}

// Rules are checked in order; the first rule with a matching keyword wins.
var chatRules = []chatRule{
	{
		name:     "support",
		keywords: []string{"human", "agent", "support", "contact", "speak to someone", "talk to someone"},
		reply: ChatReply{
			Message: "I'll connect you with our support team. You can also email support@vacationrentals.example and we'll reply within 24 hours.",
			Options: []string{"Email support", "Back to menu"},
		},
	},
	{
		name:     "cancellation",
		keywords: []string{"cancel", "cancellation", "cancelled", "canceled"},
		reply: ChatReply{
			Message: "You can cancel a confirmed booking from My Bookings. Any payment already taken is refunded to the original payment method.",
			Options: []string{"View my bookings", "Refund policy", "Talk to a human"},
		},
	},
	{
		name:     "refund",
		keywords: []string{"refund", "refunds", "money back"},
		reply: ChatReply{
			Message: "Refunds are issued to the original payment method once a booking is cancelled or a host approves a partial refund. They usually arrive in 5-10 business days.",
			Options: []string{"View my payments", "Talk to a human"},
		},
	},
	{
		name:     "payment",
		keywords: []string{"payment", "payments", "pay", "paid", "card", "paypal", "bank transfer"},
		reply: ChatReply{
			Message: "We accept credit cards, PayPal and bank transfers. Card and PayPal payments are confirmed instantly; bank transfers are confirmed once received.",
			Options: []string{"View my payments", "Refunds", "Talk to a human"},
		},
	},
	{
		name:     "booking",
		keywords: []string{"booking", "bookings", "book", "reserve", "reservation", "stay"},
		reply: ChatReply{
			Message: "To book, open a property, pick your dates and number of guests, and send a request. The host confirms or declines it, and you'll get a notification either way.",
			Options: []string{"Search properties", "View my bookings", "Cancellations"},
		},
	},
	{
		name:     "checkin",
		keywords: []string{"check-in", "check in", "checkin", "check-out", "check out", "checkout"},
		reply: ChatReply{
			Message: "Check-in and check-out times are set by each host and shown on the property page. Your host shares arrival details once the booking is confirmed.",
			Options: []string{"View my bookings", "Talk to a human"},
		},
	},
	{
		name:     "price",
		keywords: []string{"price", "prices", "cost", "costs", "how much", "fee", "fees"},
		reply: ChatReply{
			Message: "Each night is priced by the host, and some dates may have special rates. Pick your dates on a property to see the full nightly breakdown and total before you book.",
			Options: []string{"Search properties", "Book a stay"},
		},
	},
	{
		name:     "host",
		keywords: []string{"host", "hosting", "list my property", "list my home", "become a host"},
		reply: ChatReply{
			Message: "Listing your place is free. Create a host account, add your property details, photos and nightly price, then manage availability from your calendar.",
			Options: []string{"Become a host", "Talk to a human"},
		},
	},
	{
		name:     "greeting",
		keywords: []string{"hi", "hello", "hey", "good morning", "good evening"},
		reply:    greetingReply,
	},
	{
		name:     "thanks",
		keywords: []string{"thanks", "thank you", "thx", "cheers"},
		reply: ChatReply{
			Message: "You're welcome! Is there anything else I can help with?",
			Options: mainMenu,
		},
	},
}

// ChatbotService is the rule-based assistant "Sara"
type ChatbotService struct {
	rules []chatRule
}

// NewChatbotService creates the chatbot with its built-in rules
func NewChatbotService() *ChatbotService {
	return &ChatbotService{rules: chatRules}
}

// Reply picks the canned answer for message
func (s *ChatbotService) Reply(message string) ChatReply {
	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return greetingReply
	}

	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	}) {
		words[w] = struct{}{}
	}

	for _, rule := range s.rules {
		for _, kw := range rule.keywords {
			if matchesKeyword(text, words, kw) {
				return rule.reply
			}
		}
	}
	return fallbackReply
}

// Single words must match a whole word; phrases match anywhere in the text.
func matchesKeyword(text string, words map[string]struct{}, keyword string) bool {
	if strings.ContainsAny(keyword, " -") {
		return strings.Contains(text, keyword)
	}
	_, ok := words[keyword]
	return ok
}
