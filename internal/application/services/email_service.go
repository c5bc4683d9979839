package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/providers"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
)

// EmailTemplate is a subject and body with {{placeholder}} markers
type EmailTemplate struct {
	Subject string
	Body    string
}

var emailTemplates = map[entities.NotificationType]EmailTemplate{
	entities.NotificationBookingRequest: {
		Subject: "New booking request for {{property_title}}",
		Body: "Hi {{name}},\n\nYou have a new booking request for {{property_title}} " +
			"from {{check_in}} to {{check_out}} ({{guests}} guests, {{total}} {{currency}}).\n\n" +
			"Please confirm or reject it from your dashboard.",
	},
	entities.NotificationBookingConfirmed: {
		Subject: "Your stay at {{property_title}} is confirmed",
		Body:    "Hi {{name}},\n\nGood news! Your booking at {{property_title}} from {{check_in}} to {{check_out}} is confirmed.",
	},
	entities.NotificationBookingRejected: {
		Subject: "Your booking request for {{property_title}} was declined",
		Body:    "Hi {{name}},\n\nUnfortunately the host declined your request for {{property_title}} from {{check_in}} to {{check_out}}.",
	},
	entities.NotificationBookingCancelled: {
		Subject: "Booking at {{property_title}} cancelled",
		Body:    "Hi {{name}},\n\nThe booking at {{property_title}} from {{check_in}} to {{check_out}} was cancelled.\n\nReason: {{reason}}",
	},
	entities.NotificationBookingCompleted: {
		Subject: "Thanks for staying at {{property_title}}",
		Body:    "Hi {{name}},\n\nWe hope you enjoyed your stay at {{property_title}}. Your booking is now complete.",
	},
	entities.NotificationPaymentReceived: {
		Subject: "Payment received",
		Body:    "Hi {{name}},\n\nA payment of {{amount}} {{currency}} for booking {{booking_id}} was received.",
	},
	entities.NotificationPaymentFailed: {
		Subject: "Payment failed",
		Body:    "Hi {{name}},\n\nYour payment of {{amount}} {{currency}} for booking {{booking_id}} failed: {{reason}}",
	},
	entities.NotificationPaymentRefunded: {
		Subject: "Refund issued",
		Body:    "Hi {{name}},\n\nA refund of {{amount}} {{currency}} for booking {{booking_id}} has been issued.",
	},
}

// EmailService renders event emails and hands them to an EmailSender
type EmailService struct {
	sender providers.EmailSender
	users  repositories.UserRepository
}

// NewEmailService creates a new email service. A nil sender disables email.
func NewEmailService(sender providers.EmailSender, users repositories.UserRepository) *EmailService {
	return &EmailService{sender: sender, users: users}
}

// SendEvent emails userID about an event. Failures are logged only.
func (s *EmailService) SendEvent(ctx context.Context, userID string, event entities.NotificationType, vars map[string]string) {
	if s == nil || s.sender == nil || userID == "" {
		return
	}
	tpl, ok := emailTemplates[event]
	if !ok {
		return
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("Skipping email: recipient lookup failed")
		return
	}
	if user.Email == "" {
		return
	}

	merged := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		merged[k] = v
	}
	if _, set := merged["name"]; !set {
		merged["name"] = user.Name
	}

	msg := providers.EmailMessage{
		To:      user.Email,
		Subject: renderTemplate(tpl.Subject, merged),
		Body:    renderTemplate(tpl.Body, merged),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("user_id", userID).
			Str("event", string(event)).
			Msg("Failed to send email")
	}
}

// renderTemplate replaces {{key}} markers with vars; unknown markers are left as is.
func renderTemplate(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
