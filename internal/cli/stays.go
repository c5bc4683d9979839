package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zatekoja/vacationrentals/internal/adapters/database"
	"github.com/zatekoja/vacationrentals/internal/adapters/events"
	"github.com/zatekoja/vacationrentals/internal/application/services"
	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/providers"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/clients/redis"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/notifications"
	"github.com/zatekoja/vacationrentals/pkg/validation"
)

var flagAt string

func newCompleteStaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete-stays",
		Short: "Complete confirmed bookings whose stay has ended",
		Long:  "Move every CONFIRMED booking with a past check-out date to COMPLETED and notify its guest.",
		Args:  cobra.NoArgs,
		RunE:  runCompleteStays,
	}
	cmd.Flags().StringVar(&flagAt, "at", "", "treat this date (YYYY-MM-DD) as today")
	return cmd
}

// parseAt returns the reference time for completion; empty means now
func parseAt(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now, nil
	}
	t, err := entities.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: expected YYYY-MM-DD", raw)
	}
	return t, nil
}

func runCompleteStays(cmd *cobra.Command, args []string) error {
	at, err := parseAt(flagAt, time.Now())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(client)

	// Notifications still reach open streams when Redis is up
	var eventBus providers.EventBus
	if redisClient, err := redis.NewClient(&cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; notifications are stored but not published")
	} else {
		defer redisClient.Close()
		eventBus = events.NewRedisEventBus(redisClient)
		defer eventBus.Close()
	}

	validator := validation.New()
	bookingAdapter := database.NewBookingAdapter(client)
	propertyAdapter := database.NewPropertyAdapter(client)

	bookingService := services.NewBookingService(
		bookingAdapter,
		propertyAdapter,
		services.NewAvailabilityService(propertyAdapter, database.NewCalendarAdapter(client), bookingAdapter, validator),
		services.NewNotificationService(database.NewNotificationAdapter(client), eventBus, validator),
		services.NewEmailService(notifications.NewSender(&cfg.Email), database.NewUserAdapter(client)),
		nil,
		validator,
	)

	completed, err := bookingService.CompleteEndedStays(cmd.Context(), at)
	if err != nil {
		return err
	}

	return report(cmd.OutOrStdout(), map[string]interface{}{
		"completed": completed,
		"at":        at.Format(entities.DateLayout),
	}, fmt.Sprintf("%d stays completed.", completed))
}
