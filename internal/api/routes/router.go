package routes

import (
	"net/http"

	"github.com/zatekoja/vacationrentals/internal/api/handlers"
	"github.com/zatekoja/vacationrentals/internal/api/middleware"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	propertyHandler     *handlers.PropertyHandler
	availabilityHandler *handlers.AvailabilityHandler
	bookingHandler      *handlers.BookingHandler
	paymentHandler      *handlers.PaymentHandler
	notificationHandler *handlers.NotificationHandler
	sseHandler          *handlers.SSEHandler
	assistantHandler    *handlers.AssistantHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	allowedOrigins  []string
}

// NewRouter creates a new router. cacheMiddleware and metrics may be nil.
func NewRouter(
	propertyHandler *handlers.PropertyHandler,
	availabilityHandler *handlers.AvailabilityHandler,
	bookingHandler *handlers.BookingHandler,
	paymentHandler *handlers.PaymentHandler,
	notificationHandler *handlers.NotificationHandler,
	sseHandler *handlers.SSEHandler,
	assistantHandler *handlers.AssistantHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		propertyHandler:     propertyHandler,
		availabilityHandler: availabilityHandler,
		bookingHandler:      bookingHandler,
		paymentHandler:      paymentHandler,
		notificationHandler: notificationHandler,
		sseHandler:          sseHandler,
		assistantHandler:    assistantHandler,
		cacheMiddleware:     cacheMiddleware,
		metrics:             metrics,
		allowedOrigins:      allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Property endpoints
	r.mux.HandleFunc("GET /api/properties", r.propertyHandler.ListProperties)
	r.mux.HandleFunc("POST /api/properties", r.propertyHandler.CreateProperty)
	r.mux.HandleFunc("GET /api/properties/search", r.propertyHandler.SearchProperties)
	r.mux.HandleFunc("GET /api/properties/{id}", r.propertyHandler.GetProperty)
	r.mux.HandleFunc("PATCH /api/properties/{id}", r.propertyHandler.UpdateProperty)
	r.mux.HandleFunc("DELETE /api/properties/{id}", r.propertyHandler.DeleteProperty)

	// Availability endpoints
	r.mux.HandleFunc("GET /api/properties/{id}/calendar", r.availabilityHandler.GetCalendar)
	r.mux.HandleFunc("PUT /api/properties/{id}/calendar", r.availabilityHandler.SetCalendar)
	r.mux.HandleFunc("GET /api/properties/{id}/quote", r.availabilityHandler.GetQuote)

	// Booking endpoints
	r.mux.HandleFunc("GET /api/bookings", r.bookingHandler.ListBookings)
	r.mux.HandleFunc("POST /api/bookings", r.bookingHandler.CreateBooking)
	r.mux.HandleFunc("GET /api/bookings/{id}", r.bookingHandler.GetBooking)
	r.mux.HandleFunc("PATCH /api/bookings/{id}/status", r.bookingHandler.UpdateBookingStatus)

	// Payment endpoints
	r.mux.HandleFunc("GET /api/payments", r.paymentHandler.ListPayments)
	r.mux.HandleFunc("POST /api/payments", r.paymentHandler.CreatePayment)
	r.mux.HandleFunc("GET /api/payments/{id}", r.paymentHandler.GetPayment)
	r.mux.HandleFunc("PATCH /api/payments/{id}/status", r.paymentHandler.UpdatePaymentStatus)
	r.mux.HandleFunc("POST /api/payments/{id}/refund", r.paymentHandler.RefundPayment)

	// Notification endpoints
	r.mux.HandleFunc("GET /api/notifications", r.notificationHandler.ListNotifications)
	r.mux.HandleFunc("POST /api/notifications", r.notificationHandler.CreateNotification)
	r.mux.HandleFunc("POST /api/notifications/read-all", r.notificationHandler.MarkAllRead)
	r.mux.HandleFunc("GET /api/notifications/{id}", r.notificationHandler.GetNotification)
	r.mux.HandleFunc("PATCH /api/notifications/{id}", r.notificationHandler.UpdateNotification)
	r.mux.HandleFunc("DELETE /api/notifications/{id}", r.notificationHandler.DeleteNotification)
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/notifications/stream", r.sseHandler.StreamNotifications)
	}

	// Assistant endpoints
	r.mux.HandleFunc("POST /api/chatbot", r.assistantHandler.Chatbot)
	r.mux.HandleFunc("POST /api/ai-assistant", r.assistantHandler.Assistant)

	// Apply middleware in reverse order (last middleware wraps first).
	// Identity runs before the cache so cached entries are keyed per caller.
	var handler http.Handler = r.mux
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}
	handler = middleware.IdentityMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
