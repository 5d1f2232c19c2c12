package events

import (
	"context"
	"log/slog"

	"dogotel/booking/model"
)

type NopEventSink struct {
	logger *slog.Logger
}

func NewNopEventSink(logger *slog.Logger) *NopEventSink {
	return &NopEventSink{logger: logger}
}

func (s *NopEventSink) PublishBookingCreated(_ context.Context, evt model.BookingCreatedEvent) error {
	s.logger.Debug("event sink disabled, dropping event", "event_type", evt.EventType, "booking_id", evt.Booking.BookingId)
	return nil
}
