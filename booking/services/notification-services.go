package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dogotel/booking/model"
	"dogotel/errs"
	"dogotel/utils"
)

type NotificationTopics struct {
	Confirmation string
	Admin        string
	DailyRooms   string
}

type DailyRoomsSummary struct {
	Date           string   `json:"date"`
	AvailableRooms []string `json:"available_rooms"`
	Published      bool     `json:"published"`
}

// NotificationService turns booking events and the daily schedule into SNS
// notifications.
type NotificationService struct {
	roomDao    model.RoomDao
	bookingDao model.BookingDao
	notifier   model.Notifier
	topics     NotificationTopics
	clock      utils.Clock
	logger     *slog.Logger
}

func NewNotificationService(roomDao model.RoomDao, bookingDao model.BookingDao, notifier model.Notifier, topics NotificationTopics, clock utils.Clock, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		roomDao:    roomDao,
		bookingDao: bookingDao,
		notifier:   notifier,
		topics:     topics,
		clock:      clock,
		logger:     logger,
	}
}

type bookingConfirmationMessage struct {
	EventType string `json:"event_type"`
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	BookingId string `json:"booking_id"`
	Timestamp string `json:"timestamp"`
}

// ProcessBookingEvent handles one queued event body. Unknown event types are
// skipped; a returned error means the message should be redelivered.
func (ns *NotificationService) ProcessBookingEvent(ctx context.Context, body string) error {
	var envelope struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return errs.InvalidInput("malformed booking event: %v", err)
	}
	if envelope.EventType != model.BookingCreatedEventType {
		ns.logger.Warn("skipping unknown booking event", "event_type", envelope.EventType)
		return nil
	}

	var evt model.BookingCreatedEvent
	if err := json.Unmarshal([]byte(body), &evt); err != nil {
		return errs.InvalidInput("malformed booking_created event: %v", err)
	}

	if ns.topics.Confirmation == "" {
		ns.logger.Warn("confirmation topic not configured, dropping confirmation", "booking_id", evt.Booking.BookingId)
	} else if err := ns.sendConfirmation(ctx, evt); err != nil {
		return err
	}

	// The confirmation is out at this point; failing the event would send it
	// again on redelivery.
	if ns.topics.Admin != "" {
		if err := ns.sendAdminAlert(ctx, evt); err != nil {
			ns.logger.Error("failed to send admin alert", "booking_id", evt.Booking.BookingId, "error", err)
		}
	}
	return nil
}

func (ns *NotificationService) sendConfirmation(ctx context.Context, evt model.BookingCreatedEvent) error {
	subject := ConfirmationSubject(evt.Booking.BookingId)
	message, err := json.Marshal(bookingConfirmationMessage{
		EventType: "booking_confirmation",
		UserEmail: evt.UserEmail,
		UserName:  evt.UserName,
		Subject:   subject,
		Body:      confirmationBody(evt),
		BookingId: evt.Booking.BookingId,
		Timestamp: ns.clock.Now().Format("2006-01-02T15:04:05.000000"),
	})
	if err != nil {
		return errs.Internal(err, "failed to encode confirmation")
	}

	err = ns.notifier.Notify(ctx, model.Notification{
		TopicArn: ns.topics.Confirmation,
		Subject:  subject,
		Message:  string(message),
		Attributes: map[string]string{
			"event_type": "booking_confirmation",
			"user_email": evt.UserEmail,
		},
	})
	if err != nil {
		return errs.Internal(err, "failed to publish booking confirmation")
	}
	ns.logger.Info("booking confirmation published", "booking_id", evt.Booking.BookingId)
	return nil
}

func (ns *NotificationService) sendAdminAlert(ctx context.Context, evt model.BookingCreatedEvent) error {
	err := ns.notifier.Notify(ctx, model.Notification{
		TopicArn: ns.topics.Admin,
		Subject:  "New booking - " + roomName(evt.Room),
		Message: fmt.Sprintf("%s booked %s from %s to %s for %d guests (total $%.2f).",
			evt.UserEmail, roomName(evt.Room),
			model.FormatDate(evt.Booking.CheckIn), model.FormatDate(evt.Booking.CheckOut),
			evt.Booking.GuestCount, evt.Booking.TotalCost),
		Attributes: map[string]string{"event_type": model.BookingCreatedEventType},
	})
	if err != nil {
		return errs.Internal(err, "failed to publish admin alert")
	}
	return nil
}

// ConfirmationSubject is the e-mail subject for a booking, quoting the first
// eight characters of its id.
func ConfirmationSubject(bookingId string) string {
	short := bookingId
	if len(short) > 8 {
		short = short[:8]
	}
	return "Booking Confirmation - Dogotel #" + short
}

func confirmationBody(evt model.BookingCreatedEvent) string {
	name := evt.UserName
	if name == "" {
		name = evt.UserEmail
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\nYour booking has been confirmed!\n\nBooking Details:\n", name)
	fmt.Fprintf(&sb, "- Booking ID: %s\n", evt.Booking.BookingId)
	fmt.Fprintf(&sb, "- Room: %s\n", roomName(evt.Room))
	fmt.Fprintf(&sb, "- Check-in: %s\n", model.FormatDate(evt.Booking.CheckIn))
	fmt.Fprintf(&sb, "- Check-out: %s\n", model.FormatDate(evt.Booking.CheckOut))
	fmt.Fprintf(&sb, "- Guests: %d\n", evt.Booking.GuestCount)
	fmt.Fprintf(&sb, "- Total Cost: $%.2f\n\n", evt.Booking.TotalCost)
	sb.WriteString("Thank you for choosing Dogotel!\n\nBest regards,\nThe Dogotel Team\n")
	return sb.String()
}

func roomName(room model.Room) string {
	if room.Name == "" {
		return "Room"
	}
	return room.Name
}

// NotifyDailyAvailableRooms publishes the rooms free tonight. Nothing is sent
// when every room is taken.
func (ns *NotificationService) NotifyDailyAvailableRooms(ctx context.Context) (DailyRoomsSummary, error) {
	today := model.StartOfDay(ns.clock.Now())
	summary := DailyRoomsSummary{Date: model.FormatDate(today), AvailableRooms: []string{}}

	rooms, err := ns.roomDao.ScanRooms(ctx)
	if err != nil {
		return summary, errs.Internal(err, "failed to load rooms")
	}

	var free []model.Room
	for _, room := range rooms {
		if !room.IsAvailable {
			continue
		}
		bookings, findErr := ns.bookingDao.FindBookingsByRoom(ctx, room.RoomId)
		if findErr != nil {
			ns.logger.Error("could not check room availability", "room_id", room.RoomId, "error", findErr)
			continue
		}
		if !model.IsDateOccupied(bookings, today) {
			free = append(free, room)
			summary.AvailableRooms = append(summary.AvailableRooms, room.RoomId)
		}
	}

	if len(free) == 0 {
		ns.logger.Info("no available rooms today", "date", summary.Date)
		return summary, nil
	}
	if ns.topics.DailyRooms == "" {
		ns.logger.Warn("daily rooms topic not configured", "date", summary.Date)
		return summary, nil
	}

	err = ns.notifier.Notify(ctx, model.Notification{
		TopicArn: ns.topics.DailyRooms,
		Subject:  fmt.Sprintf("Dogotel - %d rooms available on %s", len(free), summary.Date),
		Message:  dailyRoomsBody(free, today),
		Attributes: map[string]string{
			"event_type": "daily_rooms_notification",
		},
	})
	if err != nil {
		return summary, errs.Internal(err, "failed to publish daily rooms")
	}
	summary.Published = true
	ns.logger.Info("daily rooms published", "date", summary.Date, "rooms", len(free))
	return summary, nil
}

func dailyRoomsBody(rooms []model.Room, date time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Daily Room Availability - %s\n\nHere are the available rooms for today:\n", date.Format("Monday, January 2, 2006"))
	for i, room := range rooms {
		fmt.Fprintf(&sb, "\nRoom %d: %s\n", i+1, roomName(room))
		fmt.Fprintf(&sb, "  Capacity: %d\n", room.Capacity)
		fmt.Fprintf(&sb, "  Price: $%.2f/night\n", room.PricePerNight)
		if room.Size != "" {
			fmt.Fprintf(&sb, "  Size: %s\n", room.Size)
		}
		if room.Description != "" {
			fmt.Fprintf(&sb, "  Description: %s\n", room.Description)
		}
	}
	sb.WriteString("\nThank you for choosing Dogotel!\n")
	return sb.String()
}
