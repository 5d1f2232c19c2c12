package model

import (
	"slices"
	"time"
)

type Room struct {
	RoomId        string    `json:"room_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Size          string    `json:"size"`
	Capacity      int       `json:"capacity"`
	PricePerNight float64   `json:"price_per_night"`
	IsAvailable   bool      `json:"is_available"`
	Amenities     []string  `json:"amenities"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (r *Room) GetId() string {
	return r.RoomId
}

// Rooms are only read by key or by scan.
func (r *Room) GetQueryableAttributes() map[string]string {
	return nil
}

type BookingStatus string

const (
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

var bookingStatuses = []BookingStatus{BookingConfirmed, BookingCheckedIn, BookingCheckedOut, BookingCompleted, BookingCancelled}

func (s BookingStatus) IsValid() bool {
	return slices.Contains(bookingStatuses, s)
}

// IsActive reports whether a booking in this status holds the room.
func (s BookingStatus) IsActive() bool {
	return s == BookingConfirmed || s == BookingCheckedIn
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// bookingTransitions is the booking lifecycle. checked_out only leads to
// completed so that older records can still be closed.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingConfirmed:  {BookingCheckedIn, BookingCancelled},
	BookingCheckedIn:  {BookingCheckedOut, BookingCompleted, BookingCancelled},
	BookingCheckedOut: {BookingCompleted},
}

// CanTransitionTo reports whether a booking may move from s to next. Keeping
// the current status is always allowed; terminal statuses have no successors.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == next || slices.Contains(bookingTransitions[s], next)
}

// HasStayed reports whether the guest finished a stay, which makes the booking
// eligible as the origin of a review. checked_out is kept for older records.
func (s BookingStatus) HasStayed() bool {
	return s == BookingCompleted || s == BookingCheckedOut
}

type Booking struct {
	BookingId       string        `json:"booking_id"`
	UserId          string        `json:"user_id"`
	RoomId          string        `json:"room_id"`
	CheckIn         time.Time     `json:"check_in"`
	CheckOut        time.Time     `json:"check_out"`
	GuestCount      int           `json:"guest_count"`
	TotalCost       float64       `json:"total_cost"`
	Status          BookingStatus `json:"status"`
	SpecialRequests string        `json:"special_requests"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (b *Booking) GetId() string {
	return b.BookingId
}

func (b *Booking) GetQueryableAttributes() map[string]string {
	return map[string]string{
		"room_id":    b.RoomId,
		"user_id":    b.UserId,
		"status":     string(b.Status),
		"created_at": b.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Stay is the slice of an active booking recorded on its room's lock item.
// The overlap check made under the lock reads these with a consistent read.
type Stay struct {
	BookingId string
	CheckIn   time.Time
	CheckOut  time.Time
}

func (b Booking) Stay() Stay {
	return Stay{BookingId: b.BookingId, CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// RoomHold is the lock lease a new booking is written under, together with the
// stays that ended before today and can be dropped in the same write.
type RoomHold struct {
	InstanceId   string
	ExpiredStays []string
}

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

type Review struct {
	ReviewId    string       `json:"review_id"`
	RoomId      string       `json:"room_id"`
	BookingId   string       `json:"booking_id"`
	UserId      string       `json:"user_id"`
	UserName    string       `json:"user_name"`
	Rating      int          `json:"rating"`
	Comment     string       `json:"comment"`
	Status      ReviewStatus `json:"status"`
	ModeratedBy string       `json:"moderated_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (r *Review) GetId() string {
	return r.ReviewId
}

func (r *Review) GetQueryableAttributes() map[string]string {
	return map[string]string{
		"room_id":    r.RoomId,
		"user_id":    r.UserId,
		"status":     string(r.Status),
		"created_at": r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Requester is the caller identity resolved by the authorizer.
type Requester struct {
	Email string
	Name  string
	Role  Role
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}

func (r Requester) IsAuthenticated() bool {
	return r.Email != ""
}

func (r Requester) CanAccess(ownerId string) bool {
	return r.IsAdmin() || r.Email == ownerId
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

const BookingCreatedEventType = "booking_created"

type BookingCreatedEvent struct {
	EventType string    `json:"event_type"`
	Booking   Booking   `json:"booking"`
	Room      Room      `json:"room"`
	UserEmail string    `json:"user_email"`
	UserName  string    `json:"user_name"`
	Timestamp time.Time `json:"timestamp"`
}

type Notification struct {
	TopicArn   string
	Subject    string
	Message    string
	Attributes map[string]string
}
