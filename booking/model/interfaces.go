package model

import (
	"context"
	"errors"
	"time"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrConditionFailed = errors.New("conditional write failed")
	ErrRoomLocked      = errors.New("room is locked by another instance")
)

// QueryableItem is an entity stored as a JSON document next to the string
// attributes its secondary indexes are built on.
type QueryableItem interface {
	GetId() string
	GetQueryableAttributes() map[string]string
}

type RoomDao interface {
	GetRoom(ctx context.Context, roomId string) (Room, error)
	PutRoom(ctx context.Context, room Room) error
	DeleteRoom(ctx context.Context, roomId string) error
	ScanRooms(ctx context.Context) ([]Room, error)
}

type BookingDao interface {
	GetBooking(ctx context.Context, bookingId string) (Booking, error)
	// PutNewBooking writes the booking and records its stay on the room lock
	// item in one transaction. It fails with ErrConditionFailed if the id is
	// taken or the hold is no longer the lock owner.
	PutNewBooking(ctx context.Context, booking Booking, hold RoomHold) error
	// UpdateBooking fails with ErrConditionFailed unless the stored status is
	// still previousStatus. A booking leaving an active status gives its stay
	// back to the room.
	UpdateBooking(ctx context.Context, booking Booking, previousStatus BookingStatus) error
	FindBookingsByRoom(ctx context.Context, roomId string) ([]Booking, error)
	FindBookingsByUser(ctx context.Context, userId string) ([]Booking, error)
	ScanBookings(ctx context.Context) ([]Booking, error)
}

type ReviewDao interface {
	GetReview(ctx context.Context, reviewId string) (Review, error)
	// PutNewReview fails with ErrConditionFailed if the id is already taken.
	PutNewReview(ctx context.Context, review Review) error
	PutReview(ctx context.Context, review Review) error
	DeleteReview(ctx context.Context, reviewId string) error
	FindReviewsByRoom(ctx context.Context, roomId string) ([]Review, error)
	FindReviewsByUser(ctx context.Context, userId string) ([]Review, error)
	ScanReviews(ctx context.Context) ([]Review, error)
}

// RoomLockDao serializes booking creation per room across function instances.
// A lock whose lease has expired may be taken over by another instance.
type RoomLockDao interface {
	AcquireRoomLock(ctx context.Context, roomId string, instanceId string, leaseUntil time.Time, now time.Time) error
	ReleaseRoomLock(ctx context.Context, roomId string, instanceId string) error
	// GetRoomStays reads the stays of the room's active bookings with a
	// strongly consistent read.
	GetRoomStays(ctx context.Context, roomId string) ([]Stay, error)
}

type CatalogDao interface {
	GetCatalogItem(ctx context.Context, id string) (CatalogItem, error)
	ScanCatalog(ctx context.Context) ([]CatalogItem, error)
}

type UserDao interface {
	GetUser(ctx context.Context, email string) (UserProfile, error)
	PutUser(ctx context.Context, user UserProfile) error
}

// Subscriber manages email subscriptions to notification topics.
type Subscriber interface {
	// FindEmailSubscription fails with ErrItemNotFound when email is not
	// subscribed to the topic.
	FindEmailSubscription(ctx context.Context, topicArn string, email string) (EmailSubscription, error)
	SubscribeEmail(ctx context.Context, topicArn string, email string) (EmailSubscription, error)
	Unsubscribe(ctx context.Context, subscription EmailSubscription) error
}

type EventSink interface {
	PublishBookingCreated(ctx context.Context, evt BookingCreatedEvent) error
}

type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}
