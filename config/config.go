package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Lambda environment. Table names and AWS settings have defaults matching the
// deployed stack; queue URLs and topic ARNs are optional and disable the
// corresponding publisher when empty.
type Config struct {
	AWS     AWSConfig
	Tables  TablesConfig
	Events  EventsConfig
	Reviews ReviewsConfig
	Locks   LocksConfig
	Log     LogConfig
}

type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"eu-west-3"`
	// DynamoEndpoint points the client at DynamoDB Local or a VPC endpoint.
	DynamoEndpoint string `envconfig:"DDB_URL"`
}

type TablesConfig struct {
	Rooms     string `envconfig:"DYNAMODB_TABLE_ROOMS" default:"DogotelRooms"`
	Bookings  string `envconfig:"DYNAMODB_TABLE_BOOKINGS" default:"DogotelBookings"`
	Reviews   string `envconfig:"DYNAMODB_TABLE_REVIEWS" default:"DogotelReviews"`
	RoomLocks string `envconfig:"DYNAMODB_TABLE_ROOM_LOCKS" default:"DogotelRoomLocks"`
	Dining    string `envconfig:"DYNAMODB_TABLE_DINING" default:"DogotelDining"`
	Services  string `envconfig:"DYNAMODB_TABLE_SERVICES" default:"DogotelServices"`
	Users     string `envconfig:"DYNAMODB_TABLE_USERS" default:"DogotelUsers"`
}

type EventSinkKind string

const (
	SinkSQS    EventSinkKind = "sqs"
	SinkLambda EventSinkKind = "lambda"
	SinkNone   EventSinkKind = "none"
)

type EventsConfig struct {
	Sink                  EventSinkKind `envconfig:"EVENT_SINK" default:"sqs"`
	BookingQueueURL       string        `envconfig:"BOOKING_EVENTS_QUEUE_URL"`
	BookingEventsFunction string        `envconfig:"BOOKING_EVENTS_FUNCTION" default:"BookingEventProcessor"`
	ConfirmationTopicARN  string        `envconfig:"BOOKING_CONFIRMATION_TOPIC_ARN"`
	AdminTopicARN         string        `envconfig:"ADMIN_NOTIFICATIONS_TOPIC_ARN"`
	DailyRoomsTopicARN    string        `envconfig:"DAILY_ROOMS_TOPIC_ARN"`
	PublishTimeout        time.Duration `envconfig:"EVENT_PUBLISH_TIMEOUT" default:"2s"`
}

type ReviewsConfig struct {
	AutoApprove bool `envconfig:"REVIEWS_AUTO_APPROVE" default:"false"`
}

type LocksConfig struct {
	Lease        time.Duration `envconfig:"ROOM_LOCK_LEASE" default:"10s"`
	MaxRetries   int           `envconfig:"ROOM_LOCK_MAX_RETRIES" default:"8"`
	InitialDelay time.Duration `envconfig:"ROOM_LOCK_INITIAL_DELAY" default:"25ms"`
	MaxDelay     time.Duration `envconfig:"ROOM_LOCK_MAX_DELAY" default:"1s"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Events.Sink {
	case SinkSQS, SinkLambda, SinkNone:
	default:
		return fmt.Errorf("unknown EVENT_SINK %q", c.Events.Sink)
	}
	if c.Locks.Lease <= 0 {
		return fmt.Errorf("ROOM_LOCK_LEASE must be positive, got %v", c.Locks.Lease)
	}
	return nil
}

// NewTestConfig targets DynamoDB Local with events disabled.
func NewTestConfig() Config {
	return Config{
		AWS: AWSConfig{
			Region:         "localhost",
			DynamoEndpoint: "http://localhost:8000",
		},
		Tables: TablesConfig{
			Rooms:     "TestRooms",
			Bookings:  "TestBookings",
			Reviews:   "TestReviews",
			RoomLocks: "TestRoomLocks",
			Dining:    "TestDining",
			Services:  "TestServices",
			Users:     "TestUsers",
		},
		Events: EventsConfig{
			Sink:           SinkNone,
			PublishTimeout: time.Second,
		},
		Locks: LocksConfig{
			Lease:        5 * time.Second,
			MaxRetries:   5,
			InitialDelay: 10 * time.Millisecond,
			MaxDelay:     200 * time.Millisecond,
		},
		Log: LogConfig{Level: "error"},
	}
}
