package bootstrap

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"dogotel/awsutils"
	"dogotel/booking/db"
	"dogotel/booking/events"
	"dogotel/booking/model"
	"dogotel/booking/services"
	"dogotel/config"
	"dogotel/dynamoutils"
	"dogotel/lambdautils"
	"dogotel/utils"
)

// Components is everything a handler may need. It is built once per function
// instance in init() and shared by every invocation.
type Components struct {
	Config config.Config
	Logger *slog.Logger
	Dynamo *dynamodb.Client

	Bookings      *services.BookingService
	Reviews       *services.ReviewGate
	Rooms         *services.RoomService
	Notifications *services.NotificationService
	Catalog       *services.CatalogService
	Users         *services.UserService
	Subscriptions *services.SubscriptionService
}

// MustBuild panics when the environment cannot be turned into a working set of
// components; a Lambda that cannot reach its stores should fail at cold start.
func MustBuild() *Components {
	components, err := Build(context.Background())
	if err != nil {
		panic(err)
	}
	return components
}

func Build(ctx context.Context) (*Components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := utils.SetLogger(cfg.Log.Level)

	awsCfg, err := awsutils.LoadConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}
	dynamoClient := dynamoutils.CreateClient(awsCfg, cfg.AWS)

	roomDao := db.NewRoomDynDao(dynamoClient, cfg.Tables.Rooms)
	bookingDao := db.NewBookingDynDao(dynamoClient, cfg.Tables.Bookings, cfg.Tables.RoomLocks)
	reviewDao := db.NewReviewDynDao(dynamoClient, cfg.Tables.Reviews)
	lockDao := db.NewRoomLockDynDao(dynamoClient, cfg.Tables.RoomLocks)
	userDao := db.NewUserDynDao(dynamoClient, cfg.Tables.Users)
	snsClient := sns.NewFromConfig(awsCfg)

	clock := utils.RealClock{}
	lockSettings := services.LockSettings{
		Lease:        cfg.Locks.Lease,
		MaxRetries:   cfg.Locks.MaxRetries,
		InitialDelay: cfg.Locks.InitialDelay,
		MaxDelay:     cfg.Locks.MaxDelay,
	}
	topics := services.NotificationTopics{
		Confirmation: cfg.Events.ConfirmationTopicARN,
		Admin:        cfg.Events.AdminTopicARN,
		DailyRooms:   cfg.Events.DailyRoomsTopicARN,
	}

	return &Components{
		Config: cfg,
		Logger: logger,
		Dynamo: dynamoClient,
		Bookings: services.NewBookingService(roomDao, bookingDao, lockDao, newEventSink(cfg.Events, awsCfg, logger),
			clock, logger, lockSettings, cfg.Events.PublishTimeout),
		Reviews:       services.NewReviewGate(reviewDao, bookingDao, clock, logger, cfg.Reviews.AutoApprove),
		Rooms:         services.NewRoomService(roomDao, bookingDao, clock, logger),
		Notifications: services.NewNotificationService(roomDao, bookingDao, events.NewSnsNotifier(snsClient), topics, clock, logger),
		Catalog: services.NewCatalogService(
			db.NewDiningDynDao(dynamoClient, cfg.Tables.Dining),
			db.NewServicesDynDao(dynamoClient, cfg.Tables.Services),
		),
		Users:         services.NewUserService(userDao, clock, logger),
		Subscriptions: services.NewSubscriptionService(events.NewSnsSubscriber(snsClient), topics, logger),
	}, nil
}

func newEventSink(cfg config.EventsConfig, awsCfg aws.Config, logger *slog.Logger) model.EventSink {
	switch cfg.Sink {
	case config.SinkSQS:
		if cfg.BookingQueueURL == "" {
			logger.Warn("BOOKING_EVENTS_QUEUE_URL is not set, booking events are dropped")
			return events.NewNopEventSink(logger)
		}
		return events.NewSqsEventSink(sqs.NewFromConfig(awsCfg), cfg.BookingQueueURL)
	case config.SinkLambda:
		return events.NewLambdaEventSink(lambdautils.CreateNewClient(awsCfg), cfg.BookingEventsFunction)
	default:
		return events.NewNopEventSink(logger)
	}
}
