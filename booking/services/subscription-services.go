package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"dogotel/booking/model"
	"dogotel/errs"
)

type SubscriptionRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SubscriptionStatus struct {
	Email           string `json:"email"`
	Subscribed      bool   `json:"subscribed"`
	Pending         bool   `json:"pending_confirmation"`
	SubscriptionArn string `json:"subscription_arn,omitempty"`
	Message         string `json:"message"`
}

// SubscriptionService manages the email subscriptions of the daily rooms
// digest and of the admin alerts.
type SubscriptionService struct {
	subscriber model.Subscriber
	topics     NotificationTopics
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewSubscriptionService(subscriber model.Subscriber, topics NotificationTopics, logger *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		subscriber: subscriber,
		topics:     topics,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger,
	}
}

// SubscribeDailyRooms subscribes an address to the daily digest. Users may only
// subscribe their own address; administrators any.
func (ss *SubscriptionService) SubscribeDailyRooms(ctx context.Context, request SubscriptionRequest, requester model.Requester) (SubscriptionStatus, error) {
	if err := ss.checkRequest(&request, requester); err != nil {
		return SubscriptionStatus{}, err
	}
	return ss.subscribe(ctx, ss.topics.DailyRooms, "daily room notifications", request.Email)
}

func (ss *SubscriptionService) UnsubscribeDailyRooms(ctx context.Context, request SubscriptionRequest, requester model.Requester) (SubscriptionStatus, error) {
	if err := ss.checkRequest(&request, requester); err != nil {
		return SubscriptionStatus{}, err
	}
	if ss.topics.DailyRooms == "" {
		return SubscriptionStatus{}, errs.Internal(nil, "daily rooms topic is not configured")
	}

	subscription, err := ss.subscriber.FindEmailSubscription(ctx, ss.topics.DailyRooms, request.Email)
	if errors.Is(err, model.ErrItemNotFound) {
		return SubscriptionStatus{Email: request.Email, Message: "email not found in subscriptions"}, nil
	}
	if err != nil {
		return SubscriptionStatus{}, errs.Internal(err, "failed to list subscriptions")
	}
	if subscription.IsPending() {
		return SubscriptionStatus{}, errs.InvalidState("subscription is awaiting confirmation and cannot be removed yet")
	}
	if err = ss.subscriber.Unsubscribe(ctx, subscription); err != nil {
		return SubscriptionStatus{}, errs.Internal(err, "failed to unsubscribe")
	}
	ss.logger.Info("unsubscribed from daily rooms", "email", request.Email)
	return SubscriptionStatus{Email: request.Email, Message: "successfully unsubscribed from daily room notifications"}, nil
}

func (ss *SubscriptionService) SubscribeAdmin(ctx context.Context, request SubscriptionRequest, requester model.Requester) (SubscriptionStatus, error) {
	if err := requireAdmin(requester); err != nil {
		return SubscriptionStatus{}, err
	}
	if err := ss.checkEmail(&request); err != nil {
		return SubscriptionStatus{}, err
	}
	return ss.subscribe(ctx, ss.topics.Admin, "admin notifications", request.Email)
}

func (ss *SubscriptionService) subscribe(ctx context.Context, topicArn string, topicName string, email string) (SubscriptionStatus, error) {
	if topicArn == "" {
		return SubscriptionStatus{}, errs.Internal(nil, topicName+" topic is not configured")
	}

	existing, err := ss.subscriber.FindEmailSubscription(ctx, topicArn, email)
	if err == nil {
		return SubscriptionStatus{
			Email:           email,
			Subscribed:      true,
			Pending:         existing.IsPending(),
			SubscriptionArn: existing.SubscriptionArn,
			Message:         "already subscribed to " + topicName,
		}, nil
	}
	if !errors.Is(err, model.ErrItemNotFound) {
		return SubscriptionStatus{}, errs.Internal(err, "failed to list subscriptions")
	}

	created, err := ss.subscriber.SubscribeEmail(ctx, topicArn, email)
	if err != nil {
		return SubscriptionStatus{}, errs.Internal(err, "failed to subscribe")
	}
	ss.logger.Info("subscribed to topic", "topic", topicName, "email", email)
	return SubscriptionStatus{
		Email:      email,
		Subscribed: true,
		Pending:    created.IsPending(),
		Message:    "successfully subscribed to " + topicName + ", please check your email to confirm the subscription",
	}, nil
}

func (ss *SubscriptionService) checkRequest(request *SubscriptionRequest, requester model.Requester) error {
	if err := requireAuthenticated(requester); err != nil {
		return err
	}
	if err := ss.checkEmail(request); err != nil {
		return err
	}
	if !requester.CanAccess(request.Email) {
		return errs.Forbidden("you can only manage your own subscriptions")
	}
	return nil
}

func (ss *SubscriptionService) checkEmail(request *SubscriptionRequest) error {
	request.Email = strings.TrimSpace(request.Email)
	if err := ss.validate.Struct(request); err != nil {
		return errs.InvalidInput("a valid email is required")
	}
	return nil
}
