package events

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"dogotel/booking/model"
)

const emailProtocol = "email"

type SNSSubscriptionAPI interface {
	sns.ListSubscriptionsByTopicAPIClient
	Subscribe(ctx context.Context, params *sns.SubscribeInput, optFns ...func(*sns.Options)) (*sns.SubscribeOutput, error)
	Unsubscribe(ctx context.Context, params *sns.UnsubscribeInput, optFns ...func(*sns.Options)) (*sns.UnsubscribeOutput, error)
}

type SnsSubscriber struct {
	client SNSSubscriptionAPI
}

func NewSnsSubscriber(client SNSSubscriptionAPI) *SnsSubscriber {
	return &SnsSubscriber{client: client}
}

func (s *SnsSubscriber) FindEmailSubscription(ctx context.Context, topicArn string, email string) (model.EmailSubscription, error) {
	paginator := sns.NewListSubscriptionsByTopicPaginator(s.client, &sns.ListSubscriptionsByTopicInput{
		TopicArn: aws.String(topicArn),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return model.EmailSubscription{}, err
		}
		for _, subscription := range page.Subscriptions {
			if aws.ToString(subscription.Protocol) == emailProtocol && strings.EqualFold(aws.ToString(subscription.Endpoint), email) {
				return model.EmailSubscription{
					TopicArn:        topicArn,
					Email:           email,
					SubscriptionArn: aws.ToString(subscription.SubscriptionArn),
				}, nil
			}
		}
	}
	return model.EmailSubscription{}, model.ErrItemNotFound
}

// SubscribeEmail starts a subscription that stays pending until the recipient
// confirms it from the email SNS sends.
func (s *SnsSubscriber) SubscribeEmail(ctx context.Context, topicArn string, email string) (model.EmailSubscription, error) {
	output, err := s.client.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn: aws.String(topicArn),
		Protocol: aws.String(emailProtocol),
		Endpoint: aws.String(email),
	})
	if err != nil {
		return model.EmailSubscription{}, err
	}
	return model.EmailSubscription{
		TopicArn:        topicArn,
		Email:           email,
		SubscriptionArn: aws.ToString(output.SubscriptionArn),
	}, nil
}

func (s *SnsSubscriber) Unsubscribe(ctx context.Context, subscription model.EmailSubscription) error {
	_, err := s.client.Unsubscribe(ctx, &sns.UnsubscribeInput{
		SubscriptionArn: aws.String(subscription.SubscriptionArn),
	})
	return err
}
