package events

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"dogotel/booking/model"
)

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SnsNotifier struct {
	client SNSAPI
}

func NewSnsNotifier(client SNSAPI) *SnsNotifier {
	return &SnsNotifier{client: client}
}

func (n *SnsNotifier) Notify(ctx context.Context, notification model.Notification) error {
	attributes := make(map[string]types.MessageAttributeValue, len(notification.Attributes))
	for name, value := range notification.Attributes {
		if value == "" {
			continue
		}
		attributes[name] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(value)}
	}
	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          aws.String(notification.TopicArn),
		Subject:           aws.String(truncateSubject(notification.Subject)),
		Message:           aws.String(notification.Message),
		MessageAttributes: attributes,
	})
	return err
}

// SNS rejects subjects longer than 100 characters.
func truncateSubject(subject string) string {
	runes := []rune(subject)
	if len(runes) > 100 {
		return string(runes[:100])
	}
	return subject
}
