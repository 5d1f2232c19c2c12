package events

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"dogotel/booking/model"
)

type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type SqsEventSink struct {
	client   SQSAPI
	queueURL string
}

func NewSqsEventSink(client SQSAPI, queueURL string) *SqsEventSink {
	return &SqsEventSink{client: client, queueURL: queueURL}
}

func (s *SqsEventSink) PublishBookingCreated(ctx context.Context, evt model.BookingCreatedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(evt.EventType)},
			"booking_id": {DataType: aws.String("String"), StringValue: aws.String(evt.Booking.BookingId)},
		},
	})
	return err
}
