package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"dogotel/booking/bootstrap"
	"dogotel/errs"
)

var components *bootstrap.Components

func init() {
	components = bootstrap.MustBuild()
}

type eventProcessor interface {
	ProcessBookingEvent(ctx context.Context, body string) error
}

// Malformed messages are dropped; any other failure is reported back so SQS
// redelivers only that message.
func processBatch(ctx context.Context, processor eventProcessor, logger *slog.Logger, sqsEvent events.SQSEvent) events.SQSEventResponse {
	response := events.SQSEventResponse{BatchItemFailures: []events.SQSBatchItemFailure{}}
	for _, record := range sqsEvent.Records {
		err := processor.ProcessBookingEvent(ctx, record.Body)
		if err == nil {
			continue
		}
		if errs.KindOf(err) == errs.KindInvalidInput {
			logger.Error("dropping malformed booking event", "message_id", record.MessageId, "error", err)
			continue
		}
		logger.Error("booking event failed", "message_id", record.MessageId, "error", err)
		response.BatchItemFailures = append(response.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
	}
	return response
}

// dispatch accepts either an SQS batch or a booking event delivered by an
// asynchronous invocation (EVENT_SINK=lambda). A failed direct event is
// returned as an error so Lambda retries it.
func dispatch(ctx context.Context, processor eventProcessor, logger *slog.Logger, payload json.RawMessage) (events.SQSEventResponse, error) {
	var sqsEvent events.SQSEvent
	if err := json.Unmarshal(payload, &sqsEvent); err == nil && len(sqsEvent.Records) > 0 {
		return processBatch(ctx, processor, logger, sqsEvent), nil
	}

	err := processor.ProcessBookingEvent(ctx, string(payload))
	if errs.KindOf(err) == errs.KindInvalidInput {
		logger.Error("dropping malformed booking event", "error", err)
		return events.SQSEventResponse{}, nil
	}
	return events.SQSEventResponse{}, err
}

func handler(ctx context.Context, payload json.RawMessage) (events.SQSEventResponse, error) {
	return dispatch(ctx, components.Notifications, components.Logger, payload)
}

func main() {
	lambda.Start(handler)
}
