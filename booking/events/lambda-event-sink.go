package events

import (
	"context"

	"dogotel/booking/model"
	"dogotel/lambdautils"
)

// LambdaEventSink hands booking events straight to the processor function with
// an asynchronous invocation, bypassing the queue.
type LambdaEventSink struct {
	client       lambdautils.InvokeAPI
	functionName string
}

func NewLambdaEventSink(client lambdautils.InvokeAPI, functionName string) *LambdaEventSink {
	return &LambdaEventSink{client: client, functionName: functionName}
}

func (s *LambdaEventSink) PublishBookingCreated(ctx context.Context, evt model.BookingCreatedEvent) error {
	return lambdautils.InvokeAsync(ctx, s.client, s.functionName, evt)
}
