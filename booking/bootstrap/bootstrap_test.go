package bootstrap

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"

	"dogotel/booking/events"
	"dogotel/config"
	"dogotel/utils"
)

func TestNewEventSink(t *testing.T) {
	awsCfg := aws.Config{Region: "eu-west-3"}
	logger := utils.NopLogger()

	cases := []struct {
		name     string
		cfg      config.EventsConfig
		expected any
	}{
		{"sqs with queue", config.EventsConfig{Sink: config.SinkSQS, BookingQueueURL: "https://sqs.example/queue"}, &events.SqsEventSink{}},
		{"sqs without queue", config.EventsConfig{Sink: config.SinkSQS}, &events.NopEventSink{}},
		{"lambda", config.EventsConfig{Sink: config.SinkLambda, BookingEventsFunction: "BookingEventProcessor"}, &events.LambdaEventSink{}},
		{"none", config.EventsConfig{Sink: config.SinkNone}, &events.NopEventSink{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.IsType(t, tc.expected, newEventSink(tc.cfg, awsCfg, logger))
		})
	}
}
