package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"dogotel/booking/bootstrap"
	"dogotel/booking/services"
)

var components *bootstrap.Components

func init() {
	components = bootstrap.MustBuild()
}

func handler(ctx context.Context, _ events.CloudWatchEvent) (services.DailyRoomsSummary, error) {
	return components.Notifications.NotifyDailyAvailableRooms(ctx)
}

func main() {
	lambda.Start(handler)
}
