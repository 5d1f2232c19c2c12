package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"dogotel/booking/bootstrap"
	"dogotel/lambdautils"
)

var components *bootstrap.Components

func init() {
	components = bootstrap.MustBuild()
}

type unavailableDatesResponse struct {
	RoomId           string   `json:"room_id"`
	UnavailableDates []string `json:"unavailable_dates"`
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	roomId := request.PathParameters["room_id"]
	return lambdautils.Handle(http.StatusOK, func() (unavailableDatesResponse, error) {
		dates, err := components.Bookings.ListUnavailableDates(ctx, roomId)
		return unavailableDatesResponse{RoomId: roomId, UnavailableDates: dates}, err
	})
}

func main() {
	lambda.Start(handler)
}
