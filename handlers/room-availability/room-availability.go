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

type availabilityResponse struct {
	RoomId    string `json:"room_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Available bool   `json:"available"`
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	roomId := request.PathParameters["room_id"]
	checkIn := request.QueryStringParameters["check_in"]
	checkOut := request.QueryStringParameters["check_out"]
	return lambdautils.Handle(http.StatusOK, func() (availabilityResponse, error) {
		available, err := components.Bookings.AvailabilityCheck(ctx, roomId, checkIn, checkOut)
		if err != nil {
			return availabilityResponse{}, err
		}
		return availabilityResponse{RoomId: roomId, CheckIn: checkIn, CheckOut: checkOut, Available: available}, nil
	})
}

func main() {
	lambda.Start(handler)
}
