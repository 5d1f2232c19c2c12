package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"dogotel/booking/bootstrap"
	"dogotel/booking/model"
	"dogotel/lambdautils"
)

var components *bootstrap.Components

func init() {
	components = bootstrap.MustBuild()
}

type unavailableRangesResponse struct {
	RoomId            string            `json:"room_id"`
	UnavailableRanges []model.DateRange `json:"unavailable_ranges"`
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	roomId := request.PathParameters["room_id"]
	return lambdautils.Handle(http.StatusOK, func() (unavailableRangesResponse, error) {
		ranges, err := components.Bookings.ListUnavailableRanges(ctx, roomId)
		return unavailableRangesResponse{RoomId: roomId, UnavailableRanges: ranges}, err
	})
}

func main() {
	lambda.Start(handler)
}
