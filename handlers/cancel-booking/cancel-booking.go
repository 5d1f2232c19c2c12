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

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return lambdautils.Handle(http.StatusOK, func() (model.Booking, error) {
		return components.Bookings.CancelBooking(ctx, request.PathParameters["booking_id"], lambdautils.RequesterFromRequest(request))
	})
}

func main() {
	lambda.Start(handler)
}
