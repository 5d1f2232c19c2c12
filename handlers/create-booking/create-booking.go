package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"dogotel/booking/bootstrap"
	"dogotel/booking/model"
	"dogotel/booking/services"
	"dogotel/lambdautils"
)

var components *bootstrap.Components

func init() {
	components = bootstrap.MustBuild()
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var bookingRequest services.CreateBookingRequest
	requester, err := lambdautils.DecodeUserBody(request, &bookingRequest)
	if err != nil {
		return lambdautils.RespondError(err)
	}
	return lambdautils.Handle(http.StatusCreated, func() (model.Booking, error) {
		return components.Bookings.CreateBooking(ctx, bookingRequest, requester)
	})
}

func main() {
	lambda.Start(handler)
}
