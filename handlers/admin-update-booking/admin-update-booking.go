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
	var patch services.BookingPatch
	requester, err := lambdautils.DecodeAdminBody(request, &patch)
	if err != nil {
		return lambdautils.RespondError(err)
	}
	return lambdautils.Handle(http.StatusOK, func() (model.Booking, error) {
		return components.Bookings.AdminUpdateBooking(ctx, request.PathParameters["booking_id"], patch, requester)
	})
}

func main() {
	lambda.Start(handler)
}
