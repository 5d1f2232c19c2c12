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
	var reviewRequest services.CreateReviewRequest
	requester, err := lambdautils.DecodeUserBody(request, &reviewRequest)
	if err != nil {
		return lambdautils.RespondError(err)
	}
	if roomId, ok := request.PathParameters["room_id"]; ok {
		reviewRequest.RoomId = roomId
	}
	return lambdautils.Handle(http.StatusCreated, func() (model.Review, error) {
		return components.Reviews.CreateReview(ctx, reviewRequest, requester)
	})
}

func main() {
	lambda.Start(handler)
}
