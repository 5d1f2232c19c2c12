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
	status := model.ReviewStatus(request.QueryStringParameters["status"])
	return lambdautils.Handle(http.StatusOK, func() ([]model.Review, error) {
		return components.Reviews.ListAllReviews(ctx, status, lambdautils.RequesterFromRequest(request))
	})
}

func main() {
	lambda.Start(handler)
}
