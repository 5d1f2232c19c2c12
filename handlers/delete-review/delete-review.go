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

type deletedResponse struct {
	ReviewId string `json:"review_id"`
	Deleted  bool   `json:"deleted"`
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	reviewId := request.PathParameters["review_id"]
	return lambdautils.Handle(http.StatusOK, func() (deletedResponse, error) {
		if err := components.Reviews.DeleteReview(ctx, reviewId, lambdautils.RequesterFromRequest(request)); err != nil {
			return deletedResponse{}, err
		}
		return deletedResponse{ReviewId: reviewId, Deleted: true}, nil
	})
}

func main() {
	lambda.Start(handler)
}
