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

type moderationRequest struct {
	Action services.ModerationAction `json:"action"`
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var moderation moderationRequest
	requester, err := lambdautils.DecodeAdminBody(request, &moderation)
	if err != nil {
		return lambdautils.RespondError(err)
	}
	return lambdautils.Handle(http.StatusOK, func() (model.Review, error) {
		return components.Reviews.ModerateReview(ctx, request.PathParameters["review_id"], moderation.Action, requester)
	})
}

func main() {
	lambda.Start(handler)
}
