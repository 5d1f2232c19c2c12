package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"dogotel/booking/bootstrap"
	"dogotel/booking/services"
	"dogotel/lambdautils"
)

var components *bootstrap.Components

func init() {
	components = bootstrap.MustBuild()
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var subscription services.SubscriptionRequest
	requester, err := lambdautils.DecodeAdminBody(request, &subscription)
	if err != nil {
		return lambdautils.RespondError(err)
	}
	return lambdautils.Handle(http.StatusOK, func() (services.SubscriptionStatus, error) {
		return components.Subscriptions.SubscribeAdmin(ctx, subscription, requester)
	})
}

func main() {
	lambda.Start(handler)
}
