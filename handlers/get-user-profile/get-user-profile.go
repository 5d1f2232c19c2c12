package main

import (
	"context"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"dogotel/booking/bootstrap"
	"dogotel/booking/model"
	"dogotel/errs"
	"dogotel/lambdautils"
)

var components *bootstrap.Components

func init() {
	components = bootstrap.MustBuild()
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	email, err := pathEmail(request.PathParameters)
	if err != nil {
		return lambdautils.RespondError(err)
	}
	return lambdautils.Handle(http.StatusOK, func() (model.UserProfile, error) {
		return components.Users.GetUserProfile(ctx, email, lambdautils.RequesterFromRequest(request))
	})
}

// pathEmail decodes the email path segment, which clients send escaped.
func pathEmail(parameters map[string]string) (string, error) {
	email, err := url.PathUnescape(parameters["email"])
	if err != nil {
		return "", errs.InvalidInput("malformed email in path")
	}
	return email, nil
}

func main() {
	lambda.Start(handler)
}
