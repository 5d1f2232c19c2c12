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
	var patch services.RoomPatch
	requester, err := lambdautils.DecodeAdminBody(request, &patch)
	if err != nil {
		return lambdautils.RespondError(err)
	}
	return lambdautils.Handle(http.StatusOK, func() (model.Room, error) {
		return components.Rooms.UpdateRoom(ctx, request.PathParameters["room_id"], patch, requester)
	})
}

func main() {
	lambda.Start(handler)
}
