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
	RoomId  string `json:"room_id"`
	Deleted bool   `json:"deleted"`
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	roomId := request.PathParameters["room_id"]
	return lambdautils.Handle(http.StatusOK, func() (deletedResponse, error) {
		if err := components.Rooms.DeleteRoom(ctx, roomId, lambdautils.RequesterFromRequest(request)); err != nil {
			return deletedResponse{}, err
		}
		return deletedResponse{RoomId: roomId, Deleted: true}, nil
	})
}

func main() {
	lambda.Start(handler)
}
