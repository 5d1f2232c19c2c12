package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"dogotel/booking/bootstrap"
	"dogotel/booking/model"
	"dogotel/booking/services"
	"dogotel/errs"
	"dogotel/lambdautils"
)

var components *bootstrap.Components

func init() {
	components = bootstrap.MustBuild()
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	filter, err := parseFilter(request.QueryStringParameters)
	if err != nil {
		return lambdautils.RespondError(err)
	}
	return lambdautils.Handle(http.StatusOK, func() ([]model.Room, error) {
		return components.Rooms.ListRooms(ctx, filter)
	})
}

func parseFilter(query map[string]string) (services.RoomFilter, error) {
	filter := services.RoomFilter{
		Size:     query["size"],
		CheckIn:  query["check_in"],
		CheckOut: query["check_out"],
	}
	var err error
	if filter.MinPrice, err = parsePrice(query, "min_price"); err != nil {
		return services.RoomFilter{}, err
	}
	if filter.MaxPrice, err = parsePrice(query, "max_price"); err != nil {
		return services.RoomFilter{}, err
	}
	return filter, nil
}

func parsePrice(query map[string]string, name string) (*float64, error) {
	raw, ok := query[name]
	if !ok || raw == "" {
		return nil, nil
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errs.InvalidInput("%s must be a number", name)
	}
	return &price, nil
}

func main() {
	lambda.Start(handler)
}
