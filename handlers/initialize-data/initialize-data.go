package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"dogotel/booking/bootstrap"
	"dogotel/booking/model"
	"dogotel/dynamoutils"
)

var components *bootstrap.Components

func init() {
	components = bootstrap.MustBuild()
}

type initializeResponse struct {
	RoomsLoaded    int `json:"rooms_loaded"`
	DiningLoaded   int `json:"dining_loaded"`
	ServicesLoaded int `json:"services_loaded"`
}

func sampleRooms(now time.Time) []model.Room {
	rooms := []model.Room{
		{
			RoomId:        "1",
			Name:          "The Cozy Kennel",
			Description:   "A comfortable and intimate space designed for your dog's relaxation and peace.",
			Size:          "30m²",
			Capacity:      1,
			PricePerNight: 55,
			Amenities:     []string{"Daily housekeeping", "Premium bedding", "Climate control", "Feeding service"},
		},
		{
			RoomId:        "2",
			Name:          "Luxury Palace Suite",
			Description:   "Spacious premium suite with personalized care for your special pet.",
			Size:          "50m²",
			Capacity:      1,
			PricePerNight: 85,
			Amenities:     []string{"Private outdoor run", "Premium bedding", "Personalized care", "Gourmet treats", "Grooming service"},
		},
		{
			RoomId:        "3",
			Name:          "Economy Comfort Den",
			Description:   "An affordable option that doesn't compromise on care.",
			Size:          "25m²",
			Capacity:      3,
			PricePerNight: 25,
			Amenities:     []string{"Shared play area", "Basic bedding", "Daily walks"},
		},
		{
			RoomId:        "4",
			Name:          "The Presidential Paw Suite",
			Description:   "Luxury suite with private garden access and round-the-clock attention.",
			Size:          "80m²",
			Capacity:      1,
			PricePerNight: 120,
			Amenities:     []string{"Private garden", "Premium bedding", "24/7 care", "Gourmet meals", "Spa services", "Live webcam"},
		},
		{
			RoomId:        "5",
			Name:          "Family Pack Lodge",
			Description:   "Spacious room for families with multiple dogs.",
			Size:          "60m²",
			Capacity:      4,
			PricePerNight: 55,
			Amenities:     []string{"Large play area", "Multiple beds", "Group activities", "Extended playtime"},
		},
	}
	for i := range rooms {
		rooms[i].IsAvailable = true
		rooms[i].CreatedAt = now
		rooms[i].UpdatedAt = now
	}
	return rooms
}

func handler(ctx context.Context) (initializeResponse, error) {
	rooms := sampleRooms(time.Now().UTC())
	roomItems := make([]model.QueryableItem, 0, len(rooms))
	for i := range rooms {
		roomItems = append(roomItems, &rooms[i])
	}
	dining := catalogItems(sampleDining())
	services := catalogItems(sampleServices())

	tables := components.Config.Tables
	if err := load(ctx, tables.Rooms, "room_id", roomItems); err != nil {
		return initializeResponse{}, err
	}
	if err := load(ctx, tables.Dining, dynamoutils.DiningKey, dining); err != nil {
		return initializeResponse{}, err
	}
	if err := load(ctx, tables.Services, dynamoutils.ServiceKey, services); err != nil {
		return initializeResponse{}, err
	}
	return initializeResponse{RoomsLoaded: len(roomItems), DiningLoaded: len(dining), ServicesLoaded: len(services)}, nil
}

func catalogItems(catalog []model.CatalogItem) []model.QueryableItem {
	items := make([]model.QueryableItem, 0, len(catalog))
	for i := range catalog {
		items = append(items, &catalog[i])
	}
	return items
}

func load(ctx context.Context, tableName string, keyName string, entities []model.QueryableItem) error {
	items := make([]map[string]types.AttributeValue, 0, len(entities))
	for _, entity := range entities {
		item, err := dynamoutils.BuildEntityPutItem(keyName, entity)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	if err := dynamoutils.BatchPutItems(ctx, components.Dynamo, tableName, items); err != nil {
		return err
	}
	components.Logger.Info("sample data loaded", "table", tableName, "count", len(items))
	return nil
}

func main() {
	lambda.Start(handler)
}
