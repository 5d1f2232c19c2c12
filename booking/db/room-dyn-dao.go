package db

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"dogotel/booking/model"
	"dogotel/dynamoutils"
)

type RoomDynDao struct {
	client    dynamoutils.API
	tableName string
}

func NewRoomDynDao(client dynamoutils.API, tableName string) *RoomDynDao {
	return &RoomDynDao{client: client, tableName: tableName}
}

func (dao *RoomDynDao) GetRoom(ctx context.Context, roomId string) (model.Room, error) {
	response, err := dao.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(dao.tableName),
		Key:            dynamoutils.StringKey("room_id", roomId),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return model.Room{}, err
	}
	if len(response.Item) == 0 {
		return model.Room{}, model.ErrItemNotFound
	}
	return dynamoutils.UnmarshalEntity[model.Room](response.Item)
}

func (dao *RoomDynDao) PutRoom(ctx context.Context, room model.Room) error {
	item, err := dynamoutils.BuildEntityPutItem("room_id", &room)
	if err != nil {
		return err
	}
	_, err = dao.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(dao.tableName),
		Item:      item,
	})
	return err
}

func (dao *RoomDynDao) DeleteRoom(ctx context.Context, roomId string) error {
	_, err := dao.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(dao.tableName),
		Key:                 dynamoutils.StringKey("room_id", roomId),
		ConditionExpression: aws.String("attribute_exists(room_id)"),
	})
	if dynamoutils.IsConditionalCheckFailed(err) {
		return model.ErrItemNotFound
	}
	return err
}

func (dao *RoomDynDao) ScanRooms(ctx context.Context) ([]model.Room, error) {
	items, err := dynamoutils.ScanAll(ctx, dao.client, dao.tableName)
	if err != nil {
		return nil, err
	}
	return dynamoutils.UnmarshalEntities[model.Room](items)
}
