package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"dogotel/booking/model"
	"dogotel/dynamoutils"
)

// BookingDynDao stores bookings and keeps the stays map on the room lock items
// in step with them.
type BookingDynDao struct {
	client             dynamoutils.API
	tableName          string
	roomLocksTableName string
}

func NewBookingDynDao(client dynamoutils.API, tableName string, roomLocksTableName string) *BookingDynDao {
	return &BookingDynDao{client: client, tableName: tableName, roomLocksTableName: roomLocksTableName}
}

func (dao *BookingDynDao) GetBooking(ctx context.Context, bookingId string) (model.Booking, error) {
	response, err := dao.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(dao.tableName),
		Key:            dynamoutils.StringKey("booking_id", bookingId),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return model.Booking{}, err
	}
	if len(response.Item) == 0 {
		return model.Booking{}, model.ErrItemNotFound
	}
	return dynamoutils.UnmarshalEntity[model.Booking](response.Item)
}

func (dao *BookingDynDao) PutNewBooking(ctx context.Context, booking model.Booking, hold model.RoomHold) error {
	item, err := dynamoutils.BuildEntityPutItem("booking_id", &booking)
	if err != nil {
		return err
	}

	names := map[string]string{"#booking": booking.BookingId}
	updateExpression := "SET stays.#booking = :stay"
	if len(hold.ExpiredStays) > 0 {
		removals := make([]string, 0, len(hold.ExpiredStays))
		for i, expired := range hold.ExpiredStays {
			name := fmt.Sprintf("#expired%d", i)
			names[name] = expired
			removals = append(removals, "stays."+name)
		}
		updateExpression += " REMOVE " + strings.Join(removals, ", ")
	}

	_, err = dao.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(dao.tableName),
					Item:                item,
					ConditionExpression: aws.String("attribute_not_exists(booking_id)"),
				},
			},
			{
				Update: &types.Update{
					TableName:                aws.String(dao.roomLocksTableName),
					Key:                      dynamoutils.StringKey("room_id", booking.RoomId),
					ExpressionAttributeNames: names,
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":myFunctionInstanceId": &types.AttributeValueMemberS{Value: hold.InstanceId},
						":stay":                 stayAttribute(booking.Stay()),
					},
					ConditionExpression: aws.String("locked_instance_id = :myFunctionInstanceId"),
					UpdateExpression:    aws.String(updateExpression),
				},
			},
		},
	})
	if dynamoutils.IsTransactionConditionFailed(err) {
		return model.ErrConditionFailed
	}
	return err
}

func (dao *BookingDynDao) UpdateBooking(ctx context.Context, booking model.Booking, previousStatus model.BookingStatus) error {
	newState, err := json.Marshal(booking)
	if err != nil {
		return err
	}
	update := &types.Update{
		TableName: aws.String(dao.tableName),
		Key:       dynamoutils.StringKey("booking_id", booking.BookingId),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":newState":       &types.AttributeValueMemberS{Value: string(newState)},
			":status":         &types.AttributeValueMemberS{Value: string(booking.Status)},
			":previousStatus": &types.AttributeValueMemberS{Value: string(previousStatus)},
		},
		ConditionExpression: aws.String("#status = :previousStatus"),
		UpdateExpression:    aws.String("SET current_state = :newState, #status = :status"),
	}

	if !previousStatus.IsActive() || booking.Status.IsActive() {
		_, err = dao.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 update.TableName,
			Key:                       update.Key,
			ExpressionAttributeNames:  update.ExpressionAttributeNames,
			ExpressionAttributeValues: update.ExpressionAttributeValues,
			ConditionExpression:       update.ConditionExpression,
			UpdateExpression:          update.UpdateExpression,
		})
		if dynamoutils.IsConditionalCheckFailed(err) {
			return model.ErrConditionFailed
		}
		return err
	}

	_, err = dao.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: update},
			{
				Update: &types.Update{
					TableName:                aws.String(dao.roomLocksTableName),
					Key:                      dynamoutils.StringKey("room_id", booking.RoomId),
					ExpressionAttributeNames: map[string]string{"#booking": booking.BookingId},
					UpdateExpression:         aws.String("REMOVE stays.#booking"),
				},
			},
		},
	})
	if dynamoutils.IsTransactionConditionFailed(err) {
		return model.ErrConditionFailed
	}
	return err
}

func (dao *BookingDynDao) FindBookingsByRoom(ctx context.Context, roomId string) ([]model.Booking, error) {
	return dao.queryIndex(ctx, dynamoutils.RoomBookingsIndex, "room_id", roomId)
}

func (dao *BookingDynDao) FindBookingsByUser(ctx context.Context, userId string) ([]model.Booking, error) {
	return dao.queryIndex(ctx, dynamoutils.UserBookingsIndex, "user_id", userId)
}

func (dao *BookingDynDao) queryIndex(ctx context.Context, indexName string, attributeName string, value string) ([]model.Booking, error) {
	items, err := dynamoutils.QueryAll(ctx, dao.client, &dynamodb.QueryInput{
		TableName:              aws.String(dao.tableName),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String("#key = :value"),
		ExpressionAttributeNames: map[string]string{
			"#key": attributeName,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, err
	}
	return dynamoutils.UnmarshalEntities[model.Booking](items)
}

func (dao *BookingDynDao) ScanBookings(ctx context.Context) ([]model.Booking, error) {
	items, err := dynamoutils.ScanAll(ctx, dao.client, dao.tableName)
	if err != nil {
		return nil, err
	}
	return dynamoutils.UnmarshalEntities[model.Booking](items)
}
