package db

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"dogotel/booking/model"
	"dogotel/dynamoutils"
)

const unlockedInstanceId = "NULL"

const staysAttribute = "stays"

// RoomLockDynDao keeps one lock item per room. The holder is stored in
// locked_instance_id, "NULL" when free, and the lease end in lock_expires_at
// as unix milliseconds. The stays map holds the dates of the room's active
// bookings keyed by booking id; BookingDynDao maintains it transactionally.
type RoomLockDynDao struct {
	client    dynamoutils.API
	tableName string
}

func NewRoomLockDynDao(client dynamoutils.API, tableName string) *RoomLockDynDao {
	return &RoomLockDynDao{client: client, tableName: tableName}
}

func (dao *RoomLockDynDao) AcquireRoomLock(ctx context.Context, roomId string, instanceId string, leaseUntil time.Time, now time.Time) error {
	_, err := dao.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(dao.tableName),
		Key:       dynamoutils.StringKey("room_id", roomId),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":myFunctionInstanceId":   &types.AttributeValueMemberS{Value: instanceId},
			":nullFunctionInstanceId": &types.AttributeValueMemberS{Value: unlockedInstanceId},
			":leaseUntil":             &types.AttributeValueMemberN{Value: millis(leaseUntil)},
			":now":                    &types.AttributeValueMemberN{Value: millis(now)},
			":noStays":                &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{}},
		},
		ConditionExpression: aws.String("attribute_not_exists(locked_instance_id) OR locked_instance_id = :nullFunctionInstanceId " +
			"OR locked_instance_id = :myFunctionInstanceId OR lock_expires_at < :now"),
		UpdateExpression: aws.String("SET locked_instance_id = :myFunctionInstanceId, lock_expires_at = :leaseUntil, " +
			"stays = if_not_exists(stays, :noStays)"),
	})
	if dynamoutils.IsConditionalCheckFailed(err) {
		return model.ErrRoomLocked
	}
	return err
}

// ReleaseRoomLock returns ErrConditionFailed when the lease was lost to another
// instance in the meantime.
func (dao *RoomLockDynDao) ReleaseRoomLock(ctx context.Context, roomId string, instanceId string) error {
	_, err := dao.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(dao.tableName),
		Key:       dynamoutils.StringKey("room_id", roomId),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":myFunctionInstanceId":   &types.AttributeValueMemberS{Value: instanceId},
			":nullFunctionInstanceId": &types.AttributeValueMemberS{Value: unlockedInstanceId},
		},
		ConditionExpression: aws.String("locked_instance_id = :myFunctionInstanceId"),
		UpdateExpression:    aws.String("SET locked_instance_id = :nullFunctionInstanceId REMOVE lock_expires_at"),
	})
	if dynamoutils.IsConditionalCheckFailed(err) {
		return model.ErrConditionFailed
	}
	return err
}

func (dao *RoomLockDynDao) GetRoomStays(ctx context.Context, roomId string) ([]model.Stay, error) {
	response, err := dao.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(dao.tableName),
		Key:                  dynamoutils.StringKey("room_id", roomId),
		ConsistentRead:       aws.Bool(true),
		ProjectionExpression: aws.String(staysAttribute),
	})
	if err != nil {
		return nil, err
	}
	staysMap, ok := response.Item[staysAttribute].(*types.AttributeValueMemberM)
	if !ok {
		return nil, nil
	}

	stays := make([]model.Stay, 0, len(staysMap.Value))
	for bookingId, value := range staysMap.Value {
		stay, err := parseStay(bookingId, value)
		if err != nil {
			return nil, err
		}
		stays = append(stays, stay)
	}
	sort.Slice(stays, func(i, j int) bool { return stays[i].CheckIn.Before(stays[j].CheckIn) })
	return stays, nil
}

func stayAttribute(stay model.Stay) types.AttributeValue {
	return &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
		"check_in":  &types.AttributeValueMemberS{Value: stay.CheckIn.UTC().Format(time.RFC3339)},
		"check_out": &types.AttributeValueMemberS{Value: stay.CheckOut.UTC().Format(time.RFC3339)},
	}}
}

func parseStay(bookingId string, value types.AttributeValue) (model.Stay, error) {
	fields, ok := value.(*types.AttributeValueMemberM)
	if !ok {
		return model.Stay{}, fmt.Errorf("stay %s is not a map", bookingId)
	}
	parse := func(name string) (time.Time, error) {
		raw, ok := fields.Value[name].(*types.AttributeValueMemberS)
		if !ok {
			return time.Time{}, fmt.Errorf("stay %s has no %s", bookingId, name)
		}
		return time.Parse(time.RFC3339, raw.Value)
	}
	checkIn, err := parse("check_in")
	if err != nil {
		return model.Stay{}, err
	}
	checkOut, err := parse("check_out")
	if err != nil {
		return model.Stay{}, err
	}
	return model.Stay{BookingId: bookingId, CheckIn: checkIn, CheckOut: checkOut}, nil
}

func millis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
