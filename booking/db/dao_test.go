package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dogotel/booking/model"
	"dogotel/dynamoutils"
)

type stubClient struct {
	dynamoutils.API
	getOutput   *dynamodb.GetItemOutput
	updateErr   error
	putErr      error
	deleteErr   error
	lastUpdate  *dynamodb.UpdateItemInput
	lastPut     *dynamodb.PutItemInput
	lastQuery   *dynamodb.QueryInput
	queryOutput *dynamodb.QueryOutput
	lastGet     *dynamodb.GetItemInput

	transactErr  error
	lastTransact *dynamodb.TransactWriteItemsInput
}

func (s *stubClient) GetItem(_ context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	s.lastGet = input
	return s.getOutput, nil
}

func (s *stubClient) TransactWriteItems(_ context.Context, input *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	s.lastTransact = input
	return &dynamodb.TransactWriteItemsOutput{}, s.transactErr
}

func (s *stubClient) PutItem(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	s.lastPut = input
	return &dynamodb.PutItemOutput{}, s.putErr
}

func (s *stubClient) UpdateItem(_ context.Context, input *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	s.lastUpdate = input
	return &dynamodb.UpdateItemOutput{}, s.updateErr
}

func (s *stubClient) DeleteItem(_ context.Context, _ *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return &dynamodb.DeleteItemOutput{}, s.deleteErr
}

func (s *stubClient) Query(_ context.Context, input *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	s.lastQuery = input
	return s.queryOutput, nil
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func transactionConditionFailed() error {
	return &types.TransactionCanceledException{CancellationReasons: []types.CancellationReason{
		{Code: aws.String("None")},
		{Code: aws.String("ConditionalCheckFailed")},
	}}
}

func stayDates(checkIn, checkOut string) (time.Time, time.Time) {
	in, _ := time.Parse(model.DateLayout, checkIn)
	out, _ := time.Parse(model.DateLayout, checkOut)
	return in, out
}

func TestGetRoomNotFound(t *testing.T) {
	dao := NewRoomDynDao(&stubClient{getOutput: &dynamodb.GetItemOutput{}}, "Rooms")

	_, err := dao.GetRoom(context.Background(), "room-404")

	assert.ErrorIs(t, err, model.ErrItemNotFound)
}

func TestDeleteMissingItems(t *testing.T) {
	client := &stubClient{deleteErr: conditionFailed()}

	assert.ErrorIs(t, NewRoomDynDao(client, "Rooms").DeleteRoom(context.Background(), "room-404"), model.ErrItemNotFound)
	assert.ErrorIs(t, NewReviewDynDao(client, "Reviews").DeleteReview(context.Background(), "rev-404"), model.ErrItemNotFound)
}

func TestPutNewBookingRecordsStayUnderLock(t *testing.T) {
	client := &stubClient{}
	dao := NewBookingDynDao(client, "Bookings", "RoomLocks")
	in, out := stayDates("2024-01-01", "2024-01-03")
	booking := model.Booking{BookingId: "b-1", RoomId: "room-1", CheckIn: in, CheckOut: out, Status: model.BookingConfirmed}

	require.NoError(t, dao.PutNewBooking(context.Background(), booking, model.RoomHold{InstanceId: "instance-a", ExpiredStays: []string{"b-0"}}))

	require.Len(t, client.lastTransact.TransactItems, 2)
	put := client.lastTransact.TransactItems[0].Put
	assert.Equal(t, "Bookings", aws.ToString(put.TableName))
	assert.Equal(t, "attribute_not_exists(booking_id)", aws.ToString(put.ConditionExpression))

	lock := client.lastTransact.TransactItems[1].Update
	assert.Equal(t, "RoomLocks", aws.ToString(lock.TableName))
	assert.Equal(t, "locked_instance_id = :myFunctionInstanceId", aws.ToString(lock.ConditionExpression))
	assert.Equal(t, "SET stays.#booking = :stay REMOVE stays.#expired0", aws.ToString(lock.UpdateExpression))
	assert.Equal(t, "b-0", lock.ExpressionAttributeNames["#expired0"])
	assert.Equal(t, "instance-a", lock.ExpressionAttributeValues[":myFunctionInstanceId"].(*types.AttributeValueMemberS).Value)

	stay, err := parseStay("b-1", lock.ExpressionAttributeValues[":stay"])
	require.NoError(t, err)
	assert.Equal(t, booking.Stay(), stay)

	client.transactErr = transactionConditionFailed()
	err = dao.PutNewBooking(context.Background(), booking, model.RoomHold{InstanceId: "instance-a"})
	assert.ErrorIs(t, err, model.ErrConditionFailed)
}

func TestUpdateBookingIsConditionalOnStatus(t *testing.T) {
	client := &stubClient{}
	dao := NewBookingDynDao(client, "Bookings", "RoomLocks")
	booking := model.Booking{BookingId: "b-1", RoomId: "room-1", Status: model.BookingCheckedIn}

	require.NoError(t, dao.UpdateBooking(context.Background(), booking, model.BookingConfirmed))
	assert.Nil(t, client.lastTransact, "an active booking keeps its stay")
	assert.Equal(t, "#status = :previousStatus", aws.ToString(client.lastUpdate.ConditionExpression))
	assert.Equal(t, "confirmed", client.lastUpdate.ExpressionAttributeValues[":previousStatus"].(*types.AttributeValueMemberS).Value)

	client.updateErr = conditionFailed()
	assert.ErrorIs(t, dao.UpdateBooking(context.Background(), booking, model.BookingConfirmed), model.ErrConditionFailed)
}

func TestUpdateBookingReleasesStay(t *testing.T) {
	client := &stubClient{}
	dao := NewBookingDynDao(client, "Bookings", "RoomLocks")
	booking := model.Booking{BookingId: "b-1", RoomId: "room-1", Status: model.BookingCancelled}

	require.NoError(t, dao.UpdateBooking(context.Background(), booking, model.BookingConfirmed))

	require.Len(t, client.lastTransact.TransactItems, 2)
	assert.Equal(t, "#status = :previousStatus", aws.ToString(client.lastTransact.TransactItems[0].Update.ConditionExpression))
	lock := client.lastTransact.TransactItems[1].Update
	assert.Equal(t, "REMOVE stays.#booking", aws.ToString(lock.UpdateExpression))
	assert.Equal(t, "b-1", lock.ExpressionAttributeNames["#booking"])

	client.transactErr = transactionConditionFailed()
	assert.ErrorIs(t, dao.UpdateBooking(context.Background(), booking, model.BookingConfirmed), model.ErrConditionFailed)
}

func TestGetRoomStaysIsConsistent(t *testing.T) {
	in, out := stayDates("2024-01-05", "2024-01-07")
	earlierIn, earlierOut := stayDates("2024-01-01", "2024-01-03")
	client := &stubClient{getOutput: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"room_id": &types.AttributeValueMemberS{Value: "room-1"},
		"stays": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"b-2": stayAttribute(model.Stay{CheckIn: in, CheckOut: out}),
			"b-1": stayAttribute(model.Stay{CheckIn: earlierIn, CheckOut: earlierOut}),
		}},
	}}}
	dao := NewRoomLockDynDao(client, "RoomLocks")

	stays, err := dao.GetRoomStays(context.Background(), "room-1")

	require.NoError(t, err)
	assert.True(t, aws.ToBool(client.lastGet.ConsistentRead))
	assert.Equal(t, []model.Stay{
		{BookingId: "b-1", CheckIn: earlierIn, CheckOut: earlierOut},
		{BookingId: "b-2", CheckIn: in, CheckOut: out},
	}, stays)

	client.getOutput = &dynamodb.GetItemOutput{}
	stays, err = dao.GetRoomStays(context.Background(), "room-new")
	require.NoError(t, err)
	assert.Empty(t, stays)
}

func TestPutNewReviewIsConditional(t *testing.T) {
	client := &stubClient{}
	dao := NewReviewDynDao(client, "Reviews")

	require.NoError(t, dao.PutNewReview(context.Background(), model.Review{ReviewId: "rev-1", RoomId: "room-1"}))
	assert.Equal(t, "attribute_not_exists(review_id)", aws.ToString(client.lastPut.ConditionExpression))

	require.NoError(t, dao.PutReview(context.Background(), model.Review{ReviewId: "rev-1", RoomId: "room-1"}))
	assert.Nil(t, client.lastPut.ConditionExpression)

	client.putErr = conditionFailed()
	assert.ErrorIs(t, dao.PutNewReview(context.Background(), model.Review{ReviewId: "rev-1"}), model.ErrConditionFailed)
}

func TestFindBookingsByRoomUsesIndex(t *testing.T) {
	stored, err := dynamoutils.BuildEntityPutItem("booking_id", &model.Booking{BookingId: "b-1", RoomId: "room-1", Status: model.BookingConfirmed})
	require.NoError(t, err)
	client := &stubClient{queryOutput: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{stored}}}
	dao := NewBookingDynDao(client, "Bookings", "RoomLocks")

	bookings, err := dao.FindBookingsByRoom(context.Background(), "room-1")

	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "b-1", bookings[0].BookingId)
	assert.Equal(t, dynamoutils.RoomBookingsIndex, aws.ToString(client.lastQuery.IndexName))
	assert.Equal(t, "room_id", client.lastQuery.ExpressionAttributeNames["#key"])
}

func TestAcquireRoomLock(t *testing.T) {
	client := &stubClient{}
	dao := NewRoomLockDynDao(client, "RoomLocks")
	now := time.UnixMilli(1_700_000_000_000)

	require.NoError(t, dao.AcquireRoomLock(context.Background(), "room-1", "instance-a", now.Add(10*time.Second), now))
	assert.Equal(t, "1700000010000", client.lastUpdate.ExpressionAttributeValues[":leaseUntil"].(*types.AttributeValueMemberN).Value)
	assert.Contains(t, aws.ToString(client.lastUpdate.ConditionExpression), "lock_expires_at < :now")
	assert.Contains(t, aws.ToString(client.lastUpdate.UpdateExpression), "stays = if_not_exists(stays, :noStays)")

	client.updateErr = conditionFailed()
	err := dao.AcquireRoomLock(context.Background(), "room-1", "instance-b", now.Add(10*time.Second), now)
	assert.ErrorIs(t, err, model.ErrRoomLocked)

	client.updateErr = errors.New("throttled")
	err = dao.AcquireRoomLock(context.Background(), "room-1", "instance-b", now.Add(10*time.Second), now)
	assert.NotErrorIs(t, err, model.ErrRoomLocked)
}

func TestReleaseLostRoomLock(t *testing.T) {
	dao := NewRoomLockDynDao(&stubClient{updateErr: conditionFailed()}, "RoomLocks")

	err := dao.ReleaseRoomLock(context.Background(), "room-1", "instance-a")

	assert.ErrorIs(t, err, model.ErrConditionFailed)
}

func TestCatalogDaosUseTheirKeys(t *testing.T) {
	item, err := dynamoutils.BuildEntityPutItem(dynamoutils.DiningKey, &model.CatalogItem{Id: "full-day-meals", Title: "Full Day Meals"})
	require.NoError(t, err)
	client := &stubClient{getOutput: &dynamodb.GetItemOutput{Item: item}}

	dining, err := NewDiningDynDao(client, "Dining").GetCatalogItem(context.Background(), "full-day-meals")
	require.NoError(t, err)
	assert.Equal(t, "Full Day Meals", dining.Title)
	assert.Contains(t, client.lastGet.Key, dynamoutils.DiningKey)

	client.getOutput = &dynamodb.GetItemOutput{}
	_, err = NewServicesDynDao(client, "Services").GetCatalogItem(context.Background(), "grooming")
	assert.ErrorIs(t, err, model.ErrItemNotFound)
	assert.Contains(t, client.lastGet.Key, dynamoutils.ServiceKey)
}

func TestPutUserOnlyCreates(t *testing.T) {
	client := &stubClient{}
	dao := NewUserDynDao(client, "Users")
	user := model.UserProfile{Email: "ana@example.com", Username: "Ana"}

	require.NoError(t, dao.PutUser(context.Background(), user))
	assert.Equal(t, "attribute_not_exists(email)", aws.ToString(client.lastPut.ConditionExpression))
	assert.Equal(t, "ana@example.com", client.lastPut.Item[dynamoutils.UserKey].(*types.AttributeValueMemberS).Value)

	client.putErr = conditionFailed()
	assert.ErrorIs(t, dao.PutUser(context.Background(), user), model.ErrConditionFailed)
}
