package db

import (
	"context"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dogotel/awsutils"
	"dogotel/booking/model"
	"dogotel/config"
	"dogotel/dynamoutils"
)

// newLocalClient connects to DynamoDB Local and creates the test tables.
// Run with DDB_URL=http://localhost:8000.
func newLocalClient(t *testing.T) (*dynamodb.Client, config.TablesConfig) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}
	endpoint := os.Getenv("DDB_URL")
	if endpoint == "" {
		t.Skip("DDB_URL not set, skipping DynamoDB Local test")
	}

	cfg := config.NewTestConfig()
	cfg.AWS.DynamoEndpoint = endpoint
	ctx := context.Background()
	awsCfg, err := awsutils.LoadConfig(ctx, cfg.AWS)
	require.NoError(t, err)
	client := dynamoutils.CreateClient(awsCfg, cfg.AWS)

	existing, err := dynamoutils.GetExistingTableNames(ctx, client)
	require.NoError(t, err)
	for _, table := range dynamoutils.AllTables(cfg.Tables) {
		if !slices.Contains(existing, table.TableName) {
			_, err = dynamoutils.CreateTable(ctx, client, table)
			require.NoError(t, err)
		}
	}
	return client, cfg.Tables
}

func localBooking(roomId string, checkIn time.Time, nights int) model.Booking {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return model.Booking{
		BookingId:  uuid.NewString(),
		UserId:     "ana@example.com",
		RoomId:     roomId,
		CheckIn:    checkIn,
		CheckOut:   checkIn.AddDate(0, 0, nights),
		GuestCount: 1,
		Status:     model.BookingConfirmed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestBookingDynDaoAgainstDynamoLocal(t *testing.T) {
	client, tables := newLocalClient(t)
	ctx := context.Background()
	dao := NewBookingDynDao(client, tables.Bookings, tables.RoomLocks)
	locks := NewRoomLockDynDao(client, tables.RoomLocks)
	roomId := "room-" + uuid.NewString()
	now := time.Now()
	booking := localBooking(roomId, model.StartOfDay(now).AddDate(0, 0, 1), 2)

	require.NoError(t, locks.AcquireRoomLock(ctx, roomId, "a", now.Add(time.Minute), now))
	hold := model.RoomHold{InstanceId: "a"}
	require.NoError(t, dao.PutNewBooking(ctx, booking, hold))
	assert.ErrorIs(t, dao.PutNewBooking(ctx, booking, hold), model.ErrConditionFailed)
	require.NoError(t, locks.ReleaseRoomLock(ctx, roomId, "a"))

	assert.ErrorIs(t, dao.UpdateBooking(ctx, booking, model.BookingCheckedIn), model.ErrConditionFailed)

	booking.Status = model.BookingCancelled
	require.NoError(t, dao.UpdateBooking(ctx, booking, model.BookingConfirmed))

	stored, err := dao.GetBooking(ctx, booking.BookingId)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, stored.Status)

	assert.ErrorIs(t, dao.UpdateBooking(ctx, booking, model.BookingConfirmed), model.ErrConditionFailed, "a cancelled booking stays cancelled")

	byRoom, err := dao.FindBookingsByRoom(ctx, roomId)
	require.NoError(t, err)
	require.Len(t, byRoom, 1)
	assert.Equal(t, booking.BookingId, byRoom[0].BookingId)

	missing := localBooking(roomId, booking.CheckIn, 1)
	assert.ErrorIs(t, dao.UpdateBooking(ctx, missing, model.BookingConfirmed), model.ErrConditionFailed)
}

// The stays read under the lock must see a booking as soon as its write
// returns, without waiting for the room index.
func TestRoomStaysAgainstDynamoLocal(t *testing.T) {
	client, tables := newLocalClient(t)
	ctx := context.Background()
	dao := NewBookingDynDao(client, tables.Bookings, tables.RoomLocks)
	locks := NewRoomLockDynDao(client, tables.RoomLocks)
	roomId := "room-" + uuid.NewString()
	now := time.Now()
	today := model.StartOfDay(now)

	stays, err := locks.GetRoomStays(ctx, roomId)
	require.NoError(t, err)
	assert.Empty(t, stays)

	past := localBooking(roomId, today.AddDate(0, 0, -5), 2)
	upcoming := localBooking(roomId, today.AddDate(0, 0, 3), 2)
	require.NoError(t, locks.AcquireRoomLock(ctx, roomId, "a", now.Add(time.Minute), now))
	require.NoError(t, dao.PutNewBooking(ctx, past, model.RoomHold{InstanceId: "a"}))
	require.NoError(t, dao.PutNewBooking(ctx, upcoming, model.RoomHold{InstanceId: "a"}))
	require.NoError(t, locks.ReleaseRoomLock(ctx, roomId, "a"))

	stays, err = locks.GetRoomStays(ctx, roomId)
	require.NoError(t, err)
	assert.Equal(t, []model.Stay{past.Stay(), upcoming.Stay()}, stays)
	assert.True(t, model.StayConflicts(stays, upcoming.CheckIn.AddDate(0, 0, 1), upcoming.CheckOut.AddDate(0, 0, 1)))

	lateComer := localBooking(roomId, today.AddDate(0, 0, 10), 1)
	assert.ErrorIs(t, dao.PutNewBooking(ctx, lateComer, model.RoomHold{InstanceId: "a"}), model.ErrConditionFailed, "the lock was released")
	_, err = dao.GetBooking(ctx, lateComer.BookingId)
	assert.ErrorIs(t, err, model.ErrItemNotFound, "nothing is written without the lock")

	require.NoError(t, locks.AcquireRoomLock(ctx, roomId, "b", now.Add(time.Minute), now))
	hold := model.RoomHold{InstanceId: "b", ExpiredStays: model.ExpiredStays(stays, now)}
	require.Equal(t, []string{past.BookingId}, hold.ExpiredStays)
	require.NoError(t, dao.PutNewBooking(ctx, lateComer, hold))
	require.NoError(t, locks.ReleaseRoomLock(ctx, roomId, "b"))

	upcoming.Status = model.BookingCancelled
	require.NoError(t, dao.UpdateBooking(ctx, upcoming, model.BookingConfirmed))

	stays, err = locks.GetRoomStays(ctx, roomId)
	require.NoError(t, err)
	assert.Equal(t, []model.Stay{lateComer.Stay()}, stays)
}

func TestRoomLockAgainstDynamoLocal(t *testing.T) {
	client, tables := newLocalClient(t)
	ctx := context.Background()
	dao := NewRoomLockDynDao(client, tables.RoomLocks)
	roomId := "room-" + uuid.NewString()
	now := time.Now()

	require.NoError(t, dao.AcquireRoomLock(ctx, roomId, "a", now.Add(time.Minute), now))
	assert.ErrorIs(t, dao.AcquireRoomLock(ctx, roomId, "b", now.Add(time.Minute), now), model.ErrRoomLocked)
	require.NoError(t, dao.AcquireRoomLock(ctx, roomId, "a", now.Add(time.Minute), now), "re-entrant for the holder")

	require.NoError(t, dao.ReleaseRoomLock(ctx, roomId, "a"))
	require.NoError(t, dao.AcquireRoomLock(ctx, roomId, "b", now.Add(time.Minute), now))

	later := now.Add(2 * time.Minute)
	require.NoError(t, dao.AcquireRoomLock(ctx, roomId, "c", later.Add(time.Minute), later), "expired lease is taken over")
	assert.ErrorIs(t, dao.ReleaseRoomLock(ctx, roomId, "b"), model.ErrConditionFailed)
}
