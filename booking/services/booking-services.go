package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"dogotel/booking/model"
	"dogotel/errs"
	"dogotel/utils"
)

type LockSettings struct {
	Lease        time.Duration
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

type CreateBookingRequest struct {
	RoomId          string `json:"room_id"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	GuestCount      int    `json:"guest_count"`
	SpecialRequests string `json:"special_requests"`
}

// BookingPatch holds the fields an administrator may change. Anything else in
// the request body is ignored.
type BookingPatch struct {
	Status          *model.BookingStatus `json:"status"`
	SpecialRequests *string              `json:"special_requests"`
	GuestCount      *int                 `json:"guest_count"`
}

type BookingService struct {
	roomDao        model.RoomDao
	bookingDao     model.BookingDao
	lockDao        model.RoomLockDao
	eventSink      model.EventSink
	clock          utils.Clock
	logger         *slog.Logger
	lockSettings   LockSettings
	publishTimeout time.Duration
}

func NewBookingService(
	roomDao model.RoomDao,
	bookingDao model.BookingDao,
	lockDao model.RoomLockDao,
	eventSink model.EventSink,
	clock utils.Clock,
	logger *slog.Logger,
	lockSettings LockSettings,
	publishTimeout time.Duration,
) *BookingService {
	return &BookingService{
		roomDao:        roomDao,
		bookingDao:     bookingDao,
		lockDao:        lockDao,
		eventSink:      eventSink,
		clock:          clock,
		logger:         logger,
		lockSettings:   lockSettings,
		publishTimeout: publishTimeout,
	}
}

func (bs *BookingService) CreateBooking(ctx context.Context, request CreateBookingRequest, requester model.Requester) (model.Booking, error) {
	if err := requireAuthenticated(requester); err != nil {
		return model.Booking{}, err
	}
	if err := validateRequiredFields(request); err != nil {
		return model.Booking{}, err
	}
	checkIn, checkOut, err := parseStay(request.CheckIn, request.CheckOut)
	if err != nil {
		return model.Booking{}, err
	}
	now := bs.clock.Now()
	if checkIn.Before(model.StartOfDay(now)) {
		return model.Booking{}, errs.InvalidInput("check_in cannot be in the past")
	}

	room, err := bs.roomDao.GetRoom(ctx, request.RoomId)
	if err != nil {
		return model.Booking{}, lookupError(err, "room")
	}
	if !room.IsAvailable {
		return model.Booking{}, errs.RoomUnavailable("room is not available for booking")
	}
	if request.GuestCount > room.Capacity {
		return model.Booking{}, errs.RoomUnavailable(fmt.Sprintf("room capacity is %d guests, requested %d", room.Capacity, request.GuestCount))
	}

	booking := model.Booking{
		BookingId:       uuid.NewString(),
		UserId:          requester.Email,
		RoomId:          room.RoomId,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		GuestCount:      request.GuestCount,
		TotalCost:       room.PricePerNight * float64(model.Nights(checkIn, checkOut)),
		Status:          model.BookingConfirmed,
		SpecialRequests: request.SpecialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err = bs.reserve(ctx, booking); err != nil {
		return model.Booking{}, err
	}
	bs.logger.Info("booking created", "booking_id", booking.BookingId, "room_id", booking.RoomId, "nights", model.Nights(checkIn, checkOut))

	bs.publishBookingCreated(ctx, model.BookingCreatedEvent{
		EventType: model.BookingCreatedEventType,
		Booking:   booking,
		Room:      room,
		UserEmail: requester.Email,
		UserName:  requester.Name,
		Timestamp: now,
	})

	return booking, nil
}

// reserve runs the availability check and the write while holding the room
// lock, so that two concurrent requests cannot both pass the check. The check
// reads the stays kept on the lock item, which the booking write updates in
// the same transaction.
func (bs *BookingService) reserve(ctx context.Context, booking model.Booking) error {
	instanceId := uuid.NewString()
	if err := bs.acquireRoomLock(ctx, booking.RoomId, instanceId); err != nil {
		return err
	}
	defer func() {
		if unlockErr := bs.lockDao.ReleaseRoomLock(context.WithoutCancel(ctx), booking.RoomId, instanceId); unlockErr != nil {
			bs.logger.Error("could not release room lock", "room_id", booking.RoomId, "error", unlockErr)
		}
	}()

	stays, err := bs.lockDao.GetRoomStays(ctx, booking.RoomId)
	if err != nil {
		return errs.Internal(err, "failed to load room bookings")
	}
	if model.StayConflicts(stays, booking.CheckIn, booking.CheckOut) {
		return errs.RoomUnavailable("room is already booked for the selected dates")
	}

	hold := model.RoomHold{InstanceId: instanceId, ExpiredStays: model.ExpiredStays(stays, bs.clock.Now())}
	err = bs.bookingDao.PutNewBooking(ctx, booking, hold)
	if errors.Is(err, model.ErrConditionFailed) {
		bs.logger.Warn("booking write rejected", "booking_id", booking.BookingId, "room_id", booking.RoomId)
		return errs.Conflict("another booking for this room is in progress, please retry")
	}
	if err != nil {
		return errs.Internal(err, "failed to save booking")
	}
	return nil
}

func (bs *BookingService) acquireRoomLock(ctx context.Context, roomId string, instanceId string) error {
	retrier := utils.NewRetrier[struct{}](utils.NewExponentialBackoffStrategy(
		bs.lockSettings.MaxRetries,
		bs.lockSettings.InitialDelay,
		0.2,
		bs.lockSettings.MaxDelay,
	)).RetryOnly(func(err error) bool {
		return errors.Is(err, model.ErrRoomLocked)
	}).WithLogger(bs.logger)

	_, err := retrier.DoWithReturn(ctx, func() (struct{}, error) {
		now := bs.clock.Now()
		return struct{}{}, bs.lockDao.AcquireRoomLock(ctx, roomId, instanceId, now.Add(bs.lockSettings.Lease), now)
	})
	if errors.Is(err, model.ErrRoomLocked) {
		bs.logger.Warn("room lock contended", "room_id", roomId)
		return errs.Conflict("another booking for this room is in progress, please retry")
	}
	if err != nil {
		return errs.Internal(err, "failed to lock room")
	}
	return nil
}

// publishBookingCreated never fails the booking: errors are only logged.
func (bs *BookingService) publishBookingCreated(ctx context.Context, evt model.BookingCreatedEvent) {
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bs.publishTimeout)
	defer cancel()
	if err := bs.eventSink.PublishBookingCreated(publishCtx, evt); err != nil {
		bs.logger.Warn("failed to publish booking created event", "booking_id", evt.Booking.BookingId, "error", err)
	}
}

func (bs *BookingService) AvailabilityCheck(ctx context.Context, roomId string, checkIn string, checkOut string) (bool, error) {
	if strings.TrimSpace(roomId) == "" {
		return false, errs.InvalidInput("room_id is required")
	}
	if checkIn == "" || checkOut == "" {
		return false, errs.InvalidInput("check_in and check_out are required")
	}
	in, out, err := parseStay(checkIn, checkOut)
	if err != nil {
		return false, err
	}
	bookings, err := bs.roomBookings(ctx, roomId)
	if err != nil {
		return false, err
	}
	return model.IsStayAvailable(bookings, in, out), nil
}

func (bs *BookingService) ListUnavailableDates(ctx context.Context, roomId string) ([]string, error) {
	bookings, err := bs.roomBookings(ctx, roomId)
	if err != nil {
		return nil, err
	}
	return model.UnavailableDates(bookings), nil
}

func (bs *BookingService) ListUnavailableRanges(ctx context.Context, roomId string) ([]model.DateRange, error) {
	bookings, err := bs.roomBookings(ctx, roomId)
	if err != nil {
		return nil, err
	}
	return model.UnavailableRanges(bookings), nil
}

func (bs *BookingService) roomBookings(ctx context.Context, roomId string) ([]model.Booking, error) {
	if _, err := bs.roomDao.GetRoom(ctx, roomId); err != nil {
		return nil, lookupError(err, "room")
	}
	bookings, err := bs.bookingDao.FindBookingsByRoom(ctx, roomId)
	if err != nil {
		return nil, errs.Internal(err, "failed to load room bookings")
	}
	return bookings, nil
}

func (bs *BookingService) CancelBooking(ctx context.Context, bookingId string, requester model.Requester) (model.Booking, error) {
	booking, err := bs.GetBooking(ctx, bookingId, requester)
	if err != nil {
		return model.Booking{}, err
	}
	if booking.Status == model.BookingCancelled || !booking.Status.CanTransitionTo(model.BookingCancelled) {
		return model.Booking{}, errs.InvalidState(fmt.Sprintf("booking is already %s and cannot be cancelled", booking.Status))
	}

	previousStatus := booking.Status
	booking.Status = model.BookingCancelled
	booking.UpdatedAt = bs.clock.Now()
	if err = bs.saveBooking(ctx, booking, previousStatus); err != nil {
		return model.Booking{}, err
	}
	bs.logger.Info("booking cancelled", "booking_id", booking.BookingId, "by", requester.Email)
	return booking, nil
}

func (bs *BookingService) AdminUpdateBooking(ctx context.Context, bookingId string, patch BookingPatch, requester model.Requester) (model.Booking, error) {
	if err := requireAdmin(requester); err != nil {
		return model.Booking{}, err
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return model.Booking{}, errs.InvalidInput("unknown booking status %q", *patch.Status)
	}
	if patch.GuestCount != nil && *patch.GuestCount < 1 {
		return model.Booking{}, errs.InvalidInput("guest_count must be at least 1")
	}

	booking, err := bs.bookingDao.GetBooking(ctx, bookingId)
	if err != nil {
		return model.Booking{}, lookupError(err, "booking")
	}

	previousStatus := booking.Status
	if patch.Status != nil && !previousStatus.CanTransitionTo(*patch.Status) {
		if previousStatus.IsTerminal() {
			return model.Booking{}, errs.InvalidState(fmt.Sprintf("booking is %s and can no longer change status", previousStatus))
		}
		return model.Booking{}, errs.InvalidState(fmt.Sprintf("booking cannot move from %s to %s", previousStatus, *patch.Status))
	}

	if patch.GuestCount != nil {
		room, roomErr := bs.roomDao.GetRoom(ctx, booking.RoomId)
		if roomErr != nil {
			return model.Booking{}, lookupError(roomErr, "room")
		}
		if *patch.GuestCount > room.Capacity {
			return model.Booking{}, errs.InvalidInput("guest_count exceeds room capacity of %d", room.Capacity)
		}
		booking.GuestCount = *patch.GuestCount
	}
	if patch.Status != nil {
		booking.Status = *patch.Status
	}
	if patch.SpecialRequests != nil {
		booking.SpecialRequests = *patch.SpecialRequests
	}
	booking.UpdatedAt = bs.clock.Now()

	if err = bs.saveBooking(ctx, booking, previousStatus); err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

func (bs *BookingService) saveBooking(ctx context.Context, booking model.Booking, previousStatus model.BookingStatus) error {
	err := bs.bookingDao.UpdateBooking(ctx, booking, previousStatus)
	if errors.Is(err, model.ErrConditionFailed) {
		return errs.Conflict("booking was changed by another request, please retry")
	}
	if err != nil {
		return errs.Internal(err, "failed to update booking")
	}
	return nil
}

func (bs *BookingService) GetBooking(ctx context.Context, bookingId string, requester model.Requester) (model.Booking, error) {
	if err := requireAuthenticated(requester); err != nil {
		return model.Booking{}, err
	}
	booking, err := bs.bookingDao.GetBooking(ctx, bookingId)
	if err != nil {
		return model.Booking{}, lookupError(err, "booking")
	}
	if !requester.CanAccess(booking.UserId) {
		return model.Booking{}, errs.Forbidden("access denied")
	}
	return booking, nil
}

func (bs *BookingService) ListBookingsForUser(ctx context.Context, requester model.Requester) ([]model.Booking, error) {
	if err := requireAuthenticated(requester); err != nil {
		return nil, err
	}
	bookings, err := bs.bookingDao.FindBookingsByUser(ctx, requester.Email)
	if err != nil {
		return nil, errs.Internal(err, "failed to load user bookings")
	}
	sortNewestFirst(bookings)
	return bookings, nil
}

func (bs *BookingService) ListAllBookings(ctx context.Context, requester model.Requester) ([]model.Booking, error) {
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}
	bookings, err := bs.bookingDao.ScanBookings(ctx)
	if err != nil {
		return nil, errs.Internal(err, "failed to load bookings")
	}
	sortNewestFirst(bookings)
	return bookings, nil
}

func validateRequiredFields(request CreateBookingRequest) error {
	var missing []string
	if strings.TrimSpace(request.RoomId) == "" {
		missing = append(missing, "room_id")
	}
	if strings.TrimSpace(request.CheckIn) == "" {
		missing = append(missing, "check_in")
	}
	if strings.TrimSpace(request.CheckOut) == "" {
		missing = append(missing, "check_out")
	}
	if request.GuestCount < 1 {
		missing = append(missing, "guest_count")
	}
	if len(missing) > 0 {
		return errs.InvalidInput("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func parseStay(checkIn string, checkOut string) (time.Time, time.Time, error) {
	in, err := model.ParseDateTime("check_in", checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := model.ParseDateTime("check_out", checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !in.Before(out) {
		return time.Time{}, time.Time{}, errs.InvalidInput("check_out must be after check_in")
	}
	if model.Nights(in, out) < 1 {
		return time.Time{}, time.Time{}, errs.InvalidInput("a stay must be at least one night")
	}
	return in, out, nil
}

func sortNewestFirst(bookings []model.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}
