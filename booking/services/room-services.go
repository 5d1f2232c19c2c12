package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"dogotel/booking/model"
	"dogotel/errs"
	"dogotel/utils"
)

type CreateRoomRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Size          string   `json:"size"`
	Capacity      int      `json:"capacity"`
	PricePerNight float64  `json:"price_per_night"`
	IsAvailable   *bool    `json:"is_available"`
	Amenities     []string `json:"amenities"`
	Image         string   `json:"image"`
}

type RoomPatch struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Size          *string   `json:"size"`
	Capacity      *int      `json:"capacity"`
	PricePerNight *float64  `json:"price_per_night"`
	IsAvailable   *bool     `json:"is_available"`
	Amenities     *[]string `json:"amenities"`
	Image         *string   `json:"image"`
}

// RoomFilter narrows ListRooms. CheckIn and CheckOut must be given together and
// keep only rooms free for the whole stay.
type RoomFilter struct {
	MinPrice *float64
	MaxPrice *float64
	Size     string
	CheckIn  string
	CheckOut string
}

type RoomService struct {
	roomDao    model.RoomDao
	bookingDao model.BookingDao
	clock      utils.Clock
	logger     *slog.Logger
}

func NewRoomService(roomDao model.RoomDao, bookingDao model.BookingDao, clock utils.Clock, logger *slog.Logger) *RoomService {
	return &RoomService{roomDao: roomDao, bookingDao: bookingDao, clock: clock, logger: logger}
}

func (rs *RoomService) CreateRoom(ctx context.Context, request CreateRoomRequest, requester model.Requester) (model.Room, error) {
	if err := requireAdmin(requester); err != nil {
		return model.Room{}, err
	}
	var missing []string
	for field, value := range map[string]string{"name": request.Name, "description": request.Description, "size": request.Size} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return model.Room{}, errs.InvalidInput("missing required fields: %s", strings.Join(missing, ", "))
	}
	if err := validateRoomNumbers(request.Capacity, request.PricePerNight); err != nil {
		return model.Room{}, err
	}

	now := rs.clock.Now()
	room := model.Room{
		RoomId:        uuid.NewString(),
		Name:          strings.TrimSpace(request.Name),
		Description:   request.Description,
		Size:          request.Size,
		Capacity:      request.Capacity,
		PricePerNight: request.PricePerNight,
		IsAvailable:   true,
		Amenities:     request.Amenities,
		Image:         request.Image,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if request.IsAvailable != nil {
		room.IsAvailable = *request.IsAvailable
	}
	if room.Amenities == nil {
		room.Amenities = []string{}
	}

	if err := rs.roomDao.PutRoom(ctx, room); err != nil {
		return model.Room{}, errs.Internal(err, "failed to save room")
	}
	rs.logger.Info("room created", "room_id", room.RoomId)
	return room, nil
}

func (rs *RoomService) UpdateRoom(ctx context.Context, roomId string, patch RoomPatch, requester model.Requester) (model.Room, error) {
	if err := requireAdmin(requester); err != nil {
		return model.Room{}, err
	}
	room, err := rs.roomDao.GetRoom(ctx, roomId)
	if err != nil {
		return model.Room{}, lookupError(err, "room")
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return model.Room{}, errs.InvalidInput("name cannot be empty")
		}
		room.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		room.Description = *patch.Description
	}
	if patch.Size != nil {
		room.Size = *patch.Size
	}
	if patch.Capacity != nil {
		room.Capacity = *patch.Capacity
	}
	if patch.PricePerNight != nil {
		room.PricePerNight = *patch.PricePerNight
	}
	if patch.IsAvailable != nil {
		room.IsAvailable = *patch.IsAvailable
	}
	if patch.Amenities != nil {
		room.Amenities = *patch.Amenities
	}
	if patch.Image != nil {
		room.Image = *patch.Image
	}
	if err = validateRoomNumbers(room.Capacity, room.PricePerNight); err != nil {
		return model.Room{}, err
	}
	room.UpdatedAt = rs.clock.Now()

	if err = rs.roomDao.PutRoom(ctx, room); err != nil {
		return model.Room{}, errs.Internal(err, "failed to save room")
	}
	return room, nil
}

// DeleteRoom refuses to remove a room that still has active bookings.
func (rs *RoomService) DeleteRoom(ctx context.Context, roomId string, requester model.Requester) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}
	if _, err := rs.roomDao.GetRoom(ctx, roomId); err != nil {
		return lookupError(err, "room")
	}
	bookings, err := rs.bookingDao.FindBookingsByRoom(ctx, roomId)
	if err != nil {
		return errs.Internal(err, "failed to load room bookings")
	}
	for _, booking := range bookings {
		if booking.Status.IsActive() {
			return errs.InvalidState("cannot delete a room with active bookings")
		}
	}

	err = rs.roomDao.DeleteRoom(ctx, roomId)
	if errors.Is(err, model.ErrItemNotFound) {
		return errs.NotFound("room")
	}
	if err != nil {
		return errs.Internal(err, "failed to delete room")
	}
	rs.logger.Info("room deleted", "room_id", roomId, "by", requester.Email)
	return nil
}

func (rs *RoomService) GetRoom(ctx context.Context, roomId string) (model.Room, error) {
	room, err := rs.roomDao.GetRoom(ctx, roomId)
	if err != nil {
		return model.Room{}, lookupError(err, "room")
	}
	return room, nil
}

func (rs *RoomService) ListRooms(ctx context.Context, filter RoomFilter) ([]model.Room, error) {
	if (filter.CheckIn == "") != (filter.CheckOut == "") {
		return nil, errs.InvalidInput("check_in and check_out must be provided together")
	}
	rooms, err := rs.roomDao.ScanRooms(ctx)
	if err != nil {
		return nil, errs.Internal(err, "failed to load rooms")
	}

	rooms = utils.Filter(rooms, func(room model.Room) bool {
		if filter.MinPrice != nil && room.PricePerNight < *filter.MinPrice {
			return false
		}
		if filter.MaxPrice != nil && room.PricePerNight > *filter.MaxPrice {
			return false
		}
		return filter.Size == "" || strings.EqualFold(room.Size, filter.Size)
	})

	if filter.CheckIn != "" {
		checkIn, checkOut, stayErr := parseStay(filter.CheckIn, filter.CheckOut)
		if stayErr != nil {
			return nil, stayErr
		}
		var free []model.Room
		for _, room := range rooms {
			if !room.IsAvailable {
				continue
			}
			bookings, findErr := rs.bookingDao.FindBookingsByRoom(ctx, room.RoomId)
			if findErr != nil {
				return nil, errs.Internal(findErr, "failed to load room bookings")
			}
			if model.IsStayAvailable(bookings, checkIn, checkOut) {
				free = append(free, room)
			}
		}
		rooms = free
	}

	sort.SliceStable(rooms, func(i, j int) bool {
		if rooms[i].PricePerNight != rooms[j].PricePerNight {
			return rooms[i].PricePerNight < rooms[j].PricePerNight
		}
		return rooms[i].Name < rooms[j].Name
	})
	if rooms == nil {
		rooms = []model.Room{}
	}
	return rooms, nil
}

func validateRoomNumbers(capacity int, price float64) error {
	if capacity < 1 {
		return errs.InvalidInput("capacity must be at least 1")
	}
	if price < 0 {
		return errs.InvalidInput("price_per_night cannot be negative")
	}
	return nil
}
