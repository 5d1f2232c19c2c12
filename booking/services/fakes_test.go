package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"dogotel/booking/model"
	"dogotel/utils"
)

var (
	testNow   = time.Date(2023, 12, 1, 9, 0, 0, 0, time.UTC)
	guest     = model.Requester{Email: "ana@example.com", Name: "Ana", Role: model.RoleUser}
	otherUser = model.Requester{Email: "bo@example.com", Name: "Bo", Role: model.RoleUser}
	admin     = model.Requester{Email: "staff@dogotel.com", Name: "Staff", Role: model.RoleAdmin}
)

var testLockSettings = LockSettings{
	Lease:        time.Second,
	MaxRetries:   50,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
}

type fakeRoomDao struct {
	mu    sync.Mutex
	rooms map[string]model.Room
	err   error
}

func newFakeRoomDao(rooms ...model.Room) *fakeRoomDao {
	dao := &fakeRoomDao{rooms: map[string]model.Room{}}
	for _, room := range rooms {
		dao.rooms[room.RoomId] = room
	}
	return dao
}

func (f *fakeRoomDao) GetRoom(_ context.Context, roomId string) (model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Room{}, f.err
	}
	room, ok := f.rooms[roomId]
	if !ok {
		return model.Room{}, model.ErrItemNotFound
	}
	return room, nil
}

func (f *fakeRoomDao) PutRoom(_ context.Context, room model.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[room.RoomId] = room
	return nil
}

func (f *fakeRoomDao) DeleteRoom(_ context.Context, roomId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[roomId]; !ok {
		return model.ErrItemNotFound
	}
	delete(f.rooms, roomId)
	return nil
}

func (f *fakeRoomDao) ScanRooms(_ context.Context) ([]model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var rooms []model.Room
	for _, room := range f.rooms {
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// fakeBookingDao keeps the stays of the room lock fake in step with its
// bookings when a ledger is attached. With staleIndex set, index reads miss
// everything written after construction, like a lagging GSI.
type fakeBookingDao struct {
	mu         sync.Mutex
	bookings   map[string]model.Booking
	indexed    map[string]bool
	ledger     *fakeRoomLockDao
	staleIndex bool
	puts       int
	err        error
}

func newFakeBookingDao(bookings ...model.Booking) *fakeBookingDao {
	dao := &fakeBookingDao{bookings: map[string]model.Booking{}, indexed: map[string]bool{}}
	for _, booking := range bookings {
		dao.bookings[booking.BookingId] = booking
		dao.indexed[booking.BookingId] = true
	}
	return dao
}

func (f *fakeBookingDao) GetBooking(_ context.Context, bookingId string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingId]
	if !ok {
		return model.Booking{}, model.ErrItemNotFound
	}
	return booking, nil
}

func (f *fakeBookingDao) PutNewBooking(_ context.Context, booking model.Booking, hold model.RoomHold) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.bookings[booking.BookingId]; ok {
		return model.ErrConditionFailed
	}
	if f.ledger != nil {
		if err := f.ledger.recordStay(booking.RoomId, booking.Stay(), hold); err != nil {
			return err
		}
	}
	f.bookings[booking.BookingId] = booking
	f.puts++
	return nil
}

func (f *fakeBookingDao) UpdateBooking(_ context.Context, booking model.Booking, previousStatus model.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.bookings[booking.BookingId]
	if !ok || stored.Status != previousStatus {
		return model.ErrConditionFailed
	}
	if f.ledger != nil && previousStatus.IsActive() && !booking.Status.IsActive() {
		f.ledger.dropStay(booking.RoomId, booking.BookingId)
	}
	f.bookings[booking.BookingId] = booking
	return nil
}

func (f *fakeBookingDao) FindBookingsByRoom(_ context.Context, roomId string) ([]model.Booking, error) {
	return f.find(func(b model.Booking) bool { return b.RoomId == roomId })
}

func (f *fakeBookingDao) FindBookingsByUser(_ context.Context, userId string) ([]model.Booking, error) {
	return f.find(func(b model.Booking) bool { return b.UserId == userId })
}

func (f *fakeBookingDao) ScanBookings(_ context.Context) ([]model.Booking, error) {
	return f.find(func(model.Booking) bool { return true })
}

func (f *fakeBookingDao) find(keep func(model.Booking) bool) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found []model.Booking
	for id, booking := range f.bookings {
		if f.staleIndex && !f.indexed[id] {
			continue
		}
		if keep(booking) {
			found = append(found, booking)
		}
	}
	return found, f.err
}

func (f *fakeBookingDao) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

type fakeReviewDao struct {
	mu      sync.Mutex
	reviews map[string]model.Review
}

func newFakeReviewDao(reviews ...model.Review) *fakeReviewDao {
	dao := &fakeReviewDao{reviews: map[string]model.Review{}}
	for _, review := range reviews {
		dao.reviews[review.ReviewId] = review
	}
	return dao
}

func (f *fakeReviewDao) GetReview(_ context.Context, reviewId string) (model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	review, ok := f.reviews[reviewId]
	if !ok {
		return model.Review{}, model.ErrItemNotFound
	}
	return review, nil
}

func (f *fakeReviewDao) PutNewReview(_ context.Context, review model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[review.ReviewId]; ok {
		return model.ErrConditionFailed
	}
	f.reviews[review.ReviewId] = review
	return nil
}

func (f *fakeReviewDao) PutReview(_ context.Context, review model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews[review.ReviewId] = review
	return nil
}

func (f *fakeReviewDao) DeleteReview(_ context.Context, reviewId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[reviewId]; !ok {
		return model.ErrItemNotFound
	}
	delete(f.reviews, reviewId)
	return nil
}

func (f *fakeReviewDao) FindReviewsByRoom(_ context.Context, roomId string) ([]model.Review, error) {
	return f.find(func(r model.Review) bool { return r.RoomId == roomId }), nil
}

func (f *fakeReviewDao) FindReviewsByUser(_ context.Context, userId string) ([]model.Review, error) {
	return f.find(func(r model.Review) bool { return r.UserId == userId }), nil
}

func (f *fakeReviewDao) ScanReviews(_ context.Context) ([]model.Review, error) {
	return f.find(func(model.Review) bool { return true }), nil
}

func (f *fakeReviewDao) find(keep func(model.Review) bool) []model.Review {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found []model.Review
	for _, review := range f.reviews {
		if keep(review) {
			found = append(found, review)
		}
	}
	return found
}

type roomLease struct {
	owner string
	until time.Time
}

// fakeRoomLockDao mirrors the conditional updates of the DynamoDB lock table,
// including the stays map. Stay reads are slow so that concurrent creations
// overlap inside the check-then-write window.
type fakeRoomLockDao struct {
	mu        sync.Mutex
	leases    map[string]roomLease
	stays     map[string]map[string]model.Stay
	readDelay time.Duration
	acquired  int
	released  int
}

func newFakeRoomLockDao() *fakeRoomLockDao {
	return &fakeRoomLockDao{leases: map[string]roomLease{}, stays: map[string]map[string]model.Stay{}}
}

func (f *fakeRoomLockDao) AcquireRoomLock(_ context.Context, roomId string, instanceId string, leaseUntil time.Time, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lease, held := f.leases[roomId]
	if held && lease.owner != instanceId && now.Before(lease.until) {
		return model.ErrRoomLocked
	}
	f.leases[roomId] = roomLease{owner: instanceId, until: leaseUntil}
	f.acquired++
	return nil
}

func (f *fakeRoomLockDao) ReleaseRoomLock(_ context.Context, roomId string, instanceId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lease, held := f.leases[roomId]; held && lease.owner == instanceId {
		delete(f.leases, roomId)
		f.released++
	}
	return nil
}

func (f *fakeRoomLockDao) GetRoomStays(_ context.Context, roomId string) ([]model.Stay, error) {
	f.mu.Lock()
	var stays []model.Stay
	for _, stay := range f.stays[roomId] {
		stays = append(stays, stay)
	}
	f.mu.Unlock()
	time.Sleep(f.readDelay)
	return stays, nil
}

func (f *fakeRoomLockDao) recordStay(roomId string, stay model.Stay, hold model.RoomHold) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lease, held := f.leases[roomId]; !held || lease.owner != hold.InstanceId {
		return model.ErrConditionFailed
	}
	if f.stays[roomId] == nil {
		f.stays[roomId] = map[string]model.Stay{}
	}
	for _, expired := range hold.ExpiredStays {
		delete(f.stays[roomId], expired)
	}
	f.stays[roomId][stay.BookingId] = stay
	return nil
}

func (f *fakeRoomLockDao) dropStay(roomId string, bookingId string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stays[roomId], bookingId)
}

func (f *fakeRoomLockDao) stayIds(roomId string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id := range f.stays[roomId] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type mockEventSink struct {
	mock.Mock
}

func (m *mockEventSink) PublishBookingCreated(ctx context.Context, evt model.BookingCreatedEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

type recordingNotifier struct {
	mu         sync.Mutex
	sent       []model.Notification
	err        error
	failTopics map[string]error
}

func (r *recordingNotifier) Notify(_ context.Context, notification model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if err := r.failTopics[notification.TopicArn]; err != nil {
		return err
	}
	r.sent = append(r.sent, notification)
	return nil
}

func testRoom(id string, capacity int, price float64) model.Room {
	return model.Room{
		RoomId:        id,
		Name:          "Suite " + id,
		Size:          "large",
		Capacity:      capacity,
		PricePerNight: price,
		IsAvailable:   true,
		Amenities:     []string{"bed"},
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
}

func testBooking(id string, roomId string, userId string, checkIn string, checkOut string, status model.BookingStatus) model.Booking {
	in, _ := model.ParseDateTime("check_in", checkIn)
	out, _ := model.ParseDateTime("check_out", checkOut)
	return model.Booking{
		BookingId:  id,
		UserId:     userId,
		RoomId:     roomId,
		CheckIn:    in,
		CheckOut:   out,
		GuestCount: 1,
		Status:     status,
		CreatedAt:  testNow,
		UpdatedAt:  testNow,
	}
}

type bookingFixture struct {
	rooms    *fakeRoomDao
	bookings *fakeBookingDao
	locks    *fakeRoomLockDao
	sink     *mockEventSink
	clock    *utils.MockClock
	service  *BookingService
}

func newBookingFixture(rooms ...model.Room) *bookingFixture {
	f := &bookingFixture{
		rooms:    newFakeRoomDao(rooms...),
		bookings: newFakeBookingDao(),
		locks:    newFakeRoomLockDao(),
		sink:     &mockEventSink{},
		clock:    utils.NewMockClock(testNow),
	}
	f.bookings.ledger = f.locks
	f.service = NewBookingService(f.rooms, f.bookings, f.locks, f.sink, f.clock, utils.NopLogger(), testLockSettings, time.Second)
	return f
}

// withBookings replaces the stored bookings and records the stays of the
// active ones on their rooms.
func (f *bookingFixture) withBookings(bookings ...model.Booking) {
	f.bookings = newFakeBookingDao(bookings...)
	f.bookings.ledger = f.locks
	for _, booking := range bookings {
		if !booking.Status.IsActive() {
			continue
		}
		if f.locks.stays[booking.RoomId] == nil {
			f.locks.stays[booking.RoomId] = map[string]model.Stay{}
		}
		f.locks.stays[booking.RoomId][booking.BookingId] = booking.Stay()
	}
	f.service.bookingDao = f.bookings
}

type fakeCatalogDao struct {
	items map[string]model.CatalogItem
	err   error
}

func newFakeCatalogDao(items ...model.CatalogItem) *fakeCatalogDao {
	dao := &fakeCatalogDao{items: map[string]model.CatalogItem{}}
	for _, item := range items {
		dao.items[item.Id] = item
	}
	return dao
}

func (f *fakeCatalogDao) GetCatalogItem(_ context.Context, id string) (model.CatalogItem, error) {
	item, ok := f.items[id]
	if !ok {
		return model.CatalogItem{}, model.ErrItemNotFound
	}
	return item, nil
}

func (f *fakeCatalogDao) ScanCatalog(_ context.Context) ([]model.CatalogItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var items []model.CatalogItem
	for _, item := range f.items {
		items = append(items, item)
	}
	return items, nil
}

type fakeUserDao struct {
	mu    sync.Mutex
	users map[string]model.UserProfile
	puts  int
}

func newFakeUserDao(users ...model.UserProfile) *fakeUserDao {
	dao := &fakeUserDao{users: map[string]model.UserProfile{}}
	for _, user := range users {
		dao.users[user.Email] = user
	}
	return dao
}

func (f *fakeUserDao) GetUser(_ context.Context, email string) (model.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return model.UserProfile{}, model.ErrItemNotFound
	}
	return user, nil
}

func (f *fakeUserDao) PutUser(_ context.Context, user model.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Email]; ok {
		return model.ErrConditionFailed
	}
	f.users[user.Email] = user
	f.puts++
	return nil
}

// fakeSubscriber keeps subscriptions per topic, keyed by email. New ones stay
// pending until confirm is called.
type fakeSubscriber struct {
	topics map[string]map[string]model.EmailSubscription
	err    error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{topics: map[string]map[string]model.EmailSubscription{}}
}

func (f *fakeSubscriber) FindEmailSubscription(_ context.Context, topicArn string, email string) (model.EmailSubscription, error) {
	if f.err != nil {
		return model.EmailSubscription{}, f.err
	}
	subscription, ok := f.topics[topicArn][email]
	if !ok {
		return model.EmailSubscription{}, model.ErrItemNotFound
	}
	return subscription, nil
}

func (f *fakeSubscriber) SubscribeEmail(_ context.Context, topicArn string, email string) (model.EmailSubscription, error) {
	if f.topics[topicArn] == nil {
		f.topics[topicArn] = map[string]model.EmailSubscription{}
	}
	subscription := model.EmailSubscription{TopicArn: topicArn, Email: email, SubscriptionArn: "pending confirmation"}
	f.topics[topicArn][email] = subscription
	return subscription, nil
}

func (f *fakeSubscriber) Unsubscribe(_ context.Context, subscription model.EmailSubscription) error {
	delete(f.topics[subscription.TopicArn], subscription.Email)
	return nil
}

func (f *fakeSubscriber) confirm(topicArn string, email string) {
	subscription := f.topics[topicArn][email]
	subscription.SubscriptionArn = topicArn + ":" + email
	f.topics[topicArn][email] = subscription
}
