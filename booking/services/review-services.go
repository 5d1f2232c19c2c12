package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"dogotel/booking/model"
	"dogotel/errs"
	"dogotel/utils"
)

const MaxCommentLength = 1000

// reviewNamespace seeds the review ids, which are derived from the reviewer
// and the room so that a second review of the same room collides on the key.
var reviewNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("reviews.dogotel"))

func reviewId(userId string, roomId string) string {
	return uuid.NewSHA1(reviewNamespace, []byte(userId+"#"+roomId)).String()
}

type CreateReviewRequest struct {
	RoomId  string `json:"room_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReviewPatch struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

type ModerationAction string

const (
	ActionApprove ModerationAction = "approve"
	ActionReject  ModerationAction = "reject"
	ActionPending ModerationAction = "pending"
)

var moderationOutcomes = map[ModerationAction]model.ReviewStatus{
	ActionApprove: model.ReviewApproved,
	ActionReject:  model.ReviewRejected,
	ActionPending: model.ReviewPending,
}

type RoomReviews struct {
	Reviews       []model.Review `json:"reviews"`
	Count         int            `json:"count"`
	AverageRating float64        `json:"average_rating"`
}

// ReviewGate only lets guests who completed a stay review a room, once.
type ReviewGate struct {
	reviewDao   model.ReviewDao
	bookingDao  model.BookingDao
	clock       utils.Clock
	logger      *slog.Logger
	autoApprove bool
}

// NewReviewGate builds a gate whose new reviews wait for moderation unless
// autoApprove is set.
func NewReviewGate(reviewDao model.ReviewDao, bookingDao model.BookingDao, clock utils.Clock, logger *slog.Logger, autoApprove bool) *ReviewGate {
	return &ReviewGate{
		reviewDao:   reviewDao,
		bookingDao:  bookingDao,
		clock:       clock,
		logger:      logger,
		autoApprove: autoApprove,
	}
}

func (rg *ReviewGate) CreateReview(ctx context.Context, request CreateReviewRequest, requester model.Requester) (model.Review, error) {
	if err := requireAuthenticated(requester); err != nil {
		return model.Review{}, err
	}
	if strings.TrimSpace(request.RoomId) == "" {
		return model.Review{}, errs.InvalidInput("room_id is required")
	}
	if err := validateRating(request.Rating); err != nil {
		return model.Review{}, err
	}
	comment, err := validateComment(request.Comment)
	if err != nil {
		return model.Review{}, err
	}

	stay, err := rg.mostRecentStay(ctx, requester.Email, request.RoomId)
	if err != nil {
		return model.Review{}, err
	}

	existing, err := rg.reviewDao.FindReviewsByUser(ctx, requester.Email)
	if err != nil {
		return model.Review{}, errs.Internal(err, "failed to load user reviews")
	}
	for _, review := range existing {
		if review.RoomId == request.RoomId {
			return model.Review{}, errs.Conflict("you have already reviewed this room")
		}
	}

	now := rg.clock.Now()
	review := model.Review{
		ReviewId:  reviewId(requester.Email, request.RoomId),
		RoomId:    request.RoomId,
		BookingId: stay.BookingId,
		UserId:    requester.Email,
		UserName:  requester.Name,
		Rating:    request.Rating,
		Comment:   comment,
		Status:    model.ReviewPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if rg.autoApprove {
		review.Status = model.ReviewApproved
	}

	err = rg.reviewDao.PutNewReview(ctx, review)
	if errors.Is(err, model.ErrConditionFailed) {
		return model.Review{}, errs.Conflict("you have already reviewed this room")
	}
	if err != nil {
		return model.Review{}, errs.Internal(err, "failed to save review")
	}
	rg.logger.Info("review created", "review_id", review.ReviewId, "room_id", review.RoomId, "status", review.Status)
	return review, nil
}

// mostRecentStay picks the newest completed booking of the user for the room.
func (rg *ReviewGate) mostRecentStay(ctx context.Context, userId string, roomId string) (model.Booking, error) {
	bookings, err := rg.bookingDao.FindBookingsByUser(ctx, userId)
	if err != nil {
		return model.Booking{}, errs.Internal(err, "failed to load user bookings")
	}
	stays := utils.Filter(bookings, func(b model.Booking) bool {
		return b.RoomId == roomId && b.Status.HasStayed()
	})
	stay, ok := utils.MaxBy(stays, func(a, b model.Booking) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	})
	if !ok {
		return model.Booking{}, errs.PreconditionFailed("you can only review rooms after a completed stay")
	}
	return stay, nil
}

func (rg *ReviewGate) ModerateReview(ctx context.Context, reviewId string, action ModerationAction, requester model.Requester) (model.Review, error) {
	if err := requireAdmin(requester); err != nil {
		return model.Review{}, err
	}
	status, ok := moderationOutcomes[action]
	if !ok {
		return model.Review{}, errs.InvalidInput("action must be one of approve, reject, pending")
	}
	review, err := rg.reviewDao.GetReview(ctx, reviewId)
	if err != nil {
		return model.Review{}, lookupError(err, "review")
	}

	review.Status = status
	review.ModeratedBy = requester.Email
	review.UpdatedAt = rg.clock.Now()
	if err = rg.reviewDao.PutReview(ctx, review); err != nil {
		return model.Review{}, errs.Internal(err, "failed to save review")
	}
	rg.logger.Info("review moderated", "review_id", reviewId, "status", status, "moderator", requester.Email)
	return review, nil
}

// UpdateReview lets the author edit a review, which sends it back to moderation.
func (rg *ReviewGate) UpdateReview(ctx context.Context, reviewId string, patch ReviewPatch, requester model.Requester) (model.Review, error) {
	if err := requireAuthenticated(requester); err != nil {
		return model.Review{}, err
	}
	if patch.Rating == nil && patch.Comment == nil {
		return model.Review{}, errs.InvalidInput("nothing to update: rating or comment is required")
	}
	review, err := rg.reviewDao.GetReview(ctx, reviewId)
	if err != nil {
		return model.Review{}, lookupError(err, "review")
	}
	if review.UserId != requester.Email {
		return model.Review{}, errs.Forbidden("only the author can edit a review")
	}

	if patch.Rating != nil {
		if err = validateRating(*patch.Rating); err != nil {
			return model.Review{}, err
		}
		review.Rating = *patch.Rating
	}
	if patch.Comment != nil {
		comment, commentErr := validateComment(*patch.Comment)
		if commentErr != nil {
			return model.Review{}, commentErr
		}
		review.Comment = comment
	}
	review.Status = model.ReviewPending
	review.ModeratedBy = ""
	review.UpdatedAt = rg.clock.Now()

	if err = rg.reviewDao.PutReview(ctx, review); err != nil {
		return model.Review{}, errs.Internal(err, "failed to save review")
	}
	return review, nil
}

func (rg *ReviewGate) DeleteReview(ctx context.Context, reviewId string, requester model.Requester) error {
	if err := requireAuthenticated(requester); err != nil {
		return err
	}
	review, err := rg.reviewDao.GetReview(ctx, reviewId)
	if err != nil {
		return lookupError(err, "review")
	}
	if !requester.CanAccess(review.UserId) {
		return errs.Forbidden("only the author or an admin can delete a review")
	}
	err = rg.reviewDao.DeleteReview(ctx, reviewId)
	if errors.Is(err, model.ErrItemNotFound) {
		return errs.NotFound("review")
	}
	if err != nil {
		return errs.Internal(err, "failed to delete review")
	}
	return nil
}

// ListRoomReviews returns the approved reviews of a room, newest first.
func (rg *ReviewGate) ListRoomReviews(ctx context.Context, roomId string) (RoomReviews, error) {
	reviews, err := rg.reviewDao.FindReviewsByRoom(ctx, roomId)
	if err != nil {
		return RoomReviews{}, errs.Internal(err, "failed to load room reviews")
	}
	approved := utils.Filter(reviews, func(r model.Review) bool {
		return r.Status == model.ReviewApproved
	})
	sortReviewsNewestFirst(approved)

	result := RoomReviews{Reviews: approved, Count: len(approved)}
	if len(approved) > 0 {
		total := 0
		for _, review := range approved {
			total += review.Rating
		}
		result.AverageRating = math.Round(float64(total)/float64(len(approved))*100) / 100
	}
	return result, nil
}

func (rg *ReviewGate) ListAllReviews(ctx context.Context, status model.ReviewStatus, requester model.Requester) ([]model.Review, error) {
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}
	switch status {
	case "", model.ReviewPending, model.ReviewApproved, model.ReviewRejected:
	default:
		return nil, errs.InvalidInput("unknown review status %q", status)
	}
	reviews, err := rg.reviewDao.ScanReviews(ctx)
	if err != nil {
		return nil, errs.Internal(err, "failed to load reviews")
	}
	if status != "" {
		reviews = utils.Filter(reviews, func(r model.Review) bool { return r.Status == status })
	}
	sortReviewsNewestFirst(reviews)
	return reviews, nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return errs.InvalidInput("rating must be between 1 and 5")
	}
	return nil
}

func validateComment(comment string) (string, error) {
	trimmed := strings.TrimSpace(comment)
	if trimmed == "" {
		return "", errs.InvalidInput("comment is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxCommentLength {
		return "", errs.InvalidInput("comment must be at most %d characters", MaxCommentLength)
	}
	return trimmed, nil
}

func sortReviewsNewestFirst(reviews []model.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}
