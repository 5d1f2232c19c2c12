package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"dogotel/booking/model"
	"dogotel/errs"
	"dogotel/utils"
)

type UserService struct {
	userDao model.UserDao
	clock   utils.Clock
	logger  *slog.Logger
}

func NewUserService(userDao model.UserDao, clock utils.Clock, logger *slog.Logger) *UserService {
	return &UserService{userDao: userDao, clock: clock, logger: logger}
}

// GetUserProfile returns the stored profile of email. Users reading their own
// profile for the first time get one built from their identity claims, which
// is stored for later reads.
func (us *UserService) GetUserProfile(ctx context.Context, email string, requester model.Requester) (model.UserProfile, error) {
	if err := requireAuthenticated(requester); err != nil {
		return model.UserProfile{}, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return model.UserProfile{}, errs.InvalidInput("user email is required")
	}
	if !requester.CanAccess(email) {
		return model.UserProfile{}, errs.Forbidden("access denied")
	}

	profile, err := us.userDao.GetUser(ctx, email)
	if err == nil {
		if profile.Username == "" {
			profile.Username = defaultUsername(profile.Email, "")
		}
		return profile, nil
	}
	if !errors.Is(err, model.ErrItemNotFound) {
		return model.UserProfile{}, errs.Internal(err, "failed to load user")
	}
	if requester.Email != email {
		return model.UserProfile{}, errs.NotFound("user")
	}

	now := us.clock.Now()
	profile = model.UserProfile{
		Email:     requester.Email,
		Username:  defaultUsername(requester.Email, requester.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = us.userDao.PutUser(ctx, profile)
	if errors.Is(err, model.ErrConditionFailed) {
		// Created by a concurrent first read.
		stored, getErr := us.userDao.GetUser(ctx, email)
		if getErr != nil {
			return model.UserProfile{}, lookupError(getErr, "user")
		}
		return stored, nil
	}
	if err != nil {
		us.logger.Warn("could not store user profile", "email", email, "error", err)
	}
	return profile, nil
}

func defaultUsername(email string, name string) string {
	if name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
