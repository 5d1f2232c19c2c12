package services

import (
	"errors"

	"dogotel/booking/model"
	"dogotel/errs"
)

func lookupError(err error, resource string) error {
	if errors.Is(err, model.ErrItemNotFound) {
		return errs.NotFound(resource)
	}
	return errs.Internal(err, "failed to load "+resource)
}

func requireAuthenticated(requester model.Requester) error {
	if !requester.IsAuthenticated() {
		return errs.Unauthorized()
	}
	return nil
}

func requireAdmin(requester model.Requester) error {
	if err := requireAuthenticated(requester); err != nil {
		return err
	}
	if !requester.IsAdmin() {
		return errs.Forbidden("admin access required")
	}
	return nil
}
