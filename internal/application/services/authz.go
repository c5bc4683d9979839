package services

import (
	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
)

func requireActor(actor entities.Actor) error {
	if actor.UserID == "" {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	if !actor.Role.Valid() {
		return apperrors.NewUnauthorizedError("unknown role")
	}
	return nil
}

func forbidden(action string) error {
	return apperrors.NewForbiddenError("not allowed to " + action)
}
