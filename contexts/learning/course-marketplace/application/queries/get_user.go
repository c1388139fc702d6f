package queries

import (
	"context"
	"log/slog"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
	"academy/contexts/learning/course-marketplace/ports"
)

type GetUserQuery struct {
	Identity entities.Identity
}

type GetUserResult struct {
	User entities.User
}

type GetUserUseCase struct {
	Users  ports.UserRegistry
	Logger *slog.Logger
}

func (u GetUserUseCase) Execute(ctx context.Context, query GetUserQuery) (GetUserResult, error) {
	if query.Identity.IsZero() {
		return GetUserResult{}, domainerrors.ErrMissingIdentity
	}
	user, err := u.Users.GetUser(ctx, query.Identity)
	if err != nil {
		application.ResolveLogger(u.Logger).Debug("get user failed",
			"event", "get_user_failed",
			"module", application.ModuleName,
			"layer", "application",
			"identity", query.Identity.String(),
			"error", err.Error(),
		)
		return GetUserResult{}, err
	}
	return GetUserResult{User: user}, nil
}
