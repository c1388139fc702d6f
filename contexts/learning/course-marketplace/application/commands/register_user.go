package commands

import (
	"context"
	"log/slog"
	"time"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
	"academy/contexts/learning/course-marketplace/ports"
)

type RegisterUserCommand struct {
	Caller   entities.Identity
	Username string
	Bio      string
	Skills   []string
}

type RegisterUserResult struct {
	User entities.User
}

type RegisterUserUseCase struct {
	UnitOfWork  ports.UnitOfWork
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Metrics     ports.Metrics
	Logger      *slog.Logger
}

// Execute registers the caller. A second registration for the same identity
// returns ErrAlreadyRegistered and leaves the first record untouched.
func (u RegisterUserUseCase) Execute(ctx context.Context, cmd RegisterUserCommand) (result RegisterUserResult, err error) {
	started := time.Now()
	defer func() { application.ObserveOperation(u.Metrics, "register_user", started, err) }()

	logger := application.ResolveLogger(u.Logger)
	if cmd.Caller.IsZero() {
		return RegisterUserResult{}, domainerrors.ErrMissingIdentity
	}

	now := application.Now(u.Clock)
	user, err := entities.NewUser(cmd.Caller, cmd.Username, cmd.Bio, cmd.Skills, now)
	if err != nil {
		return RegisterUserResult{}, err
	}

	err = u.UnitOfWork.RunInTx(ctx, func(regs ports.Registries) error {
		if err := regs.Users.RegisterUser(ctx, user); err != nil {
			return err
		}
		message, err := application.NewOutboxMessage(ctx, u.IDGenerator, application.EventSpec{
			EventType:        application.EventUserRegistered,
			PartitionKeyPath: "identity",
			PartitionKey:     user.Identity.String(),
			OccurredAt:       now,
			Data: map[string]any{
				"identity": user.Identity.String(),
				"username": user.Username,
			},
		})
		if err != nil {
			return err
		}
		return regs.Outbox.AppendOutbox(ctx, message)
	})
	if err != nil {
		logger.Warn("register user rejected",
			"event", "register_user_failed",
			"module", application.ModuleName,
			"layer", "application",
			"identity", cmd.Caller.String(),
			"error", err.Error(),
		)
		return RegisterUserResult{}, err
	}

	logger.Info("user registered",
		"event", "course_marketplace_user_registered",
		"module", application.ModuleName,
		"layer", "application",
		"identity", user.Identity.String(),
	)
	return RegisterUserResult{User: user}, nil
}
