package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/logging"
	"github.com/hilthontt/doctrack/internal/infrastructure/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "doctrack/usecases/account"

type AccountUseCase interface {
	Register(ctx context.Context, name, email, password, department string) (*domain.User, error)
	// Authenticate answers ErrInvalidCredentials for both an unknown
	// email/department pair and a wrong password.
	Authenticate(ctx context.Context, email, password, department string) (*domain.User, error)
}

type MetricsRecorder interface {
	IncSignup(outcome string)
	IncLogin(department, outcome string)
}

type accountUseCase struct {
	users   domain.UserRepository
	hasher  domain.PasswordHasher
	metrics MetricsRecorder
	logger  logging.Logger
	tracer  trace.Tracer
}

func NewAccountUseCase(
	users domain.UserRepository,
	hasher domain.PasswordHasher,
	metrics MetricsRecorder,
	logger logging.Logger,
) AccountUseCase {
	return &accountUseCase{
		users:   users,
		hasher:  hasher,
		metrics: metrics,
		logger:  logger,
		tracer:  tracing.GetTracer(tracerName),
	}
}

func (uc *accountUseCase) Register(ctx context.Context, name, email, password, department string) (user *domain.User, err error) {
	ctx, span := uc.tracer.Start(ctx, "account.Register")
	defer func() {
		tracing.RecordError(span, err)
		if uc.metrics != nil {
			uc.metrics.IncSignup(outcome(err))
		}
		span.End()
	}()

	user, err = domain.NewUser(name, email, password, department, uc.hasher)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user.department", user.Department.String()))

	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			uc.logger.Info(logging.Validation, logging.Signup, "email already registered", map[logging.ExtraKey]any{
				logging.Email: user.Email,
			})
			return nil, err
		}
		uc.logger.Error(logging.Storage, logging.Signup, "failed to store user", map[logging.ExtraKey]any{
			logging.Email:        user.Email,
			logging.ErrorMessage: err.Error(),
		})
		return nil, fmt.Errorf("store user: %w", err)
	}

	uc.logger.Info(logging.Internal, logging.Signup, "user registered", map[logging.ExtraKey]any{
		logging.Email:      user.Email,
		logging.Department: user.Department.String(),
	})
	return user, nil
}

func (uc *accountUseCase) Authenticate(ctx context.Context, email, password, department string) (user *domain.User, err error) {
	ctx, span := uc.tracer.Start(ctx, "account.Authenticate")
	defer func() {
		tracing.RecordError(span, err)
		if uc.metrics != nil {
			uc.metrics.IncLogin(department, outcome(err))
		}
		span.End()
	}()

	creds, err := domain.NewCredentials(email, password, department)
	if err != nil {
		// keep the metric label set closed
		department = "invalid"
		return nil, err
	}
	span.SetAttributes(attribute.String("user.department", creds.Department.String()))

	user, err = uc.users.FindByEmailAndDepartment(ctx, creds.Email, creds.Department)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		uc.logger.Error(logging.Storage, logging.Login, "failed to look up user", map[logging.ExtraKey]any{
			logging.Email:        creds.Email,
			logging.ErrorMessage: err.Error(),
		})
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := uc.hasher.Compare(user.Password, creds.Password); err != nil {
		uc.logger.Info(logging.Validation, logging.Login, "password mismatch", map[logging.ExtraKey]any{
			logging.Email:      creds.Email,
			logging.Department: creds.Department.String(),
		})
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidDepartment),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInvalidCredentials):
		return "rejected"
	default:
		return "error"
	}
}
