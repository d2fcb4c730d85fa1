package impl

import (
	"context"
	"log/slog"

	deliverycontext "quill/internal/delivery/context"
	"quill/internal/domain/entity"
	domainerrors "quill/internal/domain/errors"
	"quill/internal/domain/repository"
	"quill/internal/domain/service"
	"quill/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	clock        service.Clock
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Clock        service.Clock
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		clock:        params.Clock,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup creates an account under the normalized email and signs the new user in.
func (srv *authService) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.AuthOutput, error) {
	email := entity.NormalizeEmail(input.Email)

	exists, err := srv.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check email availability")
	}
	if exists {
		srv.log(ctx).Info("Signup rejected, email already registered", slog.String("email", email))

		return nil, domainerrors.ErrEmailAlreadyExists.WrapMessage("signup")
	}

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, service.ErrPasswordTooLong) {
			return nil, domainerrors.ErrValidationFailed.WithDetails("password must be at most 72 bytes")
		}

		srv.log(ctx).Error("Failed to hash password during signup", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	userID, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate user id")
	}

	now := timestamp(srv.clock)
	user := &entity.User{
		ID:           userID,
		Email:        email,
		Name:         input.Name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := srv.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrEmailAlreadyExists) {
			srv.log(ctx).Info("Signup lost a race on the email index", slog.String("email", email))

			return nil, err
		}

		return nil, errors.Wrap(err, "failed to create user")
	}

	srv.log(ctx).Info("User signed up", slog.String("userID", user.ID.String()))

	return srv.issue(ctx, user)
}

// Login verifies the password of the account registered under the normalized email.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	email := entity.NormalizeEmail(input.Email)

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Info("Login for unknown email", slog.String("email", email))

			return nil, domainerrors.ErrUserNotFound.WrapMessage("login")
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login with wrong password", slog.String("userID", user.ID.String()))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login")
	}

	return srv.issue(ctx, user)
}

// Profile returns the account of an authenticated caller.
func (srv *authService) Profile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("profile")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user, nil
}

func (srv *authService) issue(ctx context.Context, user *entity.User) (*usecase.AuthOutput, error) {
	token, err := srv.tokenService.Issue(user.ID, user.Email)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.String("userID", user.ID.String()), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrTokenIssueFailed, err.Error())
	}

	return &usecase.AuthOutput{
		Token: token,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}
