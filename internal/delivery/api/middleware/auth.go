package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "quill/internal/delivery/context"
	"quill/internal/domain/entity"
	domainerrors "quill/internal/domain/errors"
	"quill/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const bearerScheme = "bearer"

// AuthMiddleware authenticates requests carrying a bearer access token.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, logger: logger}
}

// Authenticate verifies the bearer token and records the caller's identity on the context.
// Every failure is reported as the same 401 so clients cannot distinguish the reason.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		logger := deliverycontext.GetLoggerOrDefault(ctx, m.logger)

		tokenString, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return domainerrors.ErrUnauthenticated.WrapMessage("missing bearer token")
		}

		claims, err := m.tokenSvc.Verify(tokenString)
		if err != nil {
			logger.Debug("Bearer token rejected", slog.Any("error", err))

			return domainerrors.ErrUnauthenticated.WrapMessage(err.Error())
		}

		userID, err := claims.UserID()
		if err != nil {
			return domainerrors.ErrUnauthenticated.WrapMessage("invalid subject")
		}

		deliverycontext.SetIdentity(c, &entity.Identity{UserID: userID, Email: claims.Email})

		ctx = deliverycontext.WithLogger(ctx, logger.With(slog.String("user_id", userID.String())))
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// GetUserID returns the authenticated caller's ID.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	identity, ok := deliverycontext.GetIdentity(c)
	if !ok {
		return uuid.Nil, false
	}

	return identity.UserID, true
}

// bearerToken extracts the credentials of an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}
