// Package handler contains the echo handlers of the JSON API.
package handler

import (
	"net/http"
	"strings"

	"quill/internal/delivery/api/response"
	"quill/internal/delivery/api/validator"
	domainerrors "quill/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// bindAndValidate decodes the request into req, applies normalize and runs the validation tags.
// When it reports false the error response has already been written.
func bindAndValidate(c echo.Context, req any, normalize func()) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, response.BindingError(c, domainerrors.ErrInvalidInput.ErrorCode(), domainerrors.ErrInvalidInput.Message())
	}

	if normalize != nil {
		normalize()
	}

	if err := c.Validate(req); err != nil {
		return false, response.BadRequestWithDetails(c,
			domainerrors.ErrValidationFailed.ErrorCode(),
			domainerrors.ErrValidationFailed.Message(),
			validator.Describe(err),
		)
	}

	return true, nil
}

// HealthCheck reports that the process is serving requests.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}

func trim(s *string) {
	*s = strings.TrimSpace(*s)
}
