package context

import (
	"quill/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// KeyIdentity is the echo context key of the authenticated caller.
const KeyIdentity ContextKey = "identity"

// SetIdentity records the verified caller on the echo context.
func SetIdentity(c echo.Context, identity *entity.Identity) {
	c.Set(string(KeyIdentity), identity)
}

// GetIdentity returns the verified caller, if the request was authenticated.
func GetIdentity(c echo.Context) (*entity.Identity, bool) {
	identity, ok := c.Get(string(KeyIdentity)).(*entity.Identity)

	return identity, ok && identity != nil
}
