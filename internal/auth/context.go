package auth

import "github.com/gofiber/fiber/v2"

const identityKey = "identity"

// SetIdentity stores the authenticated caller in the request locals.
func SetIdentity(c *fiber.Ctx, id *Identity) {
	c.Locals(identityKey, id)
}

// IdentityFrom returns the authenticated caller, if any.
func IdentityFrom(c *fiber.Ctx) (*Identity, bool) {
	id, ok := c.Locals(identityKey).(*Identity)
	return id, ok && id != nil
}
