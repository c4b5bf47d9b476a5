package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/evidenceledger/veritas/internal/errl"
)

// AdminUser is the only user name accepted by AdminAuth.
const AdminUser = "admin"

// AdminAuth protects the admin routes with HTTP Basic authentication.
// Only the bcrypt hash of the password is kept in memory.
type AdminAuth struct {
	passwordHash []byte
}

// NewAdminAuth hashes adminPassword. An empty password is refused.
func NewAdminAuth(adminPassword string) (*AdminAuth, error) {
	if adminPassword == "" {
		return nil, errl.Errorf("admin password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, errl.Errorf("failed to hash admin password: %w", err)
	}
	return &AdminAuth{passwordHash: hash}, nil
}

// AuthMiddleware returns the admin authentication middleware
func (a *AdminAuth) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, password, ok := basicCredentials(c.Get(fiber.HeaderAuthorization))
		if !ok {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="Veritas admin"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Admin authentication required",
			})
		}

		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(AdminUser)) == 1
		passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
		if !userOK || !passOK {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="Veritas admin"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid admin credentials",
			})
		}

		return c.Next()
	}
}

func basicCredentials(header string) (user, password string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(raw), ":")
}
