package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/krishkalaria12/snap-album/access"
)

// Session keys. Values are stored as strings.
const (
	sessionUserID   = "userId"
	sessionUsername = "username"
	sessionRole     = "role"
)

func NewSessionStore(ttl time.Duration, secure bool) *session.Store {
	return session.New(session.Config{
		Expiration:     ttl,
		KeyLookup:      "cookie:session_id",
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
}

// StartSession replaces any existing session with a fresh one holding p.
func StartSession(c *fiber.Ctx, store *session.Store, p access.Principal) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(sessionUserID, p.IDString())
	sess.Set(sessionUsername, p.Username)
	sess.Set(sessionRole, string(p.Role))
	return sess.Save()
}

func EndSession(c *fiber.Ctx, store *session.Store) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

func sessionPrincipal(c *fiber.Ctx, store *session.Store) (access.Principal, bool) {
	sess, err := store.Get(c)
	if err != nil {
		return access.Principal{}, false
	}

	rawID, _ := sess.Get(sessionUserID).(string)
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return access.Principal{}, false
	}
	username, _ := sess.Get(sessionUsername).(string)
	role, _ := sess.Get(sessionRole).(string)

	return access.Principal{
		UserID:   uint(id),
		Username: username,
		Role:     access.ParseRole(role),
	}, true
}
