package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-album/access"
	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/krishkalaria12/snap-album/models"
)

type fakeTokens map[string]access.Principal

func (f fakeTokens) ParseToken(tokenStr string) (access.Principal, error) {
	p, ok := f[tokenStr]
	if !ok {
		return access.Principal{}, errors.New("bad token")
	}
	return p, nil
}

type fakeUsers map[uint]models.User

func (f fakeUsers) FindByID(_ context.Context, userID uint) (models.User, error) {
	u, ok := f[userID]
	if !ok {
		return models.User{}, apperr.NotFound("User not found")
	}
	return u, nil
}

func newTestApp() *fiber.App {
	store := NewSessionStore(time.Hour, false)
	tokens := fakeTokens{
		"good":    {UserID: 9, Username: "tok", Role: access.RoleAdmin},
		"gone":    {UserID: 12, Username: "ghost", Role: access.RoleUser},
		"demoted": {UserID: 4, Username: "alice", Role: access.RoleAdmin},
	}
	users := fakeUsers{
		4: {UserID: 4, Username: "alice", Role: "user"},
		9: {UserID: 9, Username: "tok", Role: "admin"},
	}

	app := fiber.New()
	app.Post("/login", func(c *fiber.Ctx) error {
		if err := StartSession(c, store, access.Principal{UserID: 4, Username: "alice", Role: access.RoleUser}); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/logout", func(c *fiber.Ctx) error {
		if err := EndSession(c, store); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	private := app.Group("/private", AuthMiddleware(store, tokens, users))
	private.Get("/whoami", func(c *fiber.Ctx) error {
		p, ok := Principal(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(p.IDString() + ":" + p.Username + ":" + string(p.Role))
	})
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, string, *http.Response) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp.StatusCode, string(body), resp
}

func TestRejectsAnonymous(t *testing.T) {
	app := newTestApp()

	status, body, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/private/whoami", nil))
	if status != fiber.StatusUnauthorized || body != `{"error":"Unauthorized"}` {
		t.Fatalf("got %d %s", status, body)
	}

	req := httptest.NewRequest(http.MethodGet, "/private/whoami", nil)
	req.Header.Set("Authorization", "Bearer forged")
	if status, _, _ := do(t, app, req); status != fiber.StatusUnauthorized {
		t.Fatalf("forged token: got %d", status)
	}
}

func TestBearerToken(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/private/whoami", nil)
	req.Header.Set("Authorization", "Bearer good")
	status, body, _ := do(t, app, req)
	if status != fiber.StatusOK || body != "9:tok:admin" {
		t.Fatalf("got %d %s", status, body)
	}
}

func TestSessionLifecycle(t *testing.T) {
	app := newTestApp()

	_, _, resp := do(t, app, httptest.NewRequest(http.MethodPost, "/login", nil))
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session_id" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("no session cookie set")
	}
	if !cookie.HttpOnly {
		t.Fatalf("session cookie must be HTTP only")
	}

	req := httptest.NewRequest(http.MethodGet, "/private/whoami", nil)
	req.AddCookie(cookie)
	status, body, _ := do(t, app, req)
	if status != fiber.StatusOK || body != "4:alice:user" {
		t.Fatalf("got %d %s", status, body)
	}

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	if status, _, _ := do(t, app, req); status != fiber.StatusNoContent {
		t.Fatalf("logout: got %d", status)
	}

	req = httptest.NewRequest(http.MethodGet, "/private/whoami", nil)
	req.AddCookie(cookie)
	if status, _, _ := do(t, app, req); status != fiber.StatusUnauthorized {
		t.Fatalf("after logout: got %d", status)
	}
}

func TestTokenOfDeletedUserRejected(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/private/whoami", nil)
	req.Header.Set("Authorization", "Bearer gone")
	if status, body, _ := do(t, app, req); status != fiber.StatusUnauthorized || body != `{"error":"Unauthorized"}` {
		t.Fatalf("got %d %s", status, body)
	}
}

func TestRoleComesFromUserRow(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/private/whoami", nil)
	req.Header.Set("Authorization", "Bearer demoted")
	if status, body, _ := do(t, app, req); status != fiber.StatusOK || body != "4:alice:user" {
		t.Fatalf("got %d %s", status, body)
	}
}
