package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"coffeestock/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	loggedIn bool
	username string
}

func (f fakeSession) IsLoggedIn() bool    { return f.loggedIn }
func (f fakeSession) CurrentUser() string { return f.username }

func newApp(session fakeSession) *fiber.App {
	app := fiber.New()
	app.Get("/private", middleware.SessionRequired(session), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("username").(string))
	})
	return app
}

func TestSessionRequired(t *testing.T) {
	cases := []struct {
		name    string
		session fakeSession
		status  int
	}{
		{"logged in", fakeSession{loggedIn: true, username: "bob"}, http.StatusOK},
		{"logged out", fakeSession{}, http.StatusUnauthorized},
		{"flag without user", fakeSession{loggedIn: true}, http.StatusUnauthorized},
		{"user without flag", fakeSession{username: "bob"}, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := newApp(tc.session).Test(httptest.NewRequest(http.MethodGet, "/private", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)

			if tc.status == http.StatusOK {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, "bob", string(body))
			}
		})
	}
}
