package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"coffeestock/internal/handlers"
	"coffeestock/internal/middleware"
	"coffeestock/internal/models"
	"coffeestock/internal/repositories"
	"coffeestock/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// setupApp sets up a Fiber app backed by a temporary sqlite catalog and in-memory preferences.
func setupApp(t *testing.T, native bool) (*fiber.App, *services.CredentialStore) {
	t.Helper()

	catalog := services.NewCatalogSchemaManager(filepath.Join(t.TempDir(), "coffeestock.db"), native)
	t.Cleanup(func() { _ = catalog.Close() })
	catalog.InitializeDatabase(context.Background())

	var productRepo repositories.ProductRepository
	if catalog.IsReady() {
		productRepo = repositories.NewGORMProductRepository(catalog.DB())
	}

	prefs := repositories.NewMockPreferenceRepository()
	store := services.NewCredentialStore(
		repositories.NewPreferenceUserRepository(prefs),
		repositories.NewPreferenceSessionRepository(prefs),
		services.NewBcryptHasher(bcrypt.MinCost),
		nil,
		5*time.Second,
	)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(store).RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.SessionRequired(store))
	handlers.NewProductHandler(services.NewProductService(productRepo, catalog)).RegisterRoutes(protectedRoutes)

	return app, store
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestAuthSignupLoginLogout(t *testing.T) {
	app, store := setupApp(t, true)
	credentials := map[string]string{"username": "bob", "password": "pass1234"}

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", credentials)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, decode[models.Result](t, resp).Success)
	assert.False(t, store.IsLoggedIn(), "signup does not start a session")

	// Duplicate, differing only in case
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", map[string]string{"username": "BOB", "password": "other123"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	result := decode[models.Result](t, resp)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Username already taken")

	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "bob", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", decode[models.Result](t, resp).Error)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", credentials)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[map[string]any](t, resp)
	assert.Equal(t, "bob", login["username"])

	resp = doJSON(t, app, http.MethodGet, "/api/v1/auth/status", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	status := decode[map[string]any](t, resp)
	assert.Equal(t, true, status["isLoggedIn"])
	assert.Equal(t, "bob", status["currentUser"])

	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/auth/status", nil)
	status = decode[map[string]any](t, resp)
	assert.Equal(t, false, status["isLoggedIn"])
	assert.Equal(t, "", status["currentUser"])
}

func TestAuthValidation(t *testing.T) {
	app, _ := setupApp(t, true)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", map[string]string{"username": "ab", "password": "pass1234"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please enter both username and password.", decode[models.Result](t, resp).Error)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	raw, err := app.Test(req, -1)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestProductEndpoints(t *testing.T) {
	app, _ := setupApp(t, true)
	credentials := map[string]string{"username": "alice", "password": "secret99"}
	require.Equal(t, http.StatusCreated, doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", credentials).StatusCode)
	require.Equal(t, http.StatusOK, doJSON(t, app, http.MethodPost, "/api/v1/auth/login", credentials).StatusCode)

	newProduct := map[string]any{
		"barcode":       "5449000011115",
		"flavor_name":   "RISTRETTO",
		"price_per_box": 4.5,
		"price_per_pod": 0.45,
		"pods_per_box":  10,
		"image_path":    "assets/images/products/risetto.png",
	}

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", newProduct)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.Product](t, resp)
	assert.Equal(t, "RISTRETTO", created.FlavorName)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", newProduct)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]any{"barcode": "1", "flavor_name": "", "pods_per_box": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Product](t, resp), 1)

	update := map[string]any{
		"flavor_name":   "RISTRETTO",
		"price_per_box": 5.0,
		"price_per_pod": 0.5,
		"pods_per_box":  10,
	}
	resp = doJSON(t, app, http.MethodPut, "/api/v1/products/5449000011115", update)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/5449000011115", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 5.0, decode[models.Product](t, resp).PricePerBox, 0.0001)

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/products/5449000011115", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, decode[map[string]string](t, resp)["message"], "deleted successfully")

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/5449000011115", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductEndpointsWithoutSession(t *testing.T) {
	app, _ := setupApp(t, true)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]any{"barcode": "1", "flavor_name": "X", "pods_per_box": 1})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProductEndpointsInDegradedMode(t *testing.T) {
	app, store := setupApp(t, false)
	require.True(t, store.CreateUser(context.Background(), "carol", "pw1234").Success)
	require.True(t, store.ValidateCredentials(context.Background(), "carol", "pw1234").Success)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
