package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"food-delivery-backend/config"
	"food-delivery-backend/handlers"
	"food-delivery-backend/models"
	"food-delivery-backend/routes"
	"food-delivery-backend/services"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	jwtCfg := &config.JWTConfig{
		Secret:        "test-secret",
		Issuer:        "food-delivery-backend",
		Audience:      "food-delivery-clients",
		AccessMinutes: 15,
		RefreshDays:   7,
		RetentionDays: 7,
	}
	log := zap.NewNop()
	tokens := services.NewTokenIssuer(jwtCfg)
	authService := services.NewAuthService(db, tokens, jwtCfg, log)
	orderService := services.NewOrderService(db, log)
	catalogService := services.NewCatalogService(db, log)

	r := gin.New()
	routes.Register(r, routes.Handlers{
		JWT:         jwtCfg,
		Auth:        handlers.NewAuthHandler(authService, jwtCfg, log),
		Restaurants: handlers.NewRestaurantHandler(catalogService, log),
		MenuItems:   handlers.NewMenuItemHandler(catalogService, log),
		Categories:  handlers.NewCategoryHandler(catalogService, log),
		Orders:      handlers.NewOrderHandler(orderService, log),
	})

	return &testServer{router: r, db: db}
}

func (ts *testServer) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func registerBody(email string) map[string]any {
	return map[string]any{
		"email":            email,
		"password":         "Password1!",
		"confirm_password": "Password1!",
		"first_name":       "Olena",
		"last_name":        "Shevchenko",
		"address":          "Main Street 1",
		"phone":            "+380501234567",
		"date_of_birth":    "1990-05-10T00:00:00Z",
	}
}

type authResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func decodeAuth(t *testing.T, w *httptest.ResponseRecorder) authResponse {
	t.Helper()
	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestRegisterLoginAndMe(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/register", registerBody("flow@example.com"), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decodeAuth(t, w)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	var refreshCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == "refreshToken" {
			refreshCookie = c
		}
	}
	require.NotNil(t, refreshCookie, "auth response must set the refresh cookie")
	assert.True(t, refreshCookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, refreshCookie.SameSite)
	assert.Equal(t, reg.RefreshToken, refreshCookie.Value)

	w = ts.do(http.MethodGet, "/api/auth/me", nil, bearer(reg.AccessToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flow@example.com")

	w = ts.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": "flow@example.com", "password": "WrongPass1!",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": "flow@example.com", "password": "Password1!",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterDuplicateEmailReturnsFieldErrors(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/register", registerBody("dup@example.com"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/register", registerBody("dup@example.com"), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "Email")
}

func TestRefreshTokenRotationOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/register", registerBody("rotate@example.com"), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	reg := decodeAuth(t, w)

	w = ts.do(http.MethodPost, "/api/auth/refresh-token", map[string]any{
		"refresh_token": reg.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	refreshed := decodeAuth(t, w)
	assert.NotEqual(t, reg.RefreshToken, refreshed.RefreshToken)

	// The rotated token is spent.
	w = ts.do(http.MethodPost, "/api/auth/refresh-token", map[string]any{
		"refresh_token": reg.RefreshToken,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/refresh-token", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing token is a bad request")
}

func TestRefreshTokenFromCookie(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/register", registerBody("cookie@example.com"), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	reg := decodeAuth(t, w)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: reg.RefreshToken})
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	refreshed := decodeAuth(t, rec)
	assert.NotEqual(t, reg.RefreshToken, refreshed.RefreshToken)
}

func TestRevokeTokenTwice(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/register", registerBody("revoke@example.com"), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	reg := decodeAuth(t, w)

	body := map[string]any{"refresh_token": reg.RefreshToken}
	w = ts.do(http.MethodPost, "/api/auth/revoke-token", body, bearer(reg.AccessToken))
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/revoke-token", body, bearer(reg.AccessToken))
	assert.Equal(t, http.StatusNotFound, w.Code, "second revoke reports failure")
}

func seedOrderFixture(t *testing.T, ts *testServer) (models.Restaurant, models.MenuItem) {
	t.Helper()
	restaurant := models.Restaurant{Name: "Napoli House", Address: "Kyiv", IsActive: true}
	require.NoError(t, ts.db.Create(&restaurant).Error)
	category := models.Category{Name: "Pizza"}
	require.NoError(t, ts.db.Create(&category).Error)
	item := models.MenuItem{
		Name: "Margherita", Price: 9.50, IsAvailable: true,
		CategoryID: category.ID, RestaurantID: restaurant.ID,
	}
	require.NoError(t, ts.db.Create(&item).Error)
	return restaurant, item
}

func TestOrderOwnershipChecks(t *testing.T) {
	ts := newTestServer(t)
	restaurant, item := seedOrderFixture(t, ts)

	w := ts.do(http.MethodPost, "/api/auth/register", registerBody("owner@example.com"), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	owner := decodeAuth(t, w)

	w = ts.do(http.MethodPost, "/api/auth/register", registerBody("stranger@example.com"), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	stranger := decodeAuth(t, w)

	orderBody := map[string]any{
		"restaurant_id":    restaurant.ID,
		"delivery_address": "Main Street 1",
		"contact_phone":    "+380501234567",
		"items":            []map[string]any{{"menu_item_id": item.ID, "quantity": 2}},
	}
	w = ts.do(http.MethodPost, "/api/orders", orderBody, bearer(owner.AccessToken))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.InDelta(t, 19.0, created.TotalAmount, 1e-9)

	orderPath := fmt.Sprintf("/api/orders/%d", created.ID)

	w = ts.do(http.MethodGet, orderPath, nil, bearer(owner.AccessToken))
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, orderPath, nil, bearer(stranger.AccessToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodDelete, orderPath, nil, bearer(stranger.AccessToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Plain users may not drive order status.
	w = ts.do(http.MethodPut, orderPath+"/status", map[string]any{"status": "Confirmed"}, bearer(owner.AccessToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodDelete, orderPath, nil, bearer(owner.AccessToken))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRestaurantMutationsRequireAdmin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/register", registerBody("plain@example.com"), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	user := decodeAuth(t, w)

	body := map[string]any{
		"name": "New Place", "address": "Kyiv", "phone": "+380501234567",
	}
	w = ts.do(http.MethodPost, "/api/restaurants", body, bearer(user.AccessToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPost, "/api/restaurants", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
