package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/config"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	require.NoError(t, config.SeedDefaults(db))

	cfg := &config.Config{AppMode: "dev", UploadDir: t.TempDir()}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpiryHours = 1

	app := fiber.New()
	Setup(app, db, cfg)
	return app, db
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, *envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env))
	return resp.StatusCode, &env
}

func doForm(t *testing.T, app *fiber.App, path, token string, form url.Values) (int, *envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env))
	return resp.StatusCode, &env
}

func login(t *testing.T, app *fiber.App, identifier, pass string) string {
	t.Helper()

	status, env := doJSON(t, app, http.MethodPost, "/api/login", "", fiber.Map{
		"identifier": identifier,
		"password":   pass,
	})
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestPaymentWorkflowEndToEnd(t *testing.T) {
	app, db := newTestApp(t)

	// New registration lands pending and cannot log in.
	status, _ := doJSON(t, app, http.MethodPost, "/api/register", "", fiber.Map{
		"name":     "Thandi",
		"email":    "thandi@example.com",
		"phone":    "0849998877",
		"password": "s3cret-pass",
		"tier":     2,
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/login", "", fiber.Map{
		"identifier": "thandi@example.com",
		"password":   "s3cret-pass",
	})
	assert.Equal(t, http.StatusForbidden, status)

	// The seeded admin approves the registration.
	adminToken := login(t, app, "admin@masonko.com", "admin123")

	var member models.Member
	require.NoError(t, db.Where("email = ?", "thandi@example.com").First(&member).Error)

	status, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/approve-member/%d", member.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	memberToken := login(t, app, "thandi@example.com", "s3cret-pass")

	// Member submits a payment claim.
	status, env := doForm(t, app, "/api/submit-payment", memberToken, url.Values{
		"amount":    {"500"},
		"method":    {"eft"},
		"date":      {"2026-08-01"},
		"reference": {"AUG-2026"},
	})
	require.Equal(t, http.StatusCreated, status)

	var submitted struct {
		PaymentID uint `json:"payment_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &submitted))
	require.NotZero(t, submitted.PaymentID)

	// A plain member may not review payments.
	status, _ = doJSON(t, app, http.MethodGet, "/api/pending-payments", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	approvePath := fmt.Sprintf("/api/approve-payment/%d", submitted.PaymentID)
	status, _ = doJSON(t, app, http.MethodPost, approvePath, memberToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// The admin approves it; the balance moves.
	status, _ = doJSON(t, app, http.MethodPost, approvePath, adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, db.First(&member, member.ID).Error)
	assert.InDelta(t, 500, member.Balance, 1e-9)

	// A second approval conflicts.
	status, _ = doJSON(t, app, http.MethodPost, approvePath, adminToken, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestAuthGating(t *testing.T) {
	app, _ := newTestApp(t)

	for _, path := range []string{"/api/profile", "/api/members", "/api/loans", "/api/notifications"} {
		status, _ := doJSON(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}

	status, _ := doJSON(t, app, http.MethodGet, "/api/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSettingsAdminOnly(t *testing.T) {
	app, _ := newTestApp(t)

	adminToken := login(t, app, "admin@masonko.com", "admin123")
	treasurerToken := login(t, app, "treasurer@masonko.com", "treasurer123")

	status, _ := doJSON(t, app, http.MethodPut, "/api/settings/lateFee", treasurerToken, fiber.Map{"value": "75"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doJSON(t, app, http.MethodPut, "/api/settings/lateFee", adminToken, fiber.Map{"value": "75"})
	require.Equal(t, http.StatusOK, status)

	status, env := doJSON(t, app, http.MethodGet, "/api/settings", adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	var settings []models.Setting
	require.NoError(t, json.Unmarshal(env.Data, &settings))
	found := ""
	for _, s := range settings {
		if s.Key == models.SettingLateFee {
			found = s.Value
		}
	}
	assert.Equal(t, "75", found)
}
