package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/config"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubGenerator struct {
	reply string
	err   error
}

func (g *stubGenerator) Complete(context.Context, string, string) (string, error) {
	return g.reply, g.err
}

type emptyFinder struct{}

func (emptyFinder) Lookup(context.Context, string) (*models.LocationDetails, error) {
	return nil, nil
}

type harness struct {
	t   *testing.T
	app *fiber.App
	gen *stubGenerator
	db  *gorm.DB
}

func newHarness(t *testing.T, mutate ...func(*config.Config)) *harness {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.PlanRecord{}))

	cfg := &config.Config{
		AppEnv:             "test",
		CORSOrigins:        "*",
		JWTSecret:          "test-secret",
		JWTExpiry:          time.Hour,
		GenerationFallback: config.FallbackFail,
	}
	for _, m := range mutate {
		m(cfg)
	}

	gen := &stubGenerator{}
	app, err := New(Deps{
		Config:    cfg,
		DB:        db,
		Generator: gen,
		Places:    emptyFinder{},
		Logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	return &harness{t: t, app: app, gen: gen, db: db}
}

func (h *harness) do(method, path, token string, body any) (int, []byte) {
	h.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp.StatusCode, out
}

func (h *harness) register(username string) (string, uuid.UUID) {
	h.t.Helper()
	status, body := h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "email": username + "@example.com", "password": "secret123",
	})
	require.Equal(h.t, http.StatusCreated, status, string(body))

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
	}
	require.NoError(h.t, json.Unmarshal(body, &resp))
	require.True(h.t, resp.Success)
	return resp.Token, resp.User.ID
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func TestRegisterLoginVerify(t *testing.T) {
	h := newHarness(t)
	_, id := h.register("alice")

	status, body := h.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, status)
	login := decode[map[string]any](t, body)
	token, _ := login["token"].(string)
	require.NotEmpty(t, token)
	_, hasSuccess := login["success"]
	assert.False(t, hasSuccess)

	status, body = h.do(http.MethodGet, "/api/auth/verify", token, nil)
	require.Equal(t, http.StatusOK, status)
	verify := decode[struct {
		Valid bool `json:"valid"`
		User  struct {
			ID       uuid.UUID `json:"id"`
			Username string    `json:"username"`
		} `json:"user"`
	}](t, body)
	assert.True(t, verify.Valid)
	assert.Equal(t, id, verify.User.ID)
	assert.Equal(t, "alice", verify.User.Username)
}

func TestRegister_Conflict(t *testing.T) {
	h := newHarness(t)
	h.register("alice")

	status, body := h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "new@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "User already exists")

	var count int64
	require.NoError(t, h.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegister_Validation(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "a!", "email": "not-an-email", "password": "123",
	})
	require.Equal(t, http.StatusBadRequest, status)

	resp := decode[struct {
		Error   string `json:"error"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}](t, body)
	assert.Equal(t, "Validation Error", resp.Error)

	fields := map[string]bool{}
	for _, d := range resp.Details {
		fields[d.Field] = true
	}
	assert.True(t, fields["username"])
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)
	h.register("alice")

	status, _ := h.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "nobody", "password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestVerify_Failures(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(http.MethodGet, "/api/auth/verify", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"valid":false,"error":"No token provided"}`, string(body))

	status, body = h.do(http.MethodGet, "/api/auth/verify", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"valid":false,"error":"Invalid token"}`, string(body))
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(http.MethodGet, "/api/travel/history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(http.MethodGet, "/api/user/profile", "not.a.token", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestGenerate_Kyoto(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register("alice")

	h.gen.reply = "```json\n" + `{"travel_plan":{"destination":"Kyoto","start_date":"2025-04-01","duration":"3 days","travelers":2,"total_budget":"9000 CNY","itinerary":{
		"day_1":{"date":"2025-04-01","theme":"Temples","morning":{"location":"Kinkaku-ji"},"lunch":{"location":"Nishiki"},"afternoon":{"location":"Ryoan-ji"},"evening":{"location":"Gion"}},
		"day_2":{"date":"2025-04-02","theme":"Arashiyama","morning":{"location":"Bamboo Grove"},"lunch":{"location":"Tenryu-ji"},"afternoon":{"location":"Monkey Park"},"evening":{"location":"Pontocho"}},
		"day_3":{"date":"2025-04-03","theme":"Fushimi","morning":{"location":"Fushimi Inari"},"lunch":{"location":"Tofuku-ji"},"afternoon":{"location":"Sanjusangen-do"},"evening":{"location":"Kyoto Tower"}}}}}` + "\n```"

	status, body := h.do(http.MethodPost, "/api/travel/generate", token, map[string]any{
		"destination": "Kyoto", "startDate": "2025-04-01", "days": 3, "travelers": 2,
		"budget": 9000, "preferences": []string{"culture"},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.NotContains(t, string(body), "locationDetails")
	assert.NotContains(t, string(body), "degraded")

	var out models.GeneratedPlan
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.TravelPlan)
	require.Len(t, out.TravelPlan.Itinerary, 3)
	for _, entry := range out.TravelPlan.Itinerary {
		for _, slot := range entry.Day.Slots() {
			require.NotNil(t, slot)
		}
	}
}

func TestGenerate_Failures(t *testing.T) {
	t.Run("fail policy", func(t *testing.T) {
		h := newHarness(t)
		token, _ := h.register("alice")
		h.gen.err = errors.New("upstream down")

		status, body := h.do(http.MethodPost, "/api/travel/generate", token, map[string]any{
			"destination": "Kyoto", "startDate": "2025-04-01", "days": 3, "travelers": 2, "budget": 9000,
		})
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Contains(t, string(body), "Failed to generate travel plan")
		assert.NotContains(t, string(body), "upstream down")
	})

	t.Run("degrade policy", func(t *testing.T) {
		h := newHarness(t, func(c *config.Config) { c.GenerationFallback = config.FallbackDegrade })
		token, _ := h.register("alice")
		h.gen.reply = "not json"

		status, body := h.do(http.MethodPost, "/api/travel/generate", token, map[string]any{
			"destination": "Kyoto", "startDate": "2025-04-01", "days": 2, "travelers": 1, "budget": 1000,
		})
		require.Equal(t, http.StatusOK, status)
		out := decode[models.GeneratedPlan](t, body)
		assert.True(t, out.Degraded)
		assert.Len(t, out.TravelPlan.Itinerary, 2)
	})

	t.Run("invalid request", func(t *testing.T) {
		h := newHarness(t)
		token, _ := h.register("alice")

		status, _ := h.do(http.MethodPost, "/api/travel/generate", token, map[string]any{
			"destination": "Kyoto", "startDate": "April 1st", "days": 0, "travelers": 2, "budget": 9000,
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestSaveGetRoundTrip(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register("alice")

	plan := []byte(`{
		"destination": "Kyoto",
		"start_date": "2025-04-01",
		"duration": "3天",
		"travelers": 2,
		"total_budget": "9000 CNY",
		"preferences": ["culture", "food"],
		"itinerary": {"day_1": {"theme": "Temples", "morning": {"location": "Kinkaku-ji",
			"locationDetails": {"name": "Kinkaku-ji", "rating": "4.8", "photos": []}}}},
		"custom_field": {"nested": [1, 2, 3]}
	}`)

	status, body := h.do(http.MethodPost, "/api/travel/save", token, plan)
	require.Equal(t, http.StatusOK, status, string(body))
	saved := decode[struct {
		Success bool      `json:"success"`
		PlanID  uuid.UUID `json:"planId"`
		Message string    `json:"message"`
	}](t, body)
	assert.True(t, saved.Success)
	assert.Equal(t, "Travel plan saved successfully", saved.Message)

	status, body = h.do(http.MethodGet, "/api/travel/"+saved.PlanID.String(), token, nil)
	require.Equal(t, http.StatusOK, status)

	var want, got any
	require.NoError(t, json.Unmarshal(plan, &want))
	require.NoError(t, json.Unmarshal(body, &got))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("plan changed after save (-want +got):\n%s", diff)
	}

	status, body = h.do(http.MethodGet, "/api/travel/history", token, nil)
	require.Equal(t, http.StatusOK, status)
	history := decode[[]map[string]any](t, body)
	require.Len(t, history, 1)
	assert.Equal(t, "Kyoto", history[0]["destination"])
	assert.Equal(t, "2025-04-01", history[0]["startDate"])
	assert.EqualValues(t, 3, history[0]["days"])
	assert.EqualValues(t, 9000, history[0]["budget"])
	assert.Contains(t, history[0], "createdAt")
}

func TestSave_MissingDestination(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register("alice")

	for _, body := range [][]byte{[]byte(`{"travel_plan":{"destination":"Kyoto"}}`), []byte(`[]`), []byte(`{}`)} {
		status, _ := h.do(http.MethodPost, "/api/travel/save", token, body)
		assert.Equal(t, http.StatusBadRequest, status, string(body))
	}
}

func TestPlans_OwnerScoped(t *testing.T) {
	h := newHarness(t)
	alice, _ := h.register("alice")
	bob, _ := h.register("bob")

	status, body := h.do(http.MethodPost, "/api/travel/save", alice, []byte(`{"destination":"Paris","duration":2}`))
	require.Equal(t, http.StatusOK, status)
	planID := decode[struct {
		PlanID string `json:"planId"`
	}](t, body).PlanID

	for _, tc := range []struct {
		method, path, token string
	}{
		{http.MethodGet, "/api/travel/" + planID, bob},
		{http.MethodDelete, "/api/travel/" + planID, bob},
		{http.MethodGet, "/api/travel/" + uuid.NewString(), alice},
		{http.MethodGet, "/api/travel/not-a-uuid", alice},
		{http.MethodDelete, "/api/travel/12345", alice},
	} {
		status, _ := h.do(tc.method, tc.path, tc.token, nil)
		assert.Equal(t, http.StatusNotFound, status, "%s %s", tc.method, tc.path)
	}

	status, _ = h.do(http.MethodDelete, "/api/travel/"+planID, alice, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = h.do(http.MethodGet, "/api/travel/"+planID, alice, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUserProfileAndStats(t *testing.T) {
	h := newHarness(t)
	token, id := h.register("alice")
	h.register("bob")

	status, body := h.do(http.MethodGet, "/api/user/stats", token, nil)
	require.Equal(t, http.StatusOK, status)
	stats := decode[map[string]any](t, body)
	assert.EqualValues(t, 0, stats["totalPlans"])
	assert.EqualValues(t, 0, stats["uniqueDestinations"])
	assert.EqualValues(t, 0, stats["totalDays"])
	assert.Contains(t, stats, "memberSince")

	for _, p := range []string{`{"destination":"Kyoto","duration":3}`, `{"destination":"Kyoto","duration":2}`, `{"destination":"Oslo","duration":"4 days"}`} {
		status, _ := h.do(http.MethodPost, "/api/travel/save", token, []byte(p))
		require.Equal(t, http.StatusOK, status)
	}
	status, body = h.do(http.MethodGet, "/api/user/stats", token, nil)
	require.Equal(t, http.StatusOK, status)
	stats = decode[map[string]any](t, body)
	assert.EqualValues(t, 3, stats["totalPlans"])
	assert.EqualValues(t, 2, stats["uniqueDestinations"])
	assert.EqualValues(t, 9, stats["totalDays"])

	status, body = h.do(http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	profile := decode[map[string]any](t, body)
	assert.Equal(t, id.String(), profile["id"])
	assert.NotContains(t, profile, "password")

	status, _ = h.do(http.MethodPut, "/api/user/profile", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.do(http.MethodPut, "/api/user/profile", token, map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = h.do(http.MethodPut, "/api/user/profile", token, map[string]string{"email": "alice@new.example.com"})
	require.Equal(t, http.StatusOK, status)
	updated := decode[struct {
		Success bool `json:"success"`
		User    struct {
			Email string `json:"email"`
		} `json:"user"`
	}](t, body)
	assert.True(t, updated.Success)
	assert.Equal(t, "alice@new.example.com", updated.User.Email)
}

func TestDeletedUserTokenIsRejected(t *testing.T) {
	h := newHarness(t)
	token, id := h.register("alice")

	require.NoError(t, h.db.Delete(&models.User{}, "id = ?", id).Error)

	status, _ := h.do(http.MethodGet, "/api/user/profile", token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := h.do(http.MethodGet, "/api/auth/verify", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), "User not found")
}

func TestHealthAndNotFound(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	health := decode[map[string]any](t, body)
	assert.Equal(t, "OK", health["status"])
	assert.Equal(t, "ok", health["db"])
	assert.Equal(t, "test", health["environment"])

	status, body = h.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"Route not found","message":"Cannot GET /api/nope"}`, string(body))
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.RateLimitMax = 2
		c.RateLimitWindow = time.Minute
	})

	for i := 0; i < 2; i++ {
		status, _ := h.do(http.MethodGet, "/api/health", "", nil)
		require.Equal(t, http.StatusOK, status)
	}
	status, _ := h.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
}
