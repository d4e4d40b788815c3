package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func budget(v float64) *float64 { return &v }

func kyotoRequest() *models.PlanRequest {
	return &models.PlanRequest{
		Destination: "Kyoto",
		StartDate:   "2025-04-01",
		Days:        3,
		Travelers:   2,
		Budget:      budget(9000),
	}
}

func TestLoginPersistsSession(t *testing.T) {
	userID := uuid.New()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)
		writeJSON(w, http.StatusOK, dto.AuthResponse{
			Token: "tok-123",
			User:  dto.UserResponse{ID: userID, Username: "alice", Email: "alice@example.com"},
		})
	})
	mux.HandleFunc("/api/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, dto.VerifyResponse{Valid: true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()

	c, err := New(srv.URL+"/api", WithSessionFile(path))
	require.NoError(t, err)
	assert.False(t, c.IsAuthenticated())

	user, err := c.Login(ctx, dto.LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.True(t, c.IsAuthenticated())

	reloaded, err := New(srv.URL+"/api", WithSessionFile(path))
	require.NoError(t, err)
	assert.True(t, reloaded.IsAuthenticated())
	assert.Equal(t, "alice", reloaded.User().Username)

	verify, err := reloaded.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, verify.Valid)

	require.NoError(t, reloaded.Logout())
	assert.False(t, reloaded.IsAuthenticated())

	again, err := New(srv.URL+"/api", WithSessionFile(path))
	require.NoError(t, err)
	assert.False(t, again.IsAuthenticated())
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "User already exists", Message: "Username or email already taken"})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	err = c.Register(context.Background(), dto.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "secret1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "User already exists", apiErr.Body.Error)
	assert.Contains(t, apiErr.Error(), "409")
}

func TestAPIErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	err = c.Register(context.Background(), dto.RegisterRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Body.Error)
}

func TestAuthenticatedCallsNeedToken(t *testing.T) {
	c, err := New("http://127.0.0.1:1")
	require.NoError(t, err)

	_, err = c.History(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.Generate(context.Background(), kyotoRequest())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func loggedIn(t *testing.T, url string, opts ...Option) *Client {
	t.Helper()
	c, err := New(url, opts...)
	require.NoError(t, err)
	c.session = Session{Token: "tok"}
	return c
}

func TestGenerateFallback(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		fallback     Fallback
		wantErr      bool
		wantDegraded bool
	}{
		{"server error fails by default", http.StatusInternalServerError, FallbackFail, true, false},
		{"server error degrades", http.StatusInternalServerError, FallbackDegrade, false, true},
		{"validation error never degrades", http.StatusBadRequest, FallbackDegrade, true, false},
		{"auth error never degrades", http.StatusUnauthorized, FallbackDegrade, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, dto.ErrorResponse{Error: "nope"})
			}))
			defer srv.Close()

			c := loggedIn(t, srv.URL, WithFallback(tt.fallback))
			plan, err := c.Generate(context.Background(), kyotoRequest())
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, plan)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDegraded, plan.Degraded)
			assert.Equal(t, "Kyoto", plan.TravelPlan.Destination)
			assert.Len(t, plan.TravelPlan.Itinerary, 3)
		})
	}
}

func TestGenerateUnreachableDegrades(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := loggedIn(t, url, WithFallback(FallbackDegrade))
	plan, err := c.Generate(context.Background(), kyotoRequest())
	require.NoError(t, err)
	assert.True(t, plan.Degraded)
}

func TestPlanCalls(t *testing.T) {
	planID := uuid.New()
	stored := `{"destination":"Kyoto","duration":3,"itinerary":{"day_1":{"theme":"Temples"}}}`

	mux := http.NewServeMux()
	mux.HandleFunc("/travel/save", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var plan models.TravelPlan
		require.NoError(t, json.NewDecoder(r.Body).Decode(&plan))
		assert.Equal(t, "Kyoto", plan.Destination)
		writeJSON(w, http.StatusOK, dto.SavePlanResponse{Success: true, PlanID: planID})
	})
	mux.HandleFunc("/travel/history", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.PlanSummary{{ID: planID, Destination: "Kyoto", Days: 3}})
	})
	mux.HandleFunc("/travel/"+planID.String(), func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(stored))
		case http.MethodDelete:
			writeJSON(w, http.StatusOK, dto.DeletePlanResponse{Success: true})
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	c := loggedIn(t, srv.URL)

	id, err := c.Save(ctx, &models.TravelPlan{Destination: "Kyoto", Duration: 3})
	require.NoError(t, err)
	assert.Equal(t, planID, id)

	id, err = c.SaveRaw(ctx, []byte(stored))
	require.NoError(t, err)
	assert.Equal(t, planID, id)

	history, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Kyoto", history[0].Destination)

	raw, err := c.GetRaw(ctx, planID)
	require.NoError(t, err)
	assert.JSONEq(t, stored, string(raw))

	plan, err := c.Get(ctx, planID)
	require.NoError(t, err)
	require.Len(t, plan.Itinerary, 1)
	assert.Equal(t, "Temples", plan.Itinerary[0].Day.Theme)

	require.NoError(t, c.Delete(ctx, planID))

	_, err = c.Get(ctx, uuid.New())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
