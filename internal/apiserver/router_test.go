package apiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/auth"
	"github.com/opencanvass/territory/internal/auth/jwt"
	"github.com/opencanvass/territory/internal/common/cnst"
	"github.com/opencanvass/territory/internal/common/config"
	"github.com/opencanvass/territory/internal/common/dto"
	"github.com/opencanvass/territory/internal/database"
	"github.com/opencanvass/territory/pkg/metrics"
)

const testSecret = "router-test-secret-0123456789abcdef"

type env struct {
	router *gin.Engine
	db     database.Database
	admin  *database.User
	basic  *database.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewSQLite(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	jwtService, err := jwt.NewService(jwt.Config{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)

	cfg := &config.ServerConfig{Metrics: config.MetricsConfig{Enabled: true, Namespace: "test"}}
	router := NewRouter(Deps{
		Config:     cfg,
		DB:         db,
		Logger:     zap.NewNop(),
		JWTService: jwtService,
		Metrics:    metrics.New(cfg.Metrics),
	})

	ctx := context.Background()
	authSvc := auth.NewService(db, zap.NewNop())
	admin, err := authSvc.CreateUser(ctx, "Admin", "admin@example.com", "admin123", cnst.LevelAdmin)
	require.NoError(t, err)
	basic, err := authSvc.CreateUser(ctx, "Basic", "basic@example.com", "basic123", cnst.LevelBasic)
	require.NoError(t, err)

	return &env{router: router, db: db, admin: admin, basic: basic}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) login(t *testing.T, email, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLogin(t *testing.T) {
	e := newEnv(t)

	token := e.login(t, "admin@example.com", "admin123")
	assert.NotEmpty(t, token)

	w := e.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ghost@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutesRequireAuth(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/api/territories", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodGet, "/api/territories", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPermissionLevels(t *testing.T) {
	e := newEnv(t)
	adminToken := e.login(t, "admin@example.com", "admin123")
	basicToken := e.login(t, "basic@example.com", "basic123")

	// basic users may browse but not mutate
	w := e.do(t, http.MethodGet, "/api/territories", basicToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/territories", basicToken, dto.TerritoryRequest{Name: "T1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodGet, "/api/users", basicToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// admins may do everything
	w = e.do(t, http.MethodPost, "/api/territories", adminToken, dto.TerritoryRequest{Name: "T1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/api/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTerritoryLifecycleOverHTTP(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "admin@example.com", "admin123")

	w := e.do(t, http.MethodPost, "/api/territories", token, dto.TerritoryRequest{Name: "Territory 1", Description: "Central"})
	require.Equal(t, http.StatusCreated, w.Code)
	var territory database.Territory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &territory))

	w = e.do(t, http.MethodPost, "/api/territories/1/streets", token, dto.StreetRequest{Name: "Flower Street"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodPost, "/api/properties", token, dto.PropertyRequest{
		StreetID: 1, HouseNumber: "127", Kind: cnst.PropertyBuilding, DisplayName: "Central Building", UnitCount: 3,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/api/properties/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Units []database.Unit `json:"units"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Len(t, detail.Units, 3)
	assert.Equal(t, "Apto 01", detail.Units[0].Label)

	w = e.do(t, http.MethodGet, "/api/territories/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodDelete, "/api/territories/1", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/territories/1", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignmentWarningOverHTTP(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "admin@example.com", "admin123")
	ctx := context.Background()

	territory := &database.Territory{Name: "Territory 1"}
	require.NoError(t, e.db.CreateTerritory(ctx, territory))
	trip := &database.FieldTrip{Name: "Saturday", Date: time.Now()}
	require.NoError(t, e.db.CreateFieldTrip(ctx, trip))

	req := dto.TerritoryAssignmentRequest{
		TerritoryID: territory.ID, FieldTripID: trip.ID, AssignedDate: time.Now(),
	}
	w := e.do(t, http.MethodPost, "/api/assignments/territories", token, req)
	require.Equal(t, http.StatusCreated, w.Code)
	var first struct {
		Warning *json.RawMessage `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Nil(t, first.Warning)

	w = e.do(t, http.MethodPost, "/api/assignments/territories", token, req)
	require.Equal(t, http.StatusCreated, w.Code)
	var second struct {
		Warning *json.RawMessage `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.NotNil(t, second.Warning)

	w = e.do(t, http.MethodPost, "/api/assignments/territories/1/conclude", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAssignmentUpdateOverwritesTripAndStatus(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "admin@example.com", "admin123")
	ctx := context.Background()

	territory := &database.Territory{Name: "Territory 1"}
	require.NoError(t, e.db.CreateTerritory(ctx, territory))
	first := &database.FieldTrip{Name: "Saturday", Date: time.Now()}
	require.NoError(t, e.db.CreateFieldTrip(ctx, first))
	second := &database.FieldTrip{Name: "Sunday", Date: time.Now()}
	require.NoError(t, e.db.CreateFieldTrip(ctx, second))

	w := e.do(t, http.MethodPost, "/api/assignments/territories", token, dto.TerritoryAssignmentRequest{
		TerritoryID: territory.ID, FieldTripID: first.ID, AssignedDate: time.Now(),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodPost, "/api/assignments/territories/1/conclude", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// no assignment is active anymore
	w = e.do(t, http.MethodGet, "/api/territories/1/active-assignment", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// the edit moves the assignment to another trip and reopens it
	w = e.do(t, http.MethodPut, "/api/assignments/territories/1", token, dto.AssignmentUpdateRequest{
		FieldTripID: second.ID, AssignedDate: time.Now(), Assignee: "Ana", Status: cnst.AssignmentActive,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/territories/1/active-assignment", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var a database.TerritoryAssignment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, second.ID, a.FieldTripID)
	assert.Equal(t, cnst.AssignmentActive, a.Status)
	assert.Equal(t, "Ana", a.Assignee)

	// a status outside the lifecycle is rejected at the edge
	w = e.do(t, http.MethodPut, "/api/assignments/territories/1", token, map[string]any{
		"fieldTripId": second.ID, "assignedDate": time.Now(), "status": "paused",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTerritoryLastVisited(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "admin@example.com", "admin123")

	w := e.do(t, http.MethodPost, "/api/territories", token, dto.TerritoryRequest{Name: "Territory 1"})
	require.Equal(t, http.StatusCreated, w.Code)

	visited := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	w = e.do(t, http.MethodPut, "/api/territories/1", token, dto.TerritoryRequest{
		Name: "Territory 1", LastVisited: &visited,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/territories/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Territory database.Territory `json:"territory"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.NotNil(t, detail.Territory.LastVisited)
	assert.True(t, visited.Equal(*detail.Territory.LastVisited))

	// the update is a full overwrite, so omitting the date clears it
	w = e.do(t, http.MethodPut, "/api/territories/1", token, dto.TerritoryRequest{Name: "Territory 1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/territories/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cleared struct {
		Territory database.Territory `json:"territory"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cleared))
	assert.Nil(t, cleared.Territory.LastVisited)
}

func TestSelfActionMapsToConflict(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "admin@example.com", "admin123")

	w := e.do(t, http.MethodDelete, "/api/users/1", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	active := false
	w = e.do(t, http.MethodPut, "/api/users/1", token, dto.UpdateUserRequest{
		Name: "Admin", Email: "admin@example.com", PermissionLevel: cnst.LevelAdmin, Active: &active,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// another user's account is fair game
	w = e.do(t, http.MethodDelete, "/api/users/2", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNotificationOwnership(t *testing.T) {
	e := newEnv(t)
	adminToken := e.login(t, "admin@example.com", "admin123")
	basicToken := e.login(t, "basic@example.com", "basic123")
	ctx := context.Background()

	require.NoError(t, e.db.CreateNotification(ctx, &database.Notification{
		UserID: e.admin.ID,
		Kind:   cnst.NotificationInfo,
		Title:  "hello",
		Status: cnst.NotificationUnread,
	}))

	w := e.do(t, http.MethodGet, "/api/notifications", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []database.Notification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	// someone else's notification reads as missing
	w = e.do(t, http.MethodPost, "/api/notifications/1/read", basicToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPost, "/api/notifications/1/read", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBroadcast(t *testing.T) {
	e := newEnv(t)
	adminToken := e.login(t, "admin@example.com", "admin123")
	basicToken := e.login(t, "basic@example.com", "basic123")

	w := e.do(t, http.MethodPost, "/api/notifications/broadcast", basicToken, dto.BroadcastRequest{Title: "Meeting"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodPost, "/api/notifications/broadcast", adminToken, dto.BroadcastRequest{Title: "Meeting", Message: "Saturday 9am"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/notifications", basicToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []database.Notification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Meeting", list[0].Title)
	assert.Equal(t, cnst.NotificationInfo, list[0].Kind)
}

func TestChangePasswordOverHTTP(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "basic@example.com", "basic123")

	w := e.do(t, http.MethodPost, "/api/auth/change-password", token, dto.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "updated456",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/api/auth/change-password", token, dto.ChangePasswordRequest{
		OldPassword: "basic123", NewPassword: "updated456",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	e.login(t, "basic@example.com", "updated456")
}
