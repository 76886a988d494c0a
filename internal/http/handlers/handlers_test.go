package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/territory_assign/backend/internal/memstore"
	"github.com/territory_assign/backend/internal/models"
	"github.com/territory_assign/backend/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memstore.New()
	logger := zerolog.Nop()
	validate := validator.New()
	ruleSvc := service.NewRuleService(store, logger)
	h := &Handler{
		Store:       store,
		Territories: service.NewTerritoryService(store, validate, logger),
		Rules:       ruleSvc,
		Engine:      service.NewEngine(store, ruleSvc, logger),
		Stats:       service.NewStatsService(store, ruleSvc, store, nil, logger),
		Logs:        service.NewLogService(store, 50, 500, logger),
		Validator:   validate,
		Logger:      logger,
	}

	r := gin.New()
	r.GET("/territories", h.TerritoriesList)
	r.POST("/territories", h.TerritoryCreate)
	r.GET("/territories/:id", h.TerritoryGet)
	r.PATCH("/territories/:id", h.TerritoryUpdate)
	r.DELETE("/territories/:id", h.TerritoryDelete)
	r.POST("/territories/:id/members", h.MemberAdd)
	r.PATCH("/territories/:id/members/:userId", h.MemberUpdate)
	r.DELETE("/territories/:id/members/:userId", h.MemberRemove)
	r.GET("/territories/:id/stats", h.TerritoryStats)
	r.GET("/stats/utilization", h.UtilizationRanking)
	r.POST("/rules", h.RuleCreate)
	r.GET("/rules", h.RulesList)
	r.GET("/rules/active", h.RulesActive)
	r.GET("/rules/:id", h.RuleGet)
	r.PATCH("/rules/:id", h.RuleUpdate)
	r.DELETE("/rules/:id", h.RuleDelete)
	r.POST("/assignments", h.Assign)
	r.GET("/assignment-logs", h.LogsList)
	r.DELETE("/assignment-logs", h.LogsClear)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createTerritory(t *testing.T, r http.Handler, name string, members ...map[string]any) models.Territory {
	t.Helper()
	w := do(t, r, http.MethodPost, "/territories", map[string]any{
		"name":         name,
		"type":         "regional",
		"team_members": members,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Territory](t, w)
}

func memberBody(id string, count, max int) map[string]any {
	return map[string]any{
		"user_id":              id,
		"user_name":            "User " + id,
		"role":                 "member",
		"current_client_count": count,
		"max_capacity":         max,
		"active":               true,
	}
}

func TestTerritoryCRUD(t *testing.T) {
	r := newTestRouter(t)
	terr := createTerritory(t, r, "Metro", memberBody("A", 1, 5))
	require.True(t, terr.Active)

	w := do(t, r, http.MethodPatch, "/territories/"+terr.ID, map[string]any{"name": "Metro North"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Metro North", decode[models.Territory](t, w).Name)

	w = do(t, r, http.MethodGet, "/territories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]models.Territory](t, w), 1)

	w = do(t, r, http.MethodDelete, "/territories/"+terr.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/territories/"+terr.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "NOT_FOUND", decode[ErrorResponse](t, w).Error.Code)

	w = do(t, r, http.MethodDelete, "/territories/"+terr.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTerritoryCreateValidation(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/territories", map[string]any{"name": "x", "type": "planet"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "VALIDATION_ERROR", decode[ErrorResponse](t, w).Error.Code)

	w = do(t, r, http.MethodPost, "/territories", map[string]any{
		"name":         "x",
		"type":         "custom",
		"team_members": []map[string]any{memberBody("A", 0, 5), memberBody("A", 0, 5)},
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRosterEndpoints(t *testing.T) {
	r := newTestRouter(t)
	terr := createTerritory(t, r, "Metro", memberBody("A", 0, 5))
	base := "/territories/" + terr.ID + "/members"

	w := do(t, r, http.MethodPost, base, memberBody("B", 0, 3))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[models.Territory](t, w).TeamMembers, 2)

	w = do(t, r, http.MethodPost, base, memberBody("B", 0, 3))
	require.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPatch, base+"/B", map[string]any{"max_capacity": 4})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodDelete, base+"/ghost", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodDelete, base+"/A", nil)
	require.Equal(t, http.StatusOK, w.Code)
	members := decode[models.Territory](t, w).TeamMembers
	require.Len(t, members, 1)
	require.Equal(t, 4, members[0].MaxCapacity)
}

func TestRuleEndpoints(t *testing.T) {
	r := newTestRouter(t)
	terr := createTerritory(t, r, "Metro", memberBody("A", 0, 5))

	w := do(t, r, http.MethodPost, "/rules", map[string]any{
		"name":     "visa desk",
		"priority": 10,
		"conditions": []map[string]any{
			{"field": "packageType", "operator": "equals", "value": []string{"visa"}},
		},
		"action": map[string]any{"type": "assign_to_territory", "territory_id": terr.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rule := decode[models.AssignmentRule](t, w)
	require.Equal(t, models.AssignToTerritory{TerritoryID: terr.ID}, rule.Action)

	w = do(t, r, http.MethodPost, "/rules", map[string]any{
		"name": "bad",
		"conditions": []map[string]any{
			{"field": "packageType", "operator": "range", "value": []string{"1", "2"}},
		},
		"action": map[string]any{"type": "load_balance"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/rules", map[string]any{
		"name": "bad action",
		"conditions": []map[string]any{
			{"field": "packageType", "operator": "equals", "value": []string{"x"}},
		},
		"action": map[string]any{"type": "teleport"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPatch, "/rules/"+rule.ID, map[string]any{"active": false})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/rules/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode[[]models.AssignmentRule](t, w))

	w = do(t, r, http.MethodDelete, "/rules/"+rule.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/rules/"+rule.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignEndpoint(t *testing.T) {
	r := newTestRouter(t)
	terr := createTerritory(t, r, "Metro", memberBody("A", 2, 5), memberBody("B", 5, 5))

	w := do(t, r, http.MethodPost, "/assignments", map[string]any{
		"client_id":      "c1",
		"client_name":    "Client One",
		"manual_user_id": "A",
		"performed_by":   "ops",
	})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[models.AssignmentResult](t, w)
	require.True(t, res.Success)
	require.Equal(t, "A", res.AssignedToUserID)
	require.Equal(t, terr.ID, res.TerritoryID)

	w = do(t, r, http.MethodPost, "/assignments", map[string]any{
		"client_id":      "c2",
		"client_name":    "Client Two",
		"manual_user_id": "B",
	})
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[models.AssignmentResult](t, w)
	require.False(t, res.Success)
	require.Equal(t, models.ConflictCapacityExceeded, res.Conflict.Type)

	w = do(t, r, http.MethodPost, "/assignments", map[string]any{"client_name": "No ID"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/assignment-logs?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[[]models.AssignmentLog](t, w)
	require.Len(t, logs, 1)
	require.Equal(t, "c2", logs[0].ClientID)
	require.False(t, logs[0].Success)

	w = do(t, r, http.MethodGet, "/assignment-logs?limit=abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, "/assignment-logs", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/assignment-logs", nil)
	require.Empty(t, decode[[]models.AssignmentLog](t, w))
}

func TestStatsEndpoints(t *testing.T) {
	r := newTestRouter(t)
	low := createTerritory(t, r, "Low", memberBody("A", 1, 10))
	high := createTerritory(t, r, "High", memberBody("B", 8, 10))

	w := do(t, r, http.MethodGet, "/territories/"+high.ID+"/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[models.TerritoryStats](t, w)
	require.InDelta(t, 80.0, st.CapacityUtilization, 1e-9)

	w = do(t, r, http.MethodGet, "/territories/missing/stats", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/stats/utilization", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ranking := decode[[]models.TerritoryStats](t, w)
	require.Len(t, ranking, 2)
	require.Equal(t, high.ID, ranking[0].TerritoryID)
	require.Equal(t, low.ID, ranking[1].TerritoryID)
}
