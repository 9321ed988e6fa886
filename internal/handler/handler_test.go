package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tablepick/config"
	"tablepick/internal/database"
	"tablepick/internal/router"
	"tablepick/pkg/hotpepper"
	"tablepick/pkg/openai"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// staticDirectory serves a fixed result set or an injected failure.
type staticDirectory struct {
	restaurants []hotpepper.Restaurant
	err         error
}

func (d *staticDirectory) Search(ctx context.Context, q hotpepper.Query) ([]hotpepper.Restaurant, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.restaurants, nil
}

// setupServer mirrors the wiring in cmd/server/main.go against an
// in-memory database, the scripted interviewer, and a static directory.
func setupServer(t *testing.T, directory hotpepper.Directory) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return router.Setup(config.Load(), db, directory, openai.NewClient("", "", 0))
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &parsed)
	}
	return w, parsed
}

func createUserVia(t *testing.T, engine *gin.Engine, nickname string) string {
	t.Helper()
	w, body := doJSON(t, engine, http.MethodPost, "/api/users/anonymous", gin.H{"nickname": nickname})
	require.Equal(t, http.StatusCreated, w.Code)
	id, _ := body["user_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func createGroupVia(t *testing.T, engine *gin.Engine, hostID string) (groupID, inviteCode string) {
	t.Helper()
	w, body := doJSON(t, engine, http.MethodPost, "/api/groups", gin.H{"name": "friday dinner", "host_user_id": hostID})
	require.Equal(t, http.StatusCreated, w.Code)
	groupID, _ = body["group_id"].(string)
	inviteCode, _ = body["invite_code"].(string)
	require.NotEmpty(t, groupID)
	require.Len(t, inviteCode, 6)
	return groupID, inviteCode
}

func TestHealth(t *testing.T) {
	engine := setupServer(t, &staticDirectory{})
	w, body := doJSON(t, engine, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestUserLifecycle(t *testing.T) {
	engine := setupServer(t, &staticDirectory{})
	id := createUserVia(t, engine, "taro")

	w, body := doJSON(t, engine, http.MethodGet, "/api/users/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "taro", body["nickname"])

	w, body = doJSON(t, engine, http.MethodPut, "/api/users/"+id, gin.H{"nickname": "jiro"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jiro", body["nickname"])

	w, _ = doJSON(t, engine, http.MethodDelete, "/api/users/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, engine, http.MethodGet, "/api/users/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupCreateAndJoin(t *testing.T) {
	engine := setupServer(t, &staticDirectory{})
	hostID := createUserVia(t, engine, "host")
	friendID := createUserVia(t, engine, "friend")
	groupID, code := createGroupVia(t, engine, hostID)

	w, body := doJSON(t, engine, http.MethodPost, "/api/groups/join", gin.H{"invite_code": code, "user_id": friendID})
	require.Equal(t, http.StatusOK, w.Code)
	members, _ := body["members"].([]interface{})
	assert.Len(t, members, 2)

	// joining twice is a validation error
	w, _ = doJSON(t, engine, http.MethodPost, "/api/groups/join", gin.H{"invite_code": code, "user_id": friendID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, engine, http.MethodPost, "/api/groups/join", gin.H{"invite_code": "ZZZZZZ", "user_id": friendID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = doJSON(t, engine, http.MethodGet, "/api/groups/"+groupID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, hostID, body["host_user_id"])
}

func TestPreferenceResubmitReplaces(t *testing.T) {
	engine := setupServer(t, &staticDirectory{})
	hostID := createUserVia(t, engine, "host")
	groupID, _ := createGroupVia(t, engine, hostID)
	path := "/api/groups/" + groupID + "/users/" + hostID + "/search-preferences"

	w, _ := doJSON(t, engine, http.MethodPost, path, gin.H{"keywords": "sushi", "search_range": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	w, body := doJSON(t, engine, http.MethodPost, path, gin.H{"keywords": "ramen"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ramen", body["keywords"])
	// unspecified fields fall back to defaults, not the prior row
	assert.EqualValues(t, 3, body["search_range"])

	w, parsed := doJSON(t, engine, http.MethodGet, "/api/groups/"+groupID+"/search-preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_ = parsed
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "ramen", list[0]["keywords"])
}

func TestPreferenceSubmitRequiresMembership(t *testing.T) {
	engine := setupServer(t, &staticDirectory{})
	hostID := createUserVia(t, engine, "host")
	outsiderID := createUserVia(t, engine, "outsider")
	groupID, _ := createGroupVia(t, engine, hostID)

	w, _ := doJSON(t, engine, http.MethodPost,
		"/api/groups/"+groupID+"/users/"+outsiderID+"/search-preferences",
		gin.H{"keywords": "sushi"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGroupSearchEndpoint(t *testing.T) {
	directory := &staticDirectory{restaurants: []hotpepper.Restaurant{
		{ExternalID: "J001", Name: "Sakura Tei", Lat: 35.011, Lng: 139.011},
	}}
	engine := setupServer(t, directory)
	hostID := createUserVia(t, engine, "host")
	groupID, _ := createGroupVia(t, engine, hostID)

	// without preferences the search is rejected
	w, _ := doJSON(t, engine, http.MethodPost, "/api/groups/"+groupID+"/search-restaurants", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, engine, http.MethodPost,
		"/api/groups/"+groupID+"/users/"+hostID+"/search-preferences",
		gin.H{"keywords": "sushi", "lat": 35.0, "lng": 139.0, "search_range": 3})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := doJSON(t, engine, http.MethodPost, "/api/groups/"+groupID+"/search-restaurants", nil)
	require.Equal(t, http.StatusOK, w.Code)
	restaurants, _ := body["restaurants"].([]interface{})
	require.Len(t, restaurants, 1)
	first, _ := restaurants[0].(map[string]interface{})
	assert.Equal(t, "Sakura Tei", first["name"])
	assert.NotNil(t, first["distance_km"])
	merged, _ := body["merged_query"].(map[string]interface{})
	assert.Equal(t, "sushi", merged["keyword"])
}

func TestGroupSearchUpstreamFailureIs502(t *testing.T) {
	engine := setupServer(t, &staticDirectory{err: &hotpepper.SearchError{Status: http.StatusServiceUnavailable}})
	hostID := createUserVia(t, engine, "host")
	groupID, _ := createGroupVia(t, engine, hostID)
	w, _ := doJSON(t, engine, http.MethodPost,
		"/api/groups/"+groupID+"/users/"+hostID+"/search-preferences", gin.H{"keywords": "sushi"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = doJSON(t, engine, http.MethodPost, "/api/groups/"+groupID+"/search-restaurants", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestRecommendationAndVotingFlow(t *testing.T) {
	directory := &staticDirectory{restaurants: []hotpepper.Restaurant{
		{ExternalID: "J001", Name: "Sakura Tei"},
		{ExternalID: "J002", Name: "Bistro Montagne"},
	}}
	engine := setupServer(t, directory)
	hostID := createUserVia(t, engine, "host")
	groupID, _ := createGroupVia(t, engine, hostID)

	// blocked until the interview is done
	w, _ := doJSON(t, engine, http.MethodPost, "/api/groups/"+groupID+"/recommendations", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := doJSON(t, engine, http.MethodPost,
		"/api/groups/"+groupID+"/users/"+hostID+"/interviews", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	interviewID, _ := body["interview_id"].(string)
	require.NotEmpty(t, interviewID)

	w, _ = doJSON(t, engine, http.MethodPost, "/api/interviews/"+interviewID+"/chat",
		gin.H{"content": "2000 yen, sushi, shibuya"})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, engine, http.MethodPost, "/api/interviews/"+interviewID+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, body = doJSON(t, engine, http.MethodGet, "/api/groups/"+groupID+"/interview-status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["all_completed"])

	w, body = doJSON(t, engine, http.MethodPost, "/api/groups/"+groupID+"/recommendations", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	candidates, _ := body["candidates"].([]interface{})
	require.Len(t, candidates, 2)
	first, _ := candidates[0].(map[string]interface{})
	candidateID, _ := first["candidate_id"].(string)
	require.NotEmpty(t, candidateID)

	// the one-shot rule: regeneration conflicts
	w, _ = doJSON(t, engine, http.MethodPost, "/api/groups/"+groupID+"/recommendations", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = doJSON(t, engine, http.MethodPost, "/api/candidates/"+candidateID+"/vote",
		gin.H{"user_id": hostID, "vote_type": "like"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["created"])

	w, _ = doJSON(t, engine, http.MethodPost, "/api/candidates/"+candidateID+"/vote",
		gin.H{"user_id": hostID, "vote_type": "whatever"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = doJSON(t, engine, http.MethodGet, "/api/groups/"+groupID+"/votes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["is_voting_complete"])

	w, body = doJSON(t, engine, http.MethodGet, "/api/groups/"+groupID+"/user/"+hostID+"/vote", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["has_voted"])
	assert.Equal(t, candidateID, body["voted_candidate_id"])
}

func TestFinalDecisionHostOnly(t *testing.T) {
	directory := &staticDirectory{restaurants: []hotpepper.Restaurant{{ExternalID: "J001", Name: "Sakura Tei"}}}
	engine := setupServer(t, directory)
	hostID := createUserVia(t, engine, "host")
	friendID := createUserVia(t, engine, "friend")
	groupID, code := createGroupVia(t, engine, hostID)
	w, _ := doJSON(t, engine, http.MethodPost, "/api/groups/join", gin.H{"invite_code": code, "user_id": friendID})
	require.Equal(t, http.StatusOK, w.Code)

	for _, userID := range []string{hostID, friendID} {
		w, body := doJSON(t, engine, http.MethodPost,
			"/api/groups/"+groupID+"/users/"+userID+"/interviews", nil)
		require.Equal(t, http.StatusCreated, w.Code)
		interviewID, _ := body["interview_id"].(string)
		w, _ = doJSON(t, engine, http.MethodPost, "/api/interviews/"+interviewID+"/complete", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, _ = doJSON(t, engine, http.MethodPost, "/api/groups/"+groupID+"/recommendations", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = doJSON(t, engine, http.MethodPost, "/api/groups/"+groupID+"/final-decision",
		gin.H{"user_id": friendID, "restaurant_id": "J001", "restaurant_name": "Sakura Tei"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := doJSON(t, engine, http.MethodPost, "/api/groups/"+groupID+"/final-decision",
		gin.H{"user_id": hostID, "restaurant_id": "J001", "restaurant_name": "Sakura Tei"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sakura Tei", body["restaurant_name"])

	w, body = doJSON(t, engine, http.MethodGet, "/api/groups/"+groupID+"/final-decision", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decision, _ := body["final_decision"].(map[string]interface{})
	require.NotNil(t, decision)
	assert.Equal(t, hostID, decision["decided_by"])
}
