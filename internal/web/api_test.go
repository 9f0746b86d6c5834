package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/PythonistaGuild/twitchio-token-relay/internal/models"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/store"
)

const testAdminKey = "super-secret"

func testKeyHash(t *testing.T) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminKey), bcrypt.MinCost)
	require.NoError(t, err)

	return string(hash)
}

func adminRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("X-Admin-Key", testAdminKey)

	return req
}

func seedUser(t *testing.T, s *store.Store) *models.User {
	t.Helper()

	user, err := s.UpsertUser(models.User{TwitchID: "123", Name: "tester"})
	require.NoError(t, err)

	return user
}

func TestRequireAdminKey(t *testing.T) {
	hash := testKeyHash(t)
	called := false
	handler := RequireAdminKey(hash, func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/applications", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/applications", nil)
	req.Header.Set("X-Admin-Key", "wrong")
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	rec = httptest.NewRecorder()
	handler(rec, adminRequest(http.MethodGet, "/api/applications", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireAdminKey_Disabled(t *testing.T) {
	handler := RequireAdminKey("", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when the admin API is disabled")
	})

	rec := httptest.NewRecorder()
	handler(rec, adminRequest(http.MethodGet, "/api/applications", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateApplication(t *testing.T) {
	s := testStore(t)
	user := seedUser(t, s)

	body := `{"user_id":"` + user.ID + `","client_id":"twitch-client","name":"My Bot","uri":"mybot","scopes":"chat:read"}`

	rec := httptest.NewRecorder()
	HandleCreateApplication(s, testLogger())(rec, adminRequest(http.MethodPost, "/api/applications", body))

	require.Equal(t, http.StatusCreated, rec.Code)

	var app models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &app))
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, "mybot", app.URI)

	stored, err := s.ApplicationByURI("mybot")
	require.NoError(t, err)
	assert.Equal(t, app.ID, stored.ID)
}

func TestCreateApplication_InvalidBody(t *testing.T) {
	s := testStore(t)

	rec := httptest.NewRecorder()
	HandleCreateApplication(s, testLogger())(rec, adminRequest(http.MethodPost, "/api/applications", "{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateApplication_MissingFields(t *testing.T) {
	s := testStore(t)

	rec := httptest.NewRecorder()
	HandleCreateApplication(s, testLogger())(rec, adminRequest(http.MethodPost, "/api/applications", `{"name":"no uri"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateApplication_DuplicateURI(t *testing.T) {
	s := testStore(t)
	user := seedUser(t, s)

	body := `{"user_id":"` + user.ID + `","uri":"mybot"}`

	rec := httptest.NewRecorder()
	HandleCreateApplication(s, testLogger())(rec, adminRequest(http.MethodPost, "/api/applications", body))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	HandleCreateApplication(s, testLogger())(rec, adminRequest(http.MethodPost, "/api/applications", body))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListApplications(t *testing.T) {
	s := testStore(t)
	user := seedUser(t, s)

	rec := httptest.NewRecorder()
	HandleListApplications(s)(rec, adminRequest(http.MethodGet, "/api/applications", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	_, err := s.CreateApplication(models.Application{UserID: user.ID, URI: "one"})
	require.NoError(t, err)
	_, err = s.CreateApplication(models.Application{UserID: user.ID, URI: "two"})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	HandleListApplications(s)(rec, adminRequest(http.MethodGet, "/api/applications", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var apps []models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
	assert.Len(t, apps, 2)
}

func TestDeleteApplication(t *testing.T) {
	s := testStore(t)
	user := seedUser(t, s)

	app, err := s.CreateApplication(models.Application{UserID: user.ID, URI: "mybot"})
	require.NoError(t, err)

	req := adminRequest(http.MethodDelete, "/api/applications/"+app.ID, "")
	req.SetPathValue("id", app.ID)

	rec := httptest.NewRecorder()
	HandleDeleteApplication(s, testLogger())(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err = s.ApplicationByURI("mybot")
	assert.Error(t, err)
}

func TestDeleteApplication_NotFound(t *testing.T) {
	s := testStore(t)

	req := adminRequest(http.MethodDelete, "/api/applications/ghost", "")
	req.SetPathValue("id", "ghost")

	rec := httptest.NewRecorder()
	HandleDeleteApplication(s, testLogger())(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRotateUserToken(t *testing.T) {
	s := testStore(t)
	user := seedUser(t, s)

	req := adminRequest(http.MethodPost, "/api/users/"+user.ID+"/token", "")
	req.SetPathValue("id", user.ID)

	rec := httptest.NewRecorder()
	HandleRotateUserToken(s, testLogger())(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])

	got, err := s.UserByToken(resp["token"])
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRotateUserToken_UnknownUser(t *testing.T) {
	s := testStore(t)

	req := adminRequest(http.MethodPost, "/api/users/ghost/token", "")
	req.SetPathValue("id", "ghost")

	rec := httptest.NewRecorder()
	HandleRotateUserToken(s, testLogger())(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
