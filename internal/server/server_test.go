package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"film_api/internal/handlers"
	"film_api/internal/metrics"
	"film_api/internal/models"
	"film_api/internal/repository"
	"film_api/internal/repository/db"
	"film_api/internal/server"
	"film_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bootstrapSecret = "operator-only"

type apiClient struct {
	t    *testing.T
	base string
}

func (a apiClient) do(method, path, token string, body any) (int, []byte) {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.base+path, rd)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, out
}

func (a apiClient) login(username, password string) string {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(a.t, http.StatusOK, code, string(body))
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(body, &out))
	return out.Token
}

func (a apiClient) registerAdmin(username, password string) {
	a.t.Helper()
	raw, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, err := http.NewRequest(http.MethodPost, a.base+"/auth/register-admin", bytes.NewReader(raw))
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Bootstrap-Secret", bootstrapSecret)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	resp.Body.Close()
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)
}

// startStack runs the whole application on a loopback port backed by an
// in-memory SQLite store.
func startStack(t *testing.T) (apiClient, *service.TokenManager, *repository.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, dialect, err := db.Open(context.Background(), db.Options{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	repos := repository.NewRepository(conn, dialect)
	tokens := service.NewTokenManager("e2e-secret", 0)
	services := service.NewService(repos, service.Deps{
		Tokens:      tokens,
		AuditErrors: func(err error) { t.Errorf("audit write failed: %v", err) },
	})
	h := handlers.NewHandler(services, nil, handlers.Options{
		BootstrapSecret: bootstrapSecret,
		Metrics:         metrics.NewHTTP(),
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &server.Server{}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln, h.InitRoutes()) }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, srv.Shutdown(ctx))
		assert.NoError(t, <-done)
	})

	return apiClient{t: t, base: "http://" + ln.Addr().String()}, tokens, repos
}

func TestEndToEnd_UserCannotCreateMovie(t *testing.T) {
	api, tokens, _ := startStack(t)

	code, body := api.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "ana", "password": "secret1"})
	require.Equal(t, http.StatusCreated, code, string(body))
	assert.JSONEq(t, `{"id":1,"username":"ana"}`, string(body))

	token := api.login("ANA", "secret1")
	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, claims.Role)

	code, body = api.do(http.MethodPost, "/movies", token, map[string]any{"title": "X", "director_id": 1, "year": 2020})
	assert.Equal(t, http.StatusForbidden, code)
	assert.JSONEq(t, `{"error":"access denied: only role 'admin' is allowed"}`, string(body))

	code, body = api.do(http.MethodGet, "/movies", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body))
}

func TestEndToEnd_RegistrationRules(t *testing.T) {
	api, _, _ := startStack(t)

	code, _ := api.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "bob", "password": "12345"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = api.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "bob", "password": "12345"})
	assert.Equal(t, http.StatusUnauthorized, code, "short password must not create a row")

	code, _ = api.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "Bob", "password": "secret1"})
	require.Equal(t, http.StatusCreated, code)
	code, body := api.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "BOB", "password": "another1"})
	assert.Equal(t, http.StatusConflict, code)
	assert.JSONEq(t, `{"error":"username already taken"}`, string(body))

	// first registration's password still works
	api.login("bob", "secret1")

	_, wrongPassword := api.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "bob", "password": "nope-nope"})
	_, unknownUser := api.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "nobody", "password": "nope-nope"})
	assert.JSONEq(t, string(wrongPassword), string(unknownUser))

	code, _ = api.do(http.MethodPost, "/auth/register-admin", "", map[string]string{"username": "eve", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestEndToEnd_AdminCatalogFlow(t *testing.T) {
	api, _, repos := startStack(t)
	api.registerAdmin("root", "secret1")
	admin := api.login("root", "secret1")

	code, body := api.do(http.MethodPost, "/directors", admin, map[string]any{"name": "Denis Villeneuve", "birthYear": 1967})
	require.Equal(t, http.StatusCreated, code, string(body))
	var director models.Director
	require.NoError(t, json.Unmarshal(body, &director))

	for _, title := range []string{"Sicario", "Arrival", "Dune"} {
		code, body = api.do(http.MethodPost, "/movies", admin, map[string]any{"title": title, "director_id": director.ID, "year": 2016})
		require.Equal(t, http.StatusCreated, code, string(body))
	}

	// missing title leaves the count unchanged
	code, _ = api.do(http.MethodPost, "/movies", admin, map[string]any{"director_id": director.ID, "year": 2016})
	assert.Equal(t, http.StatusBadRequest, code)

	// unknown director is a validation error
	code, body = api.do(http.MethodPost, "/movies", admin, map[string]any{"title": "Ghost", "director_id": 999, "year": 2016})
	assert.Equal(t, http.StatusBadRequest, code, string(body))

	var movies []models.Movie
	_, body = api.do(http.MethodGet, "/movies", "", nil)
	require.NoError(t, json.Unmarshal(body, &movies))
	require.Len(t, movies, 3)
	for i := 1; i < len(movies); i++ {
		assert.Less(t, movies[i-1].ID, movies[i].ID)
	}
	require.NotNil(t, movies[0].DirectorName)
	assert.Equal(t, "Denis Villeneuve", *movies[0].DirectorName)

	code, _ = api.do(http.MethodDelete, "/movies/999", admin, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// a well-formed update of an unknown id is a 404, not a validation error
	code, body = api.do(http.MethodPut, "/movies/999", admin, map[string]any{"title": "Dune", "director_id": director.ID, "year": 2021})
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"movie not found"}`, string(body))
	code, body = api.do(http.MethodPut, "/directors/999", admin, map[string]any{"name": "Nobody", "birthYear": 1970})
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"director not found"}`, string(body))

	code, body = api.do(http.MethodPut, "/movies/"+itoa(movies[0].ID), admin, map[string]any{"title": "Sicario", "director_id": 999, "year": 2015})
	assert.Equal(t, http.StatusBadRequest, code, string(body))

	target := movies[1].ID
	code, body = api.do(http.MethodDelete, "/movies/"+itoa(target), admin, nil)
	assert.Equal(t, http.StatusNoContent, code)
	assert.Empty(t, body)
	code, body = api.do(http.MethodGet, "/movies/"+itoa(target), "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"movie not found"}`, string(body))

	_, body = api.do(http.MethodGet, "/movies", "", nil)
	require.NoError(t, json.Unmarshal(body, &movies))
	assert.Len(t, movies, 2)

	// deleting the director keeps its movies with a null reference
	code, _ = api.do(http.MethodDelete, "/directors/"+itoa(director.ID), admin, nil)
	require.Equal(t, http.StatusNoContent, code)
	_, body = api.do(http.MethodGet, "/movies/"+itoa(movies[0].ID), "", nil)
	var orphan models.Movie
	require.NoError(t, json.Unmarshal(body, &orphan))
	assert.Nil(t, orphan.DirectorID)

	// each successful mutation left exactly one audit event:
	// register-admin, director create, 3 movie creates, movie delete, director delete
	events, err := repos.Audit.List(context.Background(), repository.AuditQuery{})
	require.NoError(t, err)
	assert.Len(t, events, 7)
	assert.Equal(t, "operator", events[0].Actor)
	assert.Equal(t, "root", events[len(events)-1].Actor)

	code, body = api.do(http.MethodGet, "/audit?resource=movie&action=create", admin, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	var audit struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &audit))
	assert.Equal(t, 3, audit.Count)
}

func TestEndToEnd_StatusAndMetrics(t *testing.T) {
	api, _, _ := startStack(t)

	code, body := api.do(http.MethodGet, "/status", "", nil)
	require.Equal(t, http.StatusOK, code)
	var st service.Status
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, "ok", st.Status)
	assert.Equal(t, "film-api", st.Service)
	assert.Equal(t, "up", st.Database)

	code, body = api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `film_api_http_requests_total{method="GET",route="/status",status="200"} 1`)

	code, body = api.do(http.MethodGet, "/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"Route not found"}`, string(body))
}

func TestServer_ShutdownBeforeRun(t *testing.T) {
	srv := &server.Server{}
	assert.NoError(t, srv.Shutdown(context.Background()))
	assert.Empty(t, srv.Addr())
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
