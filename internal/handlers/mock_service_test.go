package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"film_api/internal/models"
	"film_api/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

type mockAuth struct {
	registerUser *models.User
	registerErr  error
	loginToken   string
	loginErr     error

	lastRegisterUsername string
	lastRegisterRole     models.Role
	lastRegisterCtx      context.Context
	lastLoginUsername    string
}

func (m *mockAuth) Register(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	m.lastRegisterUsername = username
	m.lastRegisterRole = role
	m.lastRegisterCtx = ctx
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	if m.registerUser != nil {
		return m.registerUser, nil
	}
	return &models.User{ID: 1, Username: strings.ToLower(username), Role: role}, nil
}

func (m *mockAuth) Login(ctx context.Context, username, password string) (string, error) {
	m.lastLoginUsername = username
	return m.loginToken, m.loginErr
}

// ParseToken knows two fixed tokens; everything else is invalid.
func (m *mockAuth) ParseToken(token string) (*service.UserClaims, error) {
	switch token {
	case adminToken:
		return &service.UserClaims{ID: 1, Username: "root", Role: models.RoleAdmin}, nil
	case userToken:
		return &service.UserClaims{ID: 2, Username: "ana", Role: models.RoleUser}, nil
	default:
		return nil, service.ErrInvalidToken
	}
}

type mockMovies struct {
	list    []models.Movie
	movie   *models.Movie
	err     error
	lastID  int64
	lastIn  models.MovieInput
	lastCtx context.Context
	calls   int
}

func (m *mockMovies) List(ctx context.Context) ([]models.Movie, error) {
	m.calls++
	return m.list, m.err
}

func (m *mockMovies) Get(ctx context.Context, id int64) (*models.Movie, error) {
	m.calls++
	m.lastID = id
	return m.movie, m.err
}

func (m *mockMovies) Create(ctx context.Context, in models.MovieInput) (*models.Movie, error) {
	m.calls++
	m.lastIn, m.lastCtx = in, ctx
	return m.movie, m.err
}

func (m *mockMovies) Update(ctx context.Context, id int64, in models.MovieInput) (*models.Movie, error) {
	m.calls++
	m.lastID, m.lastIn = id, in
	return m.movie, m.err
}

func (m *mockMovies) Delete(ctx context.Context, id int64) error {
	m.calls++
	m.lastID = id
	return m.err
}

type mockDirectors struct {
	list     []models.Director
	director *models.Director
	err      error
	lastID   int64
	lastIn   models.DirectorInput
	calls    int
}

func (m *mockDirectors) List(ctx context.Context) ([]models.Director, error) {
	m.calls++
	return m.list, m.err
}

func (m *mockDirectors) Get(ctx context.Context, id int64) (*models.Director, error) {
	m.calls++
	m.lastID = id
	return m.director, m.err
}

func (m *mockDirectors) Create(ctx context.Context, in models.DirectorInput) (*models.Director, error) {
	m.calls++
	m.lastIn = in
	return m.director, m.err
}

func (m *mockDirectors) Update(ctx context.Context, id int64, in models.DirectorInput) (*models.Director, error) {
	m.calls++
	m.lastID, m.lastIn = id, in
	return m.director, m.err
}

func (m *mockDirectors) Delete(ctx context.Context, id int64) error {
	m.calls++
	m.lastID = id
	return m.err
}

// mockAudit is shared with the websocket goroutine, hence the lock.
type mockAudit struct {
	mu         sync.Mutex
	events     []models.AuditEvent
	err        error
	lastFilter service.AuditFilter
}

func (m *mockAudit) Record(ctx context.Context, action, resource string, resourceID int64, meta any) {
}

func (m *mockAudit) List(ctx context.Context, f service.AuditFilter) ([]models.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.AuditEvent(nil), m.events...), nil
}

func (m *mockAudit) add(ev models.AuditEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockAudit) filter() service.AuditFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastFilter
}

type mockStatus struct{ st service.Status }

func (m *mockStatus) Status(ctx context.Context) service.Status { return m.st }

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWith(s, Options{})
}

func newTestRouterWith(s *service.Service, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, opts)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// newRequest builds a JSON request carrying token (if any).
func newRequest(method, target, token string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
