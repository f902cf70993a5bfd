package handlers

import (
	"net/http"

	_ "film_api/docs" // registers the swagger document
	"film_api/internal/logger"
	"film_api/internal/metrics"
	"film_api/internal/models"
	"film_api/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options carries the optional collaborators of the HTTP layer.
type Options struct {
	// BootstrapSecret, when set, lets register-admin be called with a matching
	// X-Bootstrap-Secret header instead of an admin token.
	BootstrapSecret string
	Metrics         *metrics.HTTP
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	useJSONFieldNames()
	return &Handler{services: services, log: log, opts: opts}
}

// route is one entry of the dispatch table. Gates run in order and the first
// denial short-circuits the request.
type route struct {
	method   string
	path     string
	resource string // names the entity in "<resource> not found"
	gates    []Gate
	handle   gin.HandlerFunc
}

func (h *Handler) routeTable() []route {
	adminOnly := []Gate{h.authGate, requireRole(models.RoleAdmin)}

	return []route{
		{http.MethodGet, "/", "", nil, h.welcome},
		{http.MethodGet, "/status", "", nil, h.status},

		{http.MethodPost, "/auth/register", models.ResourceUser, nil, h.register(models.RoleUser)},
		{http.MethodPost, "/auth/register-admin", models.ResourceUser, []Gate{h.operatorGate}, h.register(models.RoleAdmin)},
		{http.MethodPost, "/auth/login", models.ResourceUser, nil, h.login},

		{http.MethodGet, "/movies", models.ResourceMovie, nil, h.listMovies},
		{http.MethodGet, "/movies/:id", models.ResourceMovie, nil, h.getMovie},
		{http.MethodPost, "/movies", models.ResourceMovie, adminOnly, h.createMovie},
		{http.MethodPut, "/movies/:id", models.ResourceMovie, adminOnly, h.updateMovie},
		{http.MethodDelete, "/movies/:id", models.ResourceMovie, adminOnly, h.deleteMovie},

		{http.MethodGet, "/directors", models.ResourceDirector, nil, h.listDirectors},
		{http.MethodGet, "/directors/:id", models.ResourceDirector, nil, h.getDirector},
		{http.MethodPost, "/directors", models.ResourceDirector, adminOnly, h.createDirector},
		{http.MethodPut, "/directors/:id", models.ResourceDirector, adminOnly, h.updateDirector},
		{http.MethodDelete, "/directors/:id", models.ResourceDirector, adminOnly, h.deleteDirector},

		{http.MethodGet, "/audit", "", adminOnly, h.listAudit},
		{http.MethodGet, "/ws/audit", "", adminOnly, h.auditFeed},
	}
}

// corsPolicy admits browser clients from any origin, including the auth headers.
func corsPolicy() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AddAllowHeaders("Authorization", bootstrapHeader)
	return cors.New(cfg)
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()

	router.Use(h.requestLogger, corsPolicy())
	if h.opts.Metrics != nil {
		router.Use(h.opts.Metrics.Middleware())
	}
	router.Use(gin.CustomRecovery(h.recoverPanic), h.errorResponder)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if h.opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.opts.Metrics.Handler()))
	}

	for _, rt := range h.routeTable() {
		router.Handle(rt.method, rt.path, withResource(rt.resource), guard(rt.gates), rt.handle)
	}
	return router
}
