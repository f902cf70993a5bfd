package handlers

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"film_api/internal/models"
	"film_api/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserKey     = "user"
	ctxResourceKey = "resource"

	bootstrapHeader = "X-Bootstrap-Secret"

	errTokenNotFound = "access denied, token not found"
	errTokenInvalid  = "invalid or expired token"
)

// Denial stops a request before it reaches its handler.
type Denial struct {
	Status int
	Reason string
}

// Gate inspects a request and either lets it through (nil) or denies it.
type Gate func(c *gin.Context) *Denial

// guard runs gates in order and aborts with the first denial.
func guard(gates []Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, gate := range gates {
			if d := gate(c); d != nil {
				c.AbortWithStatusJSON(d.Status, gin.H{"error": d.Reason})
				return
			}
		}
		c.Next()
	}
}

func withResource(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resource != "" {
			c.Set(ctxResourceKey, resource)
		}
		c.Next()
	}
}

// bearerToken extracts the credential of an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) string {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// authGate verifies the bearer token and stores the caller in both the gin
// context and the request context.
func (h *Handler) authGate(c *gin.Context) *Denial {
	token := bearerToken(c)
	if token == "" {
		return &Denial{Status: http.StatusUnauthorized, Reason: errTokenNotFound}
	}

	claims, err := h.services.ParseToken(token)
	if err != nil {
		h.log.Infow("auth_token_rejected", "err", err, "path", c.Request.URL.Path)
		return &Denial{Status: http.StatusForbidden, Reason: errTokenInvalid}
	}

	c.Set(ctxUserKey, claims)
	c.Request = c.Request.WithContext(service.WithUser(c.Request.Context(), claims))
	return nil
}

// requireRole admits only callers whose token carries exactly role.
func requireRole(role models.Role) Gate {
	reason := fmt.Sprintf("access denied: only role '%s' is allowed", role)
	return func(c *gin.Context) *Denial {
		claims, ok := currentUser(c)
		if !ok || claims.Role != role {
			return &Denial{Status: http.StatusForbidden, Reason: reason}
		}
		return nil
	}
}

// operatorGate admits the operator bootstrap secret when one is configured,
// and otherwise requires an admin token.
func (h *Handler) operatorGate(c *gin.Context) *Denial {
	if h.bootstrapSecretMatches(c.GetHeader(bootstrapHeader)) {
		c.Request = c.Request.WithContext(service.WithOperator(c.Request.Context()))
		return nil
	}
	if d := h.authGate(c); d != nil {
		return d
	}
	return requireRole(models.RoleAdmin)(c)
}

func (h *Handler) bootstrapSecretMatches(presented string) bool {
	want := h.opts.BootstrapSecret
	if want == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(want)) == 1
}

func currentUser(c *gin.Context) (*service.UserClaims, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*service.UserClaims)
	return claims, ok && claims != nil
}

// requestLogger emits one line per request once the chain has finished.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"client_ip", c.ClientIP(),
	)
}
