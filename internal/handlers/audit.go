package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"film_api/internal/models"
	"film_api/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

type auditResponse struct {
	Count  int                 `json:"count"`
	Events []models.AuditEvent `json:"events"`
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List audit events
// @Description  Mutation history ascending by time. If 'to' is date-only, it is treated as end-of-day inclusive.
// @Tags         audit
// @Produce      json
// @Param        from      query     string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        to        query     string  false  "End of range; date-only means end of day"  example(2025-08-31)
// @Param        action    query     string  false  "Action"    Enums(CREATE,UPDATE,DELETE,REGISTER)
// @Param        resource  query     string  false  "Resource"  Enums(movie,director,user)
// @Success      200       {object}  auditResponse
// @Failure      400       {object}  errorBody
// @Failure      401       {object}  errorBody
// @Failure      403       {object}  errorBody
// @Router       /audit [get]
// @Security     BearerAuth
func (h *Handler) listAudit(c *gin.Context) {
	filter, ok := auditFilterFromQuery(c)
	if !ok {
		return
	}

	events, err := h.services.Audit.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, "audit_list_failed", err, "from", filter.From, "to", filter.To)
		return
	}
	if events == nil {
		events = []models.AuditEvent{}
	}
	c.JSON(http.StatusOK, auditResponse{Count: len(events), Events: events})
}

// auditFilterFromQuery reads from/to/action/resource. Range and enum checks
// are left to the audit service.
func auditFilterFromQuery(c *gin.Context) (service.AuditFilter, bool) {
	f := service.AuditFilter{
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
	}
	var err error
	if qs := c.Query("from"); qs != "" {
		if f.From, err = parseQueryTime(qs); err != nil {
			fail(c, "audit_bad_query", &service.ValidationError{Msg: errFromInvalid})
			return f, false
		}
	}
	if qs := c.Query("to"); qs != "" {
		if f.To, err = parseQueryTime(qs); err != nil {
			fail(c, "audit_bad_query", &service.ValidationError{Msg: errToInvalid})
			return f, false
		}
		if isDateOnly(qs) {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return f, true
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q", s)
}
