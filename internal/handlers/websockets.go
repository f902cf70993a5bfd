package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"film_api/internal/models"
	"film_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
)

// wsEnvelope is the frame written to feed subscribers.
type wsEnvelope struct {
	Type  string              `json:"type"`
	Data  []models.AuditEvent `json:"data"`
	Error string              `json:"error,omitempty"`
}

// Origins are not checked; the feed requires a bearer header.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// auditCursor remembers how far the feed has read. Events are fetched with an
// inclusive lower bound, so ids already sent at the cursor instant are skipped.
type auditCursor struct {
	since time.Time
	seen  map[string]struct{}
}

func newAuditCursor(since time.Time) *auditCursor {
	return &auditCursor{since: since.UTC(), seen: make(map[string]struct{})}
}

// advance returns the events not sent yet and moves the cursor past them.
// events must be ascending by time.
func (cur *auditCursor) advance(events []models.AuditEvent) []models.AuditEvent {
	fresh := make([]models.AuditEvent, 0, len(events))
	for _, ev := range events {
		if ev.OccurredAt.Before(cur.since) {
			continue
		}
		if _, dup := cur.seen[ev.EventID]; dup {
			continue
		}
		fresh = append(fresh, ev)
	}
	if len(fresh) == 0 {
		return fresh
	}

	if last := fresh[len(fresh)-1].OccurredAt.UTC(); last.After(cur.since) {
		cur.since = last
		cur.seen = make(map[string]struct{})
	}
	for _, ev := range fresh {
		if ev.OccurredAt.Equal(cur.since) {
			cur.seen[ev.EventID] = struct{}{}
		}
	}
	return fresh
}

// @Summary      Audit live feed
// @Description  Websocket upgrade. Pushes {"type":"audit","data":[...]} with events newer than the previous push. The first frame carries events since ?since= (default: connection time).
// @Tags         audit
// @Param        interval     query  string  false  "Poll interval as a Go duration, max 10s"  example(2s)
// @Param        interval_ms  query  int     false  "Poll interval in milliseconds, max 10000"  example(2000)
// @Param        since        query  string  false  "Replay events from this instant"
// @Success      101
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Router       /ws/audit [get]
// @Security     BearerAuth
func (h *Handler) auditFeed(c *gin.Context) {
	interval := h.parseInterval(c)
	since := time.Now()
	if qs := c.Query("since"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			fail(c, "ws_bad_query", &service.ValidationError{Msg: "invalid 'since' time"})
			return
		}
		since = t
	}
	cursor := newAuditCursor(since)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	ctx := c.Request.Context()

	// The first frame is always sent, even when empty.
	if err := h.pushAudit(ctx, conn, cursor, true); err != nil {
		h.log.Infow("ws_write_failed_initial", "err", err)
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Infow("ws_ping_failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := h.pushAudit(ctx, conn, cursor, false); err != nil {
				h.log.Infow("ws_write_failed", "err", err)
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return defaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Infow("ws_read_closed", "err", err)
			return
		}
	}
}

// pushAudit writes the events past the cursor. Empty batches are skipped
// unless always is set. A failed lookup is reported to the client before the
// error closes the feed.
func (h *Handler) pushAudit(ctx context.Context, conn *websocket.Conn, cursor *auditCursor, always bool) error {
	events, err := h.services.Audit.List(ctx, service.AuditFilter{From: cursor.since})
	if err != nil {
		h.log.Errorw("ws_audit_list_failed", "err", err)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(wsEnvelope{Type: "error", Error: errInternal})
		return err
	}

	fresh := cursor.advance(events)
	if len(fresh) == 0 && !always {
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: "audit", Data: fresh})
}
