package service

import (
	"context"
	"time"

	"film_api/internal/repository"
)

const (
	// ServiceName is reported by the status endpoint.
	ServiceName = "film-api"

	statusOK     = "ok"
	databaseUp   = "up"
	databaseDown = "down"

	pingTimeout = 2 * time.Second
)

type StatusService struct {
	store repository.Pinger
	now   func() time.Time
}

func NewStatusService(store repository.Pinger) *StatusService {
	return &StatusService{store: store, now: time.Now}
}

// Status reports liveness. The process is "ok" whenever it can answer; the
// store reachability is reported separately.
func (s *StatusService) Status(ctx context.Context) Status {
	st := Status{
		Status:    statusOK,
		Service:   ServiceName,
		Database:  databaseUp,
		Timestamp: s.now().UTC(),
	}
	if s.store == nil {
		st.Database = databaseDown
		return st
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.store.PingContext(ctx); err != nil {
		st.Database = databaseDown
	}
	return st
}
