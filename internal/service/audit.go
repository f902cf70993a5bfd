package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"film_api/internal/models"
	"film_api/internal/repository"
)

type AuditService struct {
	auditRepo repository.AuditRepo
	onError   func(error)
	now       func() time.Time
}

// NewAuditService returns the audit log. onError receives failed writes; nil drops them.
func NewAuditService(auditRepo repository.AuditRepo, onError func(error)) *AuditService {
	if onError == nil {
		onError = func(error) {}
	}
	return &AuditService{auditRepo: auditRepo, onError: onError, now: time.Now}
}

var (
	knownActions = map[string]bool{
		models.ActionCreate: true, models.ActionUpdate: true,
		models.ActionDelete: true, models.ActionRegister: true,
	}
	knownResources = map[string]bool{
		models.ResourceMovie: true, models.ResourceDirector: true, models.ResourceUser: true,
	}
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters and validates them.
func normalizeAndValidateFilter(f AuditFilter) (repository.AuditQuery, error) {
	q := repository.AuditQuery{
		From:     normalizeToUTC(f.From),
		To:       normalizeToUTC(f.To),
		Action:   strings.ToUpper(strings.TrimSpace(f.Action)),
		Resource: strings.ToLower(strings.TrimSpace(f.Resource)),
	}

	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return repository.AuditQuery{}, invalid("invalid time range: from must be <= to")
	}
	if q.Action != "" && !knownActions[q.Action] {
		return repository.AuditQuery{}, invalid("unknown audit action %q", q.Action)
	}
	if q.Resource != "" && !knownResources[q.Resource] {
		return repository.AuditQuery{}, invalid("unknown audit resource %q", q.Resource)
	}
	return q, nil
}

func (s *AuditService) List(ctx context.Context, f AuditFilter) ([]models.AuditEvent, error) {
	q, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.auditRepo.List(ctx, q)
}

// Record appends an event for a mutation that already committed. The write is
// best effort: a failure is handed to onError and never fails the request.
func (s *AuditService) Record(ctx context.Context, action, resource string, resourceID int64, meta any) {
	err := s.auditRepo.Append(ctx, models.AuditEvent{
		OccurredAt: s.now().UTC(),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Actor:      actorFrom(ctx),
		Metadata:   meta,
	})
	if err != nil {
		s.onError(fmt.Errorf("record %s %s %d: %w", action, resource, resourceID, err))
	}
}
