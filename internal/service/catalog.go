package service

import (
	"context"
	"errors"
	"strings"

	"film_api/internal/models"
	"film_api/internal/repository"
)

// mapStoreErr translates repository sentinels into domain errors.
func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrForeignKey):
		return invalid("director_id does not reference an existing director")
	default:
		return err
	}
}

// ---- movies ----

type MovieService struct {
	repo  repository.MovieRepo
	audit AuditLog
}

func NewMovieService(repo repository.MovieRepo, audit AuditLog) *MovieService {
	return &MovieService{repo: repo, audit: audit}
}

func validateMovie(in models.MovieInput) (models.MovieInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, invalid("title is required")
	}
	if in.DirectorID <= 0 {
		return in, invalid("director_id must be a positive integer")
	}
	if in.Year <= 0 {
		return in, invalid("year must be a positive integer")
	}
	return in, nil
}

func (s *MovieService) List(ctx context.Context) ([]models.Movie, error) {
	return s.repo.List(ctx)
}

func (s *MovieService) Get(ctx context.Context, id int64) (*models.Movie, error) {
	m, err := s.repo.GetByID(ctx, id)
	return m, mapStoreErr(err)
}

func (s *MovieService) Create(ctx context.Context, in models.MovieInput) (*models.Movie, error) {
	in, err := validateMovie(in)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	s.record(ctx, models.ActionCreate, m.ID, &in)
	return m, nil
}

func (s *MovieService) Update(ctx context.Context, id int64, in models.MovieInput) (*models.Movie, error) {
	in, err := validateMovie(in)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	s.record(ctx, models.ActionUpdate, id, &in)
	return m, nil
}

func (s *MovieService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	s.record(ctx, models.ActionDelete, id, nil)
	return nil
}

func (s *MovieService) record(ctx context.Context, action string, id int64, in *models.MovieInput) {
	if s.audit == nil {
		return
	}
	var meta any
	if in != nil {
		meta = map[string]any{"title": in.Title, "director_id": in.DirectorID, "year": in.Year}
	}
	s.audit.Record(ctx, action, models.ResourceMovie, id, meta)
}

// ---- directors ----

type DirectorService struct {
	repo  repository.DirectorRepo
	audit AuditLog
}

func NewDirectorService(repo repository.DirectorRepo, audit AuditLog) *DirectorService {
	return &DirectorService{repo: repo, audit: audit}
}

func validateDirector(in models.DirectorInput) (models.DirectorInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, invalid("name is required")
	}
	if in.BirthYear <= 0 {
		return in, invalid("birthYear must be a positive integer")
	}
	return in, nil
}

func (s *DirectorService) List(ctx context.Context) ([]models.Director, error) {
	return s.repo.List(ctx)
}

func (s *DirectorService) Get(ctx context.Context, id int64) (*models.Director, error) {
	d, err := s.repo.GetByID(ctx, id)
	return d, mapStoreErr(err)
}

func (s *DirectorService) Create(ctx context.Context, in models.DirectorInput) (*models.Director, error) {
	in, err := validateDirector(in)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	s.record(ctx, models.ActionCreate, d.ID, &in)
	return d, nil
}

func (s *DirectorService) Update(ctx context.Context, id int64, in models.DirectorInput) (*models.Director, error) {
	in, err := validateDirector(in)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	s.record(ctx, models.ActionUpdate, id, &in)
	return d, nil
}

func (s *DirectorService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	s.record(ctx, models.ActionDelete, id, nil)
	return nil
}

func (s *DirectorService) record(ctx context.Context, action string, id int64, in *models.DirectorInput) {
	if s.audit == nil {
		return
	}
	var meta any
	if in != nil {
		meta = map[string]any{"name": in.Name, "birthYear": in.BirthYear}
	}
	s.audit.Record(ctx, action, models.ResourceDirector, id, meta)
}
