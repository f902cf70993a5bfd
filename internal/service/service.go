package service

import (
	"context"

	"film_api/internal/models"
	"film_api/internal/repository"
)

type Authorization interface {
	Register(ctx context.Context, username, password string, role models.Role) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (*UserClaims, error)
}

// MovieCatalog exposes CRUD over movies.
type MovieCatalog interface {
	List(ctx context.Context) ([]models.Movie, error)
	Get(ctx context.Context, id int64) (*models.Movie, error)
	Create(ctx context.Context, in models.MovieInput) (*models.Movie, error)
	Update(ctx context.Context, id int64, in models.MovieInput) (*models.Movie, error)
	Delete(ctx context.Context, id int64) error
}

// DirectorCatalog exposes CRUD over directors.
type DirectorCatalog interface {
	List(ctx context.Context) ([]models.Director, error)
	Get(ctx context.Context, id int64) (*models.Director, error)
	Create(ctx context.Context, in models.DirectorInput) (*models.Director, error)
	Update(ctx context.Context, id int64, in models.DirectorInput) (*models.Director, error)
	Delete(ctx context.Context, id int64) error
}

// AuditLog exposes the append-only mutation log with filtering access.
type AuditLog interface {
	Record(ctx context.Context, action, resource string, resourceID int64, meta any)
	List(ctx context.Context, f AuditFilter) ([]models.AuditEvent, error)
}

// StatusReporter exposes liveness information.
type StatusReporter interface {
	Status(ctx context.Context) Status
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Movies    MovieCatalog
	Directors DirectorCatalog
	Audit     AuditLog
	Status    StatusReporter
}

// Deps are the non-repository collaborators of the services.
type Deps struct {
	Tokens *TokenManager
	// AuditErrors receives audit writes that failed after the mutation committed.
	AuditErrors func(error)
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	audit := NewAuditService(repos.Audit, deps.AuditErrors)
	return &Service{
		Authorization: NewAuthService(repos.Auth, deps.Tokens, audit),
		Movies:        NewMovieService(repos.Movies, audit),
		Directors:     NewDirectorService(repos.Directors, audit),
		Audit:         audit,
		Status:        NewStatusService(repos.Store),
	}
}
