package repository

import (
	"context"
	"database/sql"
	"time"

	"film_api/internal/models"
	"film_api/internal/repository/db"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string, role models.Role) (int64, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type MovieRepo interface {
	List(ctx context.Context) ([]models.Movie, error)
	GetByID(ctx context.Context, id int64) (*models.Movie, error)
	Create(ctx context.Context, in models.MovieInput) (*models.Movie, error)
	Update(ctx context.Context, id int64, in models.MovieInput) (*models.Movie, error)
	Delete(ctx context.Context, id int64) error
}

type DirectorRepo interface {
	List(ctx context.Context) ([]models.Director, error)
	GetByID(ctx context.Context, id int64) (*models.Director, error)
	Create(ctx context.Context, in models.DirectorInput) (*models.Director, error)
	Update(ctx context.Context, id int64, in models.DirectorInput) (*models.Director, error)
	Delete(ctx context.Context, id int64) error
}

type AuditRepo interface {
	Append(ctx context.Context, e models.AuditEvent) error
	List(ctx context.Context, f AuditQuery) ([]models.AuditEvent, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// AuditQuery filters the audit log. Zero values mean "no constraint".
type AuditQuery struct {
	From     time.Time
	To       time.Time
	Action   string
	Resource string
}

type Repository struct {
	Auth      Authorization
	Movies    MovieRepo
	Directors DirectorRepo
	Audit     AuditRepo
	Store     Pinger
}

func NewRepository(conn *sql.DB, dialect db.Dialect) *Repository {
	return &Repository{
		Auth:      NewUserRepository(conn, dialect),
		Movies:    NewMovieRepository(conn, dialect),
		Directors: NewDirectorRepository(conn, dialect),
		Audit:     NewAuditRepository(conn, dialect),
		Store:     conn,
	}
}
