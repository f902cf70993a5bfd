package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"film_api/internal/models"
	"film_api/internal/repository/db"
)

type MovieRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewMovieRepository(conn *sql.DB, dialect db.Dialect) *MovieRepository {
	return &MovieRepository{db: conn, dialect: dialect}
}

var _ MovieRepo = (*MovieRepository)(nil)

const (
	selectMoviesSQL = `
		SELECT m.id, m.title, m.year, d.id AS director_id, d.name AS director_name
		FROM movies m
		LEFT JOIN directors d ON m.director_id = d.id
		ORDER BY m.id ASC`

	selectMovieByIDSQL = `
		SELECT m.id, m.title, m.year, d.id AS director_id, d.name AS director_name
		FROM movies m
		LEFT JOIN directors d ON m.director_id = d.id
		WHERE m.id = ?`

	insertMovieSQL = `INSERT INTO movies (title, director_id, year) VALUES (?, ?, ?) RETURNING id, title, director_id, year`
	updateMovieSQL = `UPDATE movies SET title = ?, director_id = ?, year = ? WHERE id = ? RETURNING id, title, director_id, year`
	deleteMovieSQL = `DELETE FROM movies WHERE id = ?`
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJoinedMovie(s rowScanner) (models.Movie, error) {
	var (
		m            models.Movie
		directorID   sql.NullInt64
		directorName sql.NullString
	)
	if err := s.Scan(&m.ID, &m.Title, &m.Year, &directorID, &directorName); err != nil {
		return models.Movie{}, err
	}
	if directorID.Valid {
		id := directorID.Int64
		m.DirectorID = &id
	}
	if directorName.Valid {
		name := directorName.String
		m.DirectorName = &name
	}
	return m, nil
}

func scanMovieRow(s rowScanner) (*models.Movie, error) {
	var (
		m          models.Movie
		directorID sql.NullInt64
	)
	if err := s.Scan(&m.ID, &m.Title, &directorID, &m.Year); err != nil {
		return nil, err
	}
	if directorID.Valid {
		id := directorID.Int64
		m.DirectorID = &id
	}
	return &m, nil
}

// List returns every movie ordered by id, with the director joined in.
func (r *MovieRepository) List(ctx context.Context) ([]models.Movie, error) {
	rows, err := r.db.QueryContext(ctx, selectMoviesSQL)
	if err != nil {
		return nil, fmt.Errorf("select movies: %w", err)
	}
	defer rows.Close()

	out := make([]models.Movie, 0, 16)
	for rows.Next() {
		m, err := scanJoinedMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return out, nil
}

// GetByID returns ErrNotFound when no movie has the id.
func (r *MovieRepository) GetByID(ctx context.Context, id int64) (*models.Movie, error) {
	m, err := scanJoinedMovie(r.db.QueryRowContext(ctx, rebind(r.dialect, selectMovieByIDSQL), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select movie %d: %w", id, err)
	}
	return &m, nil
}

func (r *MovieRepository) Create(ctx context.Context, in models.MovieInput) (*models.Movie, error) {
	row := r.db.QueryRowContext(ctx, rebind(r.dialect, insertMovieSQL), in.Title, in.DirectorID, in.Year)
	m, err := scanMovieRow(row)
	if err != nil {
		return nil, fmt.Errorf("insert movie: %w", classify(err))
	}
	return m, nil
}

// Update returns ErrNotFound when no row matched id.
func (r *MovieRepository) Update(ctx context.Context, id int64, in models.MovieInput) (*models.Movie, error) {
	row := r.db.QueryRowContext(ctx, rebind(r.dialect, updateMovieSQL), in.Title, in.DirectorID, in.Year, id)
	m, err := scanMovieRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update movie %d: %w", id, classify(err))
	}
	return m, nil
}

// Delete returns ErrNotFound when no row matched id.
func (r *MovieRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, rebind(r.dialect, deleteMovieSQL), id)
	if err != nil {
		return fmt.Errorf("delete movie %d: %w", id, classify(err))
	}
	return expectAffected(res, "movie", id)
}

// expectAffected turns a zero rows-affected result into ErrNotFound.
func expectAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s %d: %w", what, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
