package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"film_api/internal/models"
	"film_api/internal/repository/db"
)

type DirectorRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewDirectorRepository(conn *sql.DB, dialect db.Dialect) *DirectorRepository {
	return &DirectorRepository{db: conn, dialect: dialect}
}

var _ DirectorRepo = (*DirectorRepository)(nil)

const (
	selectDirectorsSQL    = `SELECT id, name, birth_year FROM directors ORDER BY id ASC`
	selectDirectorByIDSQL = `SELECT id, name, birth_year FROM directors WHERE id = ?`
	insertDirectorSQL     = `INSERT INTO directors (name, birth_year) VALUES (?, ?) RETURNING id, name, birth_year`
	updateDirectorSQL     = `UPDATE directors SET name = ?, birth_year = ? WHERE id = ? RETURNING id, name, birth_year`
	deleteDirectorSQL     = `DELETE FROM directors WHERE id = ?`
)

func scanDirector(s rowScanner) (*models.Director, error) {
	var d models.Director
	if err := s.Scan(&d.ID, &d.Name, &d.BirthYear); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DirectorRepository) List(ctx context.Context) ([]models.Director, error) {
	rows, err := r.db.QueryContext(ctx, selectDirectorsSQL)
	if err != nil {
		return nil, fmt.Errorf("select directors: %w", err)
	}
	defer rows.Close()

	out := make([]models.Director, 0, 16)
	for rows.Next() {
		d, err := scanDirector(rows)
		if err != nil {
			return nil, fmt.Errorf("scan director: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate directors: %w", err)
	}
	return out, nil
}

func (r *DirectorRepository) GetByID(ctx context.Context, id int64) (*models.Director, error) {
	d, err := scanDirector(r.db.QueryRowContext(ctx, rebind(r.dialect, selectDirectorByIDSQL), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select director %d: %w", id, err)
	}
	return d, nil
}

func (r *DirectorRepository) Create(ctx context.Context, in models.DirectorInput) (*models.Director, error) {
	d, err := scanDirector(r.db.QueryRowContext(ctx, rebind(r.dialect, insertDirectorSQL), in.Name, in.BirthYear))
	if err != nil {
		return nil, fmt.Errorf("insert director: %w", classify(err))
	}
	return d, nil
}

func (r *DirectorRepository) Update(ctx context.Context, id int64, in models.DirectorInput) (*models.Director, error) {
	d, err := scanDirector(r.db.QueryRowContext(ctx, rebind(r.dialect, updateDirectorSQL), in.Name, in.BirthYear, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update director %d: %w", id, classify(err))
	}
	return d, nil
}

// Delete removes the director; movies pointing at it keep a NULL director_id.
func (r *DirectorRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, rebind(r.dialect, deleteDirectorSQL), id)
	if err != nil {
		return fmt.Errorf("delete director %d: %w", id, classify(err))
	}
	return expectAffected(res, "director", id)
}
