package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"film_api/internal/models"
	"film_api/internal/repository"
)

// fakeMovieRepo is a minimal in-memory stub of repository.MovieRepo.
type fakeMovieRepo struct {
	rows    map[int64]models.Movie
	nextID  int64
	err     error
	creates int
}

func newFakeMovieRepo() *fakeMovieRepo {
	return &fakeMovieRepo{rows: map[int64]models.Movie{}, nextID: 1}
}

func (f *fakeMovieRepo) List(context.Context) ([]models.Movie, error) {
	out := make([]models.Movie, 0, len(f.rows))
	for id := int64(1); id < f.nextID; id++ {
		if m, ok := f.rows[id]; ok {
			out = append(out, m)
		}
	}
	return out, f.err
}

func (f *fakeMovieRepo) GetByID(_ context.Context, id int64) (*models.Movie, error) {
	m, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (f *fakeMovieRepo) Create(_ context.Context, in models.MovieInput) (*models.Movie, error) {
	f.creates++
	if f.err != nil {
		return nil, f.err
	}
	did := in.DirectorID
	m := models.Movie{ID: f.nextID, Title: in.Title, DirectorID: &did, Year: in.Year}
	f.rows[m.ID] = m
	f.nextID++
	return &m, nil
}

func (f *fakeMovieRepo) Update(_ context.Context, id int64, in models.MovieInput) (*models.Movie, error) {
	if _, ok := f.rows[id]; !ok {
		return nil, repository.ErrNotFound
	}
	did := in.DirectorID
	m := models.Movie{ID: id, Title: in.Title, DirectorID: &did, Year: in.Year}
	f.rows[id] = m
	return &m, nil
}

func (f *fakeMovieRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func adminCtx() context.Context {
	return WithUser(context.Background(), &UserClaims{ID: 1, Username: "root", Role: models.RoleAdmin})
}

func TestMovieService_Create_Validation(t *testing.T) {
	cases := []struct {
		name string
		in   models.MovieInput
	}{
		{"missing title", models.MovieInput{DirectorID: 1, Year: 2020}},
		{"blank title", models.MovieInput{Title: "   ", DirectorID: 1, Year: 2020}},
		{"missing director", models.MovieInput{Title: "X", Year: 2020}},
		{"missing year", models.MovieInput{Title: "X", DirectorID: 1}},
		{"negative year", models.MovieInput{Title: "X", DirectorID: 1, Year: -300}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeMovieRepo()
			audit := &recordingAudit{}
			svc := NewMovieService(repo, audit)

			_, err := svc.Create(adminCtx(), tc.in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if repo.creates != 0 || len(repo.rows) != 0 {
				t.Fatalf("repo must not be touched on invalid input")
			}
			if len(audit.records) != 0 {
				t.Fatalf("no audit on invalid input")
			}
		})
	}
}

func TestMovieService_CRUD_RecordsAudit(t *testing.T) {
	repo := newFakeMovieRepo()
	audit := &recordingAudit{}
	svc := NewMovieService(repo, audit)
	ctx := adminCtx()

	m, err := svc.Create(ctx, models.MovieInput{Title: "  X  ", DirectorID: 1, Year: 2020})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.Title != "X" {
		t.Fatalf("title must be trimmed, got %q", m.Title)
	}

	if _, err := svc.Update(ctx, m.ID, models.MovieInput{Title: "Y", DirectorID: 1, Year: 2021}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := svc.Update(ctx, 99, models.MovieInput{Title: "Y", DirectorID: 1, Year: 2021}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update missing: want ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete: want ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: want ErrNotFound, got %v", err)
	}

	want := []string{models.ActionCreate, models.ActionUpdate, models.ActionDelete}
	if len(audit.records) != len(want) {
		t.Fatalf("want %d audit records, got %+v", len(want), audit.records)
	}
	for i, a := range want {
		r := audit.records[i]
		if r.Action != a || r.Resource != models.ResourceMovie || r.ResourceID != m.ID || r.Actor != "root" {
			t.Fatalf("record %d: unexpected %+v", i, r)
		}
	}
}

func TestMovieService_Create_UnknownDirectorIsValidationError(t *testing.T) {
	repo := newFakeMovieRepo()
	repo.err = fmt.Errorf("insert movie: %w", errors.Join(repository.ErrForeignKey, errors.New("FOREIGN KEY constraint failed")))
	svc := NewMovieService(repo, nil)

	_, err := svc.Create(adminCtx(), models.MovieInput{Title: "X", DirectorID: 404, Year: 2020})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestMovieService_StoreErrorPassesThrough(t *testing.T) {
	repo := newFakeMovieRepo()
	boom := errors.New("disk full")
	repo.err = boom
	svc := NewMovieService(repo, nil)

	_, err := svc.Create(adminCtx(), models.MovieInput{Title: "X", DirectorID: 1, Year: 2020})
	if !errors.Is(err, boom) {
		t.Fatalf("expected raw store error, got %v", err)
	}
}

// fakeDirectorRepo records the input it receives.
type fakeDirectorRepo struct {
	repository.DirectorRepo
	last models.DirectorInput
}

func (f *fakeDirectorRepo) Create(_ context.Context, in models.DirectorInput) (*models.Director, error) {
	f.last = in
	return &models.Director{ID: 3, Name: in.Name, BirthYear: in.BirthYear}, nil
}

func (f *fakeDirectorRepo) Delete(context.Context, int64) error {
	return repository.ErrNotFound
}

func TestDirectorService_CreateValidatesAndTrims(t *testing.T) {
	repo := &fakeDirectorRepo{}
	audit := &recordingAudit{}
	svc := NewDirectorService(repo, audit)

	if _, err := svc.Create(adminCtx(), models.DirectorInput{Name: " ", BirthYear: 1961}); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank name: want ErrValidation, got %v", err)
	}
	if _, err := svc.Create(adminCtx(), models.DirectorInput{Name: "Peter Jackson"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing birthYear: want ErrValidation, got %v", err)
	}

	d, err := svc.Create(adminCtx(), models.DirectorInput{Name: " Peter Jackson ", BirthYear: 1961})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if repo.last.Name != "Peter Jackson" || d.ID != 3 {
		t.Fatalf("unexpected create: repo got %+v, returned %+v", repo.last, d)
	}
	if len(audit.records) != 1 || audit.records[0].Resource != models.ResourceDirector {
		t.Fatalf("expected one director audit record, got %+v", audit.records)
	}

	if err := svc.Delete(adminCtx(), 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete missing: want ErrNotFound, got %v", err)
	}
	if len(audit.records) != 1 {
		t.Fatalf("failed delete must not be audited")
	}
}
