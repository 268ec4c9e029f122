package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/shyam-539/GoTicket-server/internal/model"
)

// MovieFilter narrows List.
type MovieFilter struct {
	OnlyApproved bool
	CreatedBy    uint64
	Status       string
	Search       string // case-insensitive title prefix/substring
}

// MovieRepo stores the catalogue.  List-valued fields live in JSON columns.
type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieCols = `id, public_id, title, description, duration_min, release_date, languages, genres, cast_members,
	director, certificate, poster_url, trailer_url, status, created_by, creator_role, is_approved, created_at, updated_at`

func scanMovie(s rowScanner) (*model.Movie, error) {
	var (
		m                      model.Movie
		release                sql.NullTime
		langs, genres, castRaw []byte
	)
	if err := s.Scan(&m.ID, &m.PublicID, &m.Title, &m.Description, &m.DurationMin, &release,
		&langs, &genres, &castRaw, &m.Director, &m.Certificate, &m.PosterURL, &m.TrailerURL,
		&m.Status, &m.CreatedBy, &m.CreatorRole, &m.IsApproved, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if release.Valid {
		t := release.Time
		m.ReleaseDate = &t
	}
	lists := []struct {
		raw []byte
		dst *[]string
	}{{langs, &m.Languages}, {genres, &m.Genres}, {castRaw, &m.Cast}}
	for _, l := range lists {
		*l.dst = []string{}
		if len(l.raw) > 0 {
			if err := json.Unmarshal(l.raw, l.dst); err != nil {
				return nil, errors.Wrap(err, "decode movie list column")
			}
		}
	}
	return &m, nil
}

func jsonList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func nullDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02")
}

// Create inserts a movie and assigns its public id.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	if m.PublicID == "" {
		m.PublicID = uuid.NewString()
	}
	const q = `INSERT INTO movies (public_id, title, description, duration_min, release_date, languages, genres, cast_members,
	           director, certificate, poster_url, trailer_url, status, created_by, creator_role, is_approved)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.PublicID, m.Title, m.Description, m.DurationMin, nullDate(m.ReleaseDate),
		jsonList(m.Languages), jsonList(m.Genres), jsonList(m.Cast), m.Director, m.Certificate, m.PosterURL,
		m.TrailerURL, m.Status, m.CreatedBy, m.CreatorRole, m.IsApproved)
	if err != nil {
		return translate(err, "movie")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.WithStack(err)
	}
	fresh, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*m = *fresh
	return nil
}

func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx, "SELECT "+movieCols+" FROM movies WHERE id = ?", id))
	return m, translate(err, "movie")
}

// List returns movies newest first.
func (r *MovieRepo) List(ctx context.Context, f MovieFilter) ([]model.Movie, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.OnlyApproved {
		where = append(where, "is_approved = 1")
	}
	if f.CreatedBy != 0 {
		where = append(where, "created_by = ?")
		args = append(args, f.CreatedBy)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Search != "" {
		where = append(where, "title LIKE ?")
		args = append(args, "%"+strings.NewReplacer("%", `\%`, "_", `\_`).Replace(f.Search)+"%")
	}
	q := "SELECT " + movieCols + " FROM movies"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY created_at DESC, id DESC", args...)
	if err != nil {
		return nil, translate(err, "movie")
	}
	defer rows.Close()
	out := []model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, translate(err, "movie")
		}
		out = append(out, *m)
	}
	return out, translate(rows.Err(), "movie")
}

// Update writes the descriptive fields and the approval flag.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	const q = `UPDATE movies SET title = ?, description = ?, duration_min = ?, release_date = ?, languages = ?, genres = ?,
	           cast_members = ?, director = ?, certificate = ?, poster_url = ?, trailer_url = ?, status = ?, is_approved = ?,
	           updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.DurationMin, nullDate(m.ReleaseDate),
		jsonList(m.Languages), jsonList(m.Genres), jsonList(m.Cast), m.Director, m.Certificate, m.PosterURL,
		m.TrailerURL, m.Status, m.IsApproved, m.ID)
	if err != nil {
		return translate(err, "movie")
	}
	if err := expectOne(res, "movie"); err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, m.ID)
	if err != nil {
		return err
	}
	*m = *fresh
	return nil
}

func (r *MovieRepo) SetApproved(ctx context.Context, id uint64, approved bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE movies SET is_approved = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", approved, id)
	if err != nil {
		return translate(err, "movie")
	}
	return expectOne(res, "movie")
}

// Delete removes a movie.  Movies with shows are still referenced and the
// delete is reported as a conflict.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
	if err != nil {
		return translate(err, "movie")
	}
	return expectOne(res, "movie")
}
