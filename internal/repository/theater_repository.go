// This file holds the persistence for theaters.  A theater belongs to one
// owner for its lifetime and owns screens; deleting it cascades to them.
package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/shyam-539/GoTicket-server/internal/model"
)

// TheaterFilter narrows List.  Zero values mean "any".
type TheaterFilter struct {
	OwnerID      uint64
	City         string
	OnlyApproved bool // approved and active, as shown to the public
}

// TheaterRepo encapsulates all database queries related to theaters.
type TheaterRepo struct {
	db *sql.DB
}

func NewTheaterRepo(db *sql.DB) *TheaterRepo {
	return &TheaterRepo{db: db}
}

const theaterCols = "id, owner_id, name, address, city, contact_phone, is_approved, is_active, created_at, updated_at"

func scanTheater(s rowScanner) (*model.Theater, error) {
	var t model.Theater
	if err := s.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Address, &t.City, &t.ContactPhone,
		&t.IsApproved, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new theater.  On success ID and the DB defaults are
// populated on t.
func (r *TheaterRepo) Create(ctx context.Context, t *model.Theater) error {
	const q = "INSERT INTO theaters (owner_id, name, address, city, contact_phone, is_approved, is_active) VALUES (?, ?, ?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, t.OwnerID, t.Name, t.Address, t.City, t.ContactPhone, t.IsApproved, t.IsActive)
	if err != nil {
		return translate(err, "theater")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.WithStack(err)
	}
	fresh, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*t = *fresh
	return nil
}

// GetByID loads a theater.
func (r *TheaterRepo) GetByID(ctx context.Context, id uint64) (*model.Theater, error) {
	t, err := scanTheater(r.db.QueryRowContext(ctx, "SELECT "+theaterCols+" FROM theaters WHERE id = ?", id))
	return t, translate(err, "theater")
}

// List returns theaters ordered by name.
func (r *TheaterRepo) List(ctx context.Context, f TheaterFilter) ([]model.Theater, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.OwnerID != 0 {
		where = append(where, "owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.City != "" {
		where = append(where, "city = ?")
		args = append(args, f.City)
	}
	if f.OnlyApproved {
		where = append(where, "is_approved = 1 AND is_active = 1")
	}
	q := "SELECT " + theaterCols + " FROM theaters"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY name, id", args...)
	if err != nil {
		return nil, translate(err, "theater")
	}
	defer rows.Close()
	out := []model.Theater{}
	for rows.Next() {
		t, err := scanTheater(rows)
		if err != nil {
			return nil, translate(err, "theater")
		}
		out = append(out, *t)
	}
	return out, translate(rows.Err(), "theater")
}

// Update writes the owner editable fields.
func (r *TheaterRepo) Update(ctx context.Context, t *model.Theater) error {
	const q = `UPDATE theaters SET name = ?, address = ?, city = ?, contact_phone = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, t.Name, t.Address, t.City, t.ContactPhone, t.IsActive, t.ID); err != nil {
		return translate(err, "theater")
	}
	fresh, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *fresh
	return nil
}

// SetApproved flips the admin approval flag.
func (r *TheaterRepo) SetApproved(ctx context.Context, id uint64, approved bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE theaters SET is_approved = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", approved, id)
	if err != nil {
		return translate(err, "theater")
	}
	return expectOne(res, "theater")
}

// Delete removes a theater together with its screens and seats.  Theaters
// with bookings cannot be removed.
func (r *TheaterRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM theaters WHERE id = ?", id)
	if err != nil {
		return translate(err, "theater")
	}
	return expectOne(res, "theater")
}
