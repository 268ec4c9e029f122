package repository

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/shyam-539/GoTicket-server/internal/model"
)

// ScreenRepo manages persistence for screens.
type ScreenRepo struct {
	db *sql.DB
}

func NewScreenRepo(db *sql.DB) *ScreenRepo { return &ScreenRepo{db: db} }

const screenCols = "id, theater_id, name, screen_number, screen_type, rows_count, columns_count, total_seats, status, created_at, updated_at"

func scanScreen(s rowScanner) (*model.Screen, error) {
	var sc model.Screen
	if err := s.Scan(&sc.ID, &sc.TheaterID, &sc.Name, &sc.ScreenNumber, &sc.ScreenType,
		&sc.Rows, &sc.Columns, &sc.TotalSeats, &sc.Status, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Create inserts a screen.  A duplicate screen number within the theater
// is reported as a conflict.
func (r *ScreenRepo) Create(ctx context.Context, sc *model.Screen) error {
	const q = `INSERT INTO screens (theater_id, name, screen_number, screen_type, rows_count, columns_count, total_seats, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, sc.TheaterID, sc.Name, sc.ScreenNumber, sc.ScreenType,
		sc.Rows, sc.Columns, sc.TotalSeats, sc.Status)
	if err != nil {
		return translate(err, "screen number")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.WithStack(err)
	}
	fresh, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*sc = *fresh
	return nil
}

func (r *ScreenRepo) GetByID(ctx context.Context, id uint64) (*model.Screen, error) {
	sc, err := scanScreen(r.db.QueryRowContext(ctx, "SELECT "+screenCols+" FROM screens WHERE id = ?", id))
	return sc, translate(err, "screen")
}

// ListByTheater returns a theater's screens ordered by screen number.
func (r *ScreenRepo) ListByTheater(ctx context.Context, theaterID uint64) ([]model.Screen, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+screenCols+" FROM screens WHERE theater_id = ? ORDER BY screen_number", theaterID)
	if err != nil {
		return nil, translate(err, "screen")
	}
	defer rows.Close()
	out := []model.Screen{}
	for rows.Next() {
		sc, err := scanScreen(rows)
		if err != nil {
			return nil, translate(err, "screen")
		}
		out = append(out, *sc)
	}
	return out, translate(rows.Err(), "screen")
}

// Update writes every mutable column.  Shrinking total_seats below the
// number of seats already created is rejected.
func (r *ScreenRepo) Update(ctx context.Context, sc *model.Screen) error {
	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var existing int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM seats WHERE screen_id = ?", sc.ID).Scan(&existing); err != nil {
			return err
		}
		if existing > sc.TotalSeats {
			return errSeatCapacity(existing, sc.TotalSeats)
		}
		const q = `UPDATE screens SET name = ?, screen_number = ?, screen_type = ?, rows_count = ?, columns_count = ?,
                   total_seats = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
		_, err := tx.ExecContext(ctx, q, sc.Name, sc.ScreenNumber, sc.ScreenType, sc.Rows, sc.Columns,
			sc.TotalSeats, sc.Status, sc.ID)
		return translate(err, "screen number")
	})
	if err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, sc.ID)
	if err != nil {
		return err
	}
	*sc = *fresh
	return nil
}

// Delete removes a screen and, through the foreign keys, its seats.
func (r *ScreenRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM screens WHERE id = ?", id)
	if err != nil {
		return translate(err, "screen")
	}
	return expectOne(res, "screen")
}
