// Package repository contains data access logic for Show domain operations.
// A Show represents a scheduled screening of a movie on one screen; creating
// it materialises one show_seats row per seat of the screen in the same
// transaction.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/model"
)

// ShowChange describes what an Update touches besides plain attributes.
type ShowChange struct {
	Reschedule bool          // start/end changed: overlap is re-checked
	Reprice    bool          // price table changed: availability rows are re-priced
	Gap        time.Duration // turnaround between two shows on one screen
}

// ErrShowOverlap reports the shows a candidate interval collides with.
func ErrShowOverlap(conflicts []model.Show) error {
	ids := make([]uint64, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.ID)
	}
	return apperr.WithDetails(apperr.Conflict,
		"Show timing conflicts with an existing show on this screen",
		map[string]interface{}{"conflictingShowIds": ids})
}

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db    *sql.DB
	seats *ShowSeatRepo
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db, seats: NewShowSeatRepo(db)}
}

const showCols = "id, theater_id, screen_id, movie_id, start_time, end_time, language, format, price_table, status, created_at, updated_at"

func scanShow(s rowScanner) (*model.Show, error) {
	var (
		sh     model.Show
		prices []byte
	)
	if err := s.Scan(&sh.ID, &sh.TheaterID, &sh.ScreenID, &sh.MovieID, &sh.StartTime, &sh.EndTime,
		&sh.Language, &sh.Format, &prices, &sh.Status, &sh.CreatedAt, &sh.UpdatedAt); err != nil {
		return nil, err
	}
	sh.Prices = model.PriceTable{}
	if len(prices) > 0 {
		if err := json.Unmarshal(prices, &sh.Prices); err != nil {
			return nil, errors.Wrap(err, "decode price table")
		}
	}
	return &sh, nil
}

func scanShows(rows *sql.Rows) ([]model.Show, error) {
	defer rows.Close()
	out := []model.Show{}
	for rows.Next() {
		sh, err := scanShow(rows)
		if err != nil {
			return nil, translate(err, "show")
		}
		out = append(out, *sh)
	}
	return out, translate(rows.Err(), "show")
}

// findOverlapping returns the non-cancelled shows on screenID that collide
// with [start, end) once padded by gap.  It mirrors model.Show.Overlaps:
// existing.start < end+gap AND existing.end+gap > start.
func findOverlapping(ctx context.Context, q queryer, screenID, excludeID uint64, start, end time.Time, gap time.Duration) ([]model.Show, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+showCols+`
               FROM shows
               WHERE screen_id = ? AND id <> ? AND status <> 'cancelled'
                 AND start_time < ? AND end_time > ?
               ORDER BY start_time`,
		screenID, excludeID, end.Add(gap).UTC(), start.Add(-gap).UTC())
	if err != nil {
		return nil, translate(err, "show")
	}
	return scanShows(rows)
}

// lockScreen takes a row lock on the screen, serialising every scheduler
// working on it until the transaction ends.  It returns the owning theater.
func lockScreen(ctx context.Context, tx *sql.Tx, screenID uint64) (uint64, error) {
	var theaterID uint64
	err := tx.QueryRowContext(ctx, "SELECT theater_id FROM screens WHERE id = ? FOR UPDATE", screenID).Scan(&theaterID)
	return theaterID, translate(err, "screen")
}

func countBookings(ctx context.Context, q queryer, showID uint64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings WHERE show_id = ?", showID).Scan(&n)
	return n, translate(err, "booking")
}

// CreateWithSeats inserts s and one availability row per seat of its
// screen inside a single transaction.  Inactive seats are stored as
// maintenance; prices are resolved from s.Prices by seat type.  On
// success ID and DB defaults are populated on s.
func (r *ShowRepo) CreateWithSeats(ctx context.Context, s *model.Show, gap time.Duration) error {
	prices, err := json.Marshal(s.Prices)
	if err != nil {
		return errors.WithStack(err)
	}
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		theaterID, err := lockScreen(ctx, tx, s.ScreenID)
		if err != nil {
			return err
		}
		if theaterID != s.TheaterID {
			return apperr.NotFoundf("screen not found in this theater")
		}
		conflicts, err := findOverlapping(ctx, tx, s.ScreenID, 0, s.StartTime, s.EndTime, gap)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return ErrShowOverlap(conflicts)
		}

		seats, err := listSeats(ctx, tx, s.ScreenID)
		if err != nil {
			return err
		}
		if len(seats) == 0 {
			return apperr.Invalidf("screen has no seats")
		}

		const q = `INSERT INTO shows (theater_id, screen_id, movie_id, start_time, end_time, language, format, price_table, status)
                   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, q, s.TheaterID, s.ScreenID, s.MovieID, s.StartTime.UTC(), s.EndTime.UTC(),
			s.Language, s.Format, string(prices), model.ShowScheduled)
		if err != nil {
			return translate(err, "show")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return errors.WithStack(err)
		}

		rows := make([]model.SeatAvailability, 0, len(seats))
		for _, seat := range seats {
			price, ok := s.Prices.Resolve(seat.SeatType)
			if !ok {
				return apperr.Invalidf("no price for seat type %q", seat.SeatType)
			}
			status := model.SeatAvailable
			if !seat.IsActive {
				status = model.SeatMaintenance
			}
			rows = append(rows, model.SeatAvailability{ShowID: uint64(id), SeatID: seat.ID, Status: status, Price: price})
		}
		if err := r.seats.createBulkTx(ctx, tx, rows); err != nil {
			return err
		}

		fresh, err := scanShow(tx.QueryRowContext(ctx, "SELECT "+showCols+" FROM shows WHERE id = ?", id))
		if err != nil {
			return translate(err, "show")
		}
		*s = *fresh
		return nil
	})
}

// GetByID retrieves a show by its ID.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	sh, err := scanShow(r.db.QueryRowContext(ctx, "SELECT "+showCols+" FROM shows WHERE id = ?", id))
	return sh, translate(err, "show")
}

// ListByTheater returns a theater's shows ordered by start time.  With
// upcomingOnly, cancelled, completed and already finished shows are left
// out.
func (r *ShowRepo) ListByTheater(ctx context.Context, theaterID uint64, upcomingOnly bool) ([]model.Show, error) {
	q := "SELECT " + showCols + " FROM shows WHERE theater_id = ?"
	if upcomingOnly {
		q += " AND status IN ('scheduled','ongoing') AND end_time > UTC_TIMESTAMP()"
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY start_time", theaterID)
	if err != nil {
		return nil, translate(err, "show")
	}
	return scanShows(rows)
}

// Update writes the mutable attributes of s.  Rescheduling and repricing
// are only possible while no booking references the show.
func (r *ShowRepo) Update(ctx context.Context, s *model.Show, ch ShowChange) error {
	prices, err := json.Marshal(s.Prices)
	if err != nil {
		return errors.WithStack(err)
	}
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := lockScreen(ctx, tx, s.ScreenID); err != nil {
			return err
		}
		if ch.Reschedule || ch.Reprice {
			n, err := countBookings(ctx, tx, s.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperr.Conflictf("show already has bookings")
			}
		}
		if ch.Reschedule {
			conflicts, err := findOverlapping(ctx, tx, s.ScreenID, s.ID, s.StartTime, s.EndTime, ch.Gap)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return ErrShowOverlap(conflicts)
			}
		}

		const q = `UPDATE shows SET start_time = ?, end_time = ?, language = ?, format = ?, price_table = ?, status = ?,
                   updated_at = CURRENT_TIMESTAMP WHERE id = ?`
		res, err := tx.ExecContext(ctx, q, s.StartTime.UTC(), s.EndTime.UTC(), s.Language, s.Format, string(prices), s.Status, s.ID)
		if err != nil {
			return translate(err, "show")
		}
		if err := expectOne(res, "show"); err != nil {
			return err
		}
		if ch.Reprice {
			if err := r.seats.repriceTx(ctx, tx, s.ID, s.Prices); err != nil {
				return err
			}
		}
		fresh, err := scanShow(tx.QueryRowContext(ctx, "SELECT "+showCols+" FROM shows WHERE id = ?", s.ID))
		if err != nil {
			return translate(err, "show")
		}
		*s = *fresh
		return nil
	})
}

// Delete removes a show and its availability rows.  A show referenced by
// any booking cannot be deleted.
func (r *ShowRepo) Delete(ctx context.Context, id uint64) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM shows WHERE id = ? FOR UPDATE", id).Scan(&one); err != nil {
			return translate(err, "show")
		}
		n, err := countBookings(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflictf("show has bookings and cannot be deleted")
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM show_seats WHERE show_id = ?", id); err != nil {
			return translate(err, "show")
		}
		_, err = tx.ExecContext(ctx, "DELETE FROM shows WHERE id = ?", id)
		return translate(err, "show")
	})
}

// ListSeats returns the availability map of a show.
func (r *ShowRepo) ListSeats(ctx context.Context, showID uint64) ([]model.SeatAvailability, error) {
	return r.seats.ListByShow(ctx, showID)
}

// SetSeatStatus changes a non-booked seat of a show.
func (r *ShowRepo) SetSeatStatus(ctx context.Context, showID, seatID uint64, status string) error {
	return r.seats.SetStatus(ctx, showID, seatID, status)
}
