package repository // repository for show seat persistence

import (
	"context"
	"database/sql"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/model"
)

// ShowSeatRepo encapsulates database operations for show_seats, the
// per-show availability of every seat.
type ShowSeatRepo struct {
	db *sql.DB
}

// NewShowSeatRepo constructs a ShowSeatRepo given a DB handle.
func NewShowSeatRepo(db *sql.DB) *ShowSeatRepo {
	return &ShowSeatRepo{db: db}
}

// createBulkTx inserts availability rows in one statement.  Each row
// requires four values; updated_at defaults in the DB.
func (r *ShowSeatRepo) createBulkTx(ctx context.Context, tx *sql.Tx, seats []model.SeatAvailability) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO show_seats (show_id, seat_id, status, price) VALUES `
	args := make([]interface{}, 0, len(seats)*4)
	for i, ss := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, ss.ShowID, ss.SeatID, ss.Status, ss.Price.StringFixed(2))
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return translate(err, "show seat")
}

// repriceTx recomputes every row's price from the show's price table.
func (r *ShowSeatRepo) repriceTx(ctx context.Context, tx *sql.Tx, showID uint64, prices model.PriceTable) error {
	seats, err := listShowSeats(ctx, tx, showID)
	if err != nil {
		return err
	}
	for _, s := range seats {
		p, ok := prices.Resolve(s.SeatType)
		if !ok {
			return apperr.Invalidf("no price for seat type %q", s.SeatType)
		}
		if _, err := tx.ExecContext(ctx, "UPDATE show_seats SET price = ? WHERE show_id = ? AND seat_id = ?",
			p.StringFixed(2), showID, s.SeatID); err != nil {
			return translate(err, "show seat")
		}
	}
	return nil
}

// ListByShow joins availability with the physical seats, ordered by row
// and number.
func (r *ShowSeatRepo) ListByShow(ctx context.Context, showID uint64) ([]model.SeatAvailability, error) {
	return listShowSeats(ctx, r.db, showID)
}

func listShowSeats(ctx context.Context, q queryer, showID uint64) ([]model.SeatAvailability, error) {
	rows, err := q.QueryContext(ctx, `SELECT ss.show_id, ss.seat_id, se.row_label, se.seat_number, se.seat_type, ss.status, ss.price, ss.booking_id
               FROM show_seats ss
               JOIN seats se ON se.id = ss.seat_id
               WHERE ss.show_id = ?
               ORDER BY se.row_label, se.seat_number`, showID)
	if err != nil {
		return nil, translate(err, "show seat")
	}
	defer rows.Close()
	out := []model.SeatAvailability{}
	for rows.Next() {
		var (
			a         model.SeatAvailability
			bookingID sql.NullInt64
		)
		if err := rows.Scan(&a.ShowID, &a.SeatID, &a.RowLabel, &a.SeatNumber, &a.SeatType, &a.Status, &a.Price, &bookingID); err != nil {
			return nil, translate(err, "show seat")
		}
		if bookingID.Valid {
			id := uint64(bookingID.Int64)
			a.BookingID = &id
		}
		out = append(out, a)
	}
	return out, translate(rows.Err(), "show seat")
}

// SetStatus moves a seat between available, reserved and maintenance.
// Booked seats only change through bookings.
func (r *ShowSeatRepo) SetStatus(ctx context.Context, showID, seatID uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE show_seats SET status = ? WHERE show_id = ? AND seat_id = ? AND status <> 'booked'",
		status, showID, seatID)
	if err != nil {
		return translate(err, "show seat")
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var current string
	err = r.db.QueryRowContext(ctx, "SELECT status FROM show_seats WHERE show_id = ? AND seat_id = ?", showID, seatID).Scan(&current)
	if err != nil {
		return translate(err, "show seat")
	}
	return apperr.Conflictf("seat is booked and cannot be changed")
}
