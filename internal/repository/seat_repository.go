package repository // repository defines data access for seats

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/model"
)

// SeatUpdate is one entry of a bulk update.  Nil fields are left alone.
type SeatUpdate struct {
	ID       uint64
	SeatType *string
	IsActive *bool
}

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

const seatCols = "id, screen_id, row_label, seat_number, seat_type, is_active, created_at, updated_at"

func scanSeat(s rowScanner) (*model.Seat, error) {
	var st model.Seat
	if err := s.Scan(&st.ID, &st.ScreenID, &st.RowLabel, &st.SeatNumber, &st.SeatType,
		&st.IsActive, &st.CreatedAt, &st.UpdatedAt); err != nil {
		return nil, err
	}
	return &st, nil
}

func errSeatCapacity(have, capacity int) error {
	return apperr.Invalidf("screen holds at most %d seats (%d requested)", capacity, have)
}

// CreateBulk inserts seats for a screen in a single statement.  The screen
// row is locked so concurrent calls cannot push the seat count past
// total_seats.
func (r *SeatRepo) CreateBulk(ctx context.Context, screenID uint64, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var total int
		if err := tx.QueryRowContext(ctx, "SELECT total_seats FROM screens WHERE id = ? FOR UPDATE", screenID).Scan(&total); err != nil {
			return translate(err, "screen")
		}
		var existing int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM seats WHERE screen_id = ?", screenID).Scan(&existing); err != nil {
			return err
		}
		if existing+len(seats) > total {
			return errSeatCapacity(existing+len(seats), total)
		}

		query := `INSERT INTO seats (screen_id, row_label, seat_number, seat_type, is_active) VALUES `
		args := make([]interface{}, 0, len(seats)*5)
		for i, seat := range seats {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?)"
			args = append(args, screenID, seat.RowLabel, seat.SeatNumber, seat.SeatType, seat.IsActive)
		}
		_, err := tx.ExecContext(ctx, query, args...)
		return translate(err, "seat")
	})
}

// ListByScreen retrieves all seats of a screen ordered by row then number.
func (r *SeatRepo) ListByScreen(ctx context.Context, screenID uint64) ([]model.Seat, error) {
	return listSeats(ctx, r.db, screenID)
}

func listSeats(ctx context.Context, q queryer, screenID uint64) ([]model.Seat, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+seatCols+" FROM seats WHERE screen_id = ? ORDER BY row_label, seat_number", screenID)
	if err != nil {
		return nil, translate(err, "seat")
	}
	defer rows.Close()
	out := []model.Seat{}
	for rows.Next() {
		st, err := scanSeat(rows)
		if err != nil {
			return nil, translate(err, "seat")
		}
		out = append(out, *st)
	}
	return out, translate(rows.Err(), "seat")
}

func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	st, err := scanSeat(r.db.QueryRowContext(ctx, "SELECT "+seatCols+" FROM seats WHERE id = ?", id))
	return st, translate(err, "seat")
}

// Update writes position, type and active flag of one seat.
func (r *SeatRepo) Update(ctx context.Context, st *model.Seat) error {
	const q = `UPDATE seats SET row_label = ?, seat_number = ?, seat_type = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, st.RowLabel, st.SeatNumber, st.SeatType, st.IsActive, st.ID); err != nil {
		return translate(err, "seat")
	}
	fresh, err := r.GetByID(ctx, st.ID)
	if err != nil {
		return err
	}
	*st = *fresh
	return nil
}

// BulkUpdate applies updates atomically.  Every seat must belong to
// screenID; otherwise nothing is written.
func (r *SeatRepo) BulkUpdate(ctx context.Context, screenID uint64, updates []SeatUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, u := range updates {
			var (
				sets []string
				args []interface{}
			)
			if u.SeatType != nil {
				sets = append(sets, "seat_type = ?")
				args = append(args, *u.SeatType)
			}
			if u.IsActive != nil {
				sets = append(sets, "is_active = ?")
				args = append(args, *u.IsActive)
			}
			if len(sets) == 0 {
				continue
			}
			args = append(args, u.ID, screenID)
			res, err := tx.ExecContext(ctx,
				"UPDATE seats SET "+strings.Join(sets, ", ")+", updated_at = CURRENT_TIMESTAMP WHERE id = ? AND screen_id = ?",
				args...)
			if err != nil {
				return translate(err, "seat")
			}
			if n, _ := res.RowsAffected(); n == 0 {
				var one int
				if err := tx.QueryRowContext(ctx, "SELECT 1 FROM seats WHERE id = ? AND screen_id = ?", u.ID, screenID).Scan(&one); err != nil {
					return apperr.NotFoundf("seat %d not found on screen %d", u.ID, screenID)
				}
			}
		}
		return nil
	})
}

// Delete removes a seat.  Seats already materialised for a show are
// referenced by show_seats and cannot be removed.
func (r *SeatRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM seats WHERE id = ?", id)
	if err != nil {
		return translate(err, "seat")
	}
	return expectOne(res, "seat")
}
