package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/model"
)

// BookingFilter narrows List.  OwnerID selects bookings made on the
// theaters of that owner.
type BookingFilter struct {
	UserID  uint64
	OwnerID uint64
	ShowID  uint64
}

// ErrSeatsUnavailable reports the labels that could not be booked.
func ErrSeatsUnavailable(labels []string) error {
	return apperr.WithDetails(apperr.Conflict,
		"Seats already booked: "+strings.Join(labels, ", "),
		map[string]interface{}{"seats": labels})
}

// BookingRepo provides persistence for bookings and their seats.  Seats
// reserved under a booking are stored in booking_seats; the seat flip on
// show_seats happens in the same transaction as the insert.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `b.id, b.reference, b.user_id, b.show_id, b.movie_id, b.theater_id, b.total_amount, b.currency,
	b.payment_status, b.booking_status, b.order_id, b.payment_id, b.receipt_token, b.paid_at, b.refund_amount,
	b.refund_reason, b.refunded_at, b.created_at, b.updated_at`

func scanBooking(s rowScanner) (*model.Booking, error) {
	var (
		b                  model.Booking
		orderID, paymentID sql.NullString
		paidAt, refundedAt sql.NullTime
		refundAmount       decimal.NullDecimal
	)
	if err := s.Scan(&b.ID, &b.Reference, &b.UserID, &b.ShowID, &b.MovieID, &b.TheaterID, &b.TotalAmount, &b.Currency,
		&b.PaymentStatus, &b.BookingStatus, &orderID, &paymentID, &b.ReceiptToken, &paidAt, &refundAmount,
		&b.RefundReason, &refundedAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.OrderID = orderID.String
	b.PaymentID = paymentID.String
	if paidAt.Valid {
		t := paidAt.Time
		b.PaidAt = &t
	}
	if refundedAt.Valid {
		t := refundedAt.Time
		b.RefundedAt = &t
	}
	if refundAmount.Valid {
		d := refundAmount.Decimal
		b.RefundAmount = &d
	}
	b.Seats = []model.BookingSeat{}
	return &b, nil
}

// Create books the seats of b atomically.  Inside one transaction it
// inserts the booking, flips each seat with a conditional update that only
// matches while the seat is still available, and records booking_seats.
// If any seat fails to flip the whole booking is rolled back.  On success
// b carries its ID and DB defaults.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	if len(b.Seats) == 0 {
		return apperr.Invalidf("at least one seat is required")
	}
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `INSERT INTO bookings (reference, user_id, show_id, movie_id, theater_id, total_amount, currency,
                   payment_status, booking_status, receipt_token) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, q, b.Reference, b.UserID, b.ShowID, b.MovieID, b.TheaterID,
			b.TotalAmount.StringFixed(2), b.Currency, model.PaymentPending, model.BookingConfirmed, b.ReceiptToken)
		if err != nil {
			return translate(err, "booking")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return errors.WithStack(err)
		}

		var lost []string
		for _, s := range b.Seats {
			res, err := tx.ExecContext(ctx,
				"UPDATE show_seats SET status = 'booked', booking_id = ? WHERE show_id = ? AND seat_id = ? AND status = 'available'",
				id, b.ShowID, s.SeatID)
			if err != nil {
				return translate(err, "show seat")
			}
			n, err := res.RowsAffected()
			if err != nil {
				return errors.WithStack(err)
			}
			if n != 1 {
				lost = append(lost, s.Label)
			}
		}
		if len(lost) > 0 {
			return ErrSeatsUnavailable(lost)
		}

		query := `INSERT INTO booking_seats (booking_id, seat_id, seat_label, seat_type, price) VALUES `
		args := make([]interface{}, 0, len(b.Seats)*5)
		for i, s := range b.Seats {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?)"
			args = append(args, id, s.SeatID, s.Label, s.SeatType, s.Price.StringFixed(2))
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return translate(err, "booking seat")
		}

		fresh, err := getBooking(ctx, tx, uint64(id))
		if err != nil {
			return err
		}
		*b = *fresh
		return nil
	})
}

func getBooking(ctx context.Context, q queryer, id uint64) (*model.Booking, error) {
	b, err := scanBooking(q.QueryRowContext(ctx, "SELECT "+bookingCols+" FROM bookings b WHERE b.id = ?", id))
	if err != nil {
		return nil, translate(err, "booking")
	}
	seats, err := loadBookingSeats(ctx, q, []uint64{b.ID})
	if err != nil {
		return nil, err
	}
	b.Seats = append(b.Seats, seats[b.ID]...)
	return b, nil
}

func loadBookingSeats(ctx context.Context, q queryer, ids []uint64) (map[uint64][]model.BookingSeat, error) {
	out := make(map[uint64][]model.BookingSeat, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx, `SELECT booking_id, seat_id, seat_label, seat_type, price
               FROM booking_seats WHERE booking_id IN (`+placeholders(len(ids))+`)
               ORDER BY booking_id, seat_label`, args...)
	if err != nil {
		return nil, translate(err, "booking seat")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			bookingID uint64
			s         model.BookingSeat
		)
		if err := rows.Scan(&bookingID, &s.SeatID, &s.Label, &s.SeatType, &s.Price); err != nil {
			return nil, translate(err, "booking seat")
		}
		out[bookingID] = append(out[bookingID], s)
	}
	return out, translate(rows.Err(), "booking seat")
}

// GetByID loads a booking with its seats.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return getBooking(ctx, r.db, id)
}

// List returns bookings newest first.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	var (
		where []string
		args  []interface{}
	)
	q := "SELECT " + bookingCols + " FROM bookings b"
	if f.OwnerID != 0 {
		q += " JOIN theaters t ON t.id = b.theater_id"
		where = append(where, "t.owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.UserID != 0 {
		where = append(where, "b.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.ShowID != 0 {
		where = append(where, "b.show_id = ?")
		args = append(args, f.ShowID)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY b.created_at DESC, b.id DESC", args...)
	if err != nil {
		return nil, translate(err, "booking")
	}
	defer rows.Close()
	out := []model.Booking{}
	var ids []uint64
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, translate(err, "booking")
		}
		out = append(out, *b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "booking")
	}
	seats, err := loadBookingSeats(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Seats = append(out[i].Seats, seats[out[i].ID]...)
	}
	return out, nil
}

// releaseSeatsTx returns every seat held by a booking to available.
func releaseSeatsTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE show_seats SET status = 'available', booking_id = NULL WHERE booking_id = ? AND status = 'booked'", bookingID)
	return translate(err, "show seat")
}

// Cancel cancels an unpaid booking and releases its seats.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE bookings SET booking_status = 'cancelled', updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND payment_status = 'pending' AND booking_status = 'confirmed'`, id)
		if err != nil {
			return translate(err, "booking")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if _, err := getBooking(ctx, tx, id); err != nil {
				return err
			}
			return apperr.Conflictf("only unpaid bookings can be cancelled")
		}
		return releaseSeatsTx(ctx, tx, id)
	})
}

// SetOrder attaches a gateway order to a pending booking.  The booking's
// currency is fixed at creation and never rewritten here.
func (r *BookingRepo) SetOrder(ctx context.Context, id uint64, orderID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE bookings SET order_id = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND payment_status = 'pending' AND booking_status = 'confirmed'`, orderID, id)
	if err != nil {
		return translate(err, "payment order")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Conflictf("booking is not awaiting payment")
	}
	return nil
}

// MarkPaid moves a pending booking to completed.  The update only matches
// a pending booking carrying orderID, so of two concurrent verifications
// exactly one reports transitioned=true.
func (r *BookingRepo) MarkPaid(ctx context.Context, id uint64, orderID, paymentID string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE bookings SET payment_status = 'completed', payment_id = ?, paid_at = ?,
               updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND order_id = ? AND payment_status = 'pending' AND booking_status = 'confirmed'`,
		paymentID, at.UTC(), id, orderID)
	if err != nil {
		return false, translate(err, "booking")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.WithStack(err)
	}
	return n == 1, nil
}

// Refund records a refund on a completed booking, cancels it and releases
// its seats.
func (r *BookingRepo) Refund(ctx context.Context, id uint64, amount decimal.Decimal, reason string, at time.Time) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE bookings SET payment_status = 'refunded', booking_status = 'cancelled',
               refund_amount = ?, refund_reason = ?, refunded_at = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND payment_status = 'completed'`, amount.StringFixed(2), reason, at.UTC(), id)
		if err != nil {
			return translate(err, "booking")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if _, err := getBooking(ctx, tx, id); err != nil {
				return err
			}
			return apperr.Conflictf("only completed payments can be refunded")
		}
		return releaseSeatsTx(ctx, tx, id)
	})
}
