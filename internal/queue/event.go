// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer.
package queue

// BookingConfirmedQueue is the durable queue booking confirmations go to.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published when a payment for a booking is
// verified.  It carries enough of the booking for downstream consumers to
// audit or notify without querying the primary database.
type BookingConfirmedEvent struct {
    BookingID   uint64   `json:"booking_id"`
    Reference   string   `json:"reference"`
    UserID      uint64   `json:"user_id"`
    ShowID      uint64   `json:"show_id"`
    TheaterID   uint64   `json:"theater_id"`
    MovieID     uint64   `json:"movie_id"`
    SeatLabels  []string `json:"seats"`
    TotalAmount string   `json:"total_amount"` // decimal string, e.g. "450.00"
    Currency    string   `json:"currency"`
    PaymentID   string   `json:"payment_id"`
    ConfirmedAt string   `json:"confirmed_at"` // RFC 3339, UTC
}
