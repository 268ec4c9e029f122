package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Payment and booking statuses.
const (
    PaymentPending   = "pending"
    PaymentCompleted = "completed"
    PaymentFailed    = "failed"
    PaymentRefunded  = "refunded"

    BookingConfirmed = "confirmed"
    BookingCancelled = "cancelled"
)

// Booking groups the seats one user reserved for a show.  Seat labels,
// types and prices are copied at booking time and never recomputed.  Once
// payment completes only the refund fields may change.
type Booking struct {
    ID            uint64          `json:"id"`
    Reference     string          `json:"reference"`
    UserID        uint64          `json:"userId"`
    ShowID        uint64          `json:"showId"`
    MovieID       uint64          `json:"movieId"`
    TheaterID     uint64          `json:"theaterId"`
    Seats         []BookingSeat   `json:"seats"`
    TotalAmount   decimal.Decimal `json:"totalAmount"`
    Currency      string          `json:"currency"`
    PaymentStatus string          `json:"paymentStatus"`
    BookingStatus string          `json:"bookingStatus"`
    OrderID       string          `json:"orderId,omitempty"`
    PaymentID     string          `json:"paymentId,omitempty"`
    ReceiptToken  string          `json:"receiptToken"`
    PaidAt        *time.Time      `json:"paidAt,omitempty"`
    RefundAmount  *decimal.Decimal `json:"refundAmount,omitempty"`
    RefundReason  string          `json:"refundReason,omitempty"`
    RefundedAt    *time.Time      `json:"refundedAt,omitempty"`
    CreatedAt     time.Time       `json:"createdAt"`
    UpdatedAt     time.Time       `json:"updatedAt"`
}

// BookingSeat is a row of `booking_seats`.
type BookingSeat struct {
    SeatID   uint64          `json:"seatId"`
    Label    string          `json:"label"`
    SeatType string          `json:"seatType"`
    Price    decimal.Decimal `json:"price"`
}

// Labels returns the seat labels in booking order.
func (b Booking) Labels() []string {
    out := make([]string, 0, len(b.Seats))
    for _, s := range b.Seats {
        out = append(out, s.Label)
    }
    return out
}
