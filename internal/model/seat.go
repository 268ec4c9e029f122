package model

import (
    "strconv"
    "time"
)

// Seat types.  SeatStandard doubles as the fallback key of a show's price
// table.
const (
    SeatStandard   = "standard"
    SeatPremium    = "premium"
    SeatRecliner   = "recliner"
    SeatWheelchair = "wheelchair"
)

// Seat represents a physical seat within a screen.  (screen_id, row_label,
// seat_number) is unique.
type Seat struct {
    ID         uint64    `json:"id"`         // seats.id
    ScreenID   uint64    `json:"screenId"`   // seats.screen_id
    RowLabel   string    `json:"rowLabel"`   // seats.row_label
    SeatNumber int       `json:"seatNumber"` // seats.seat_number
    SeatType   string    `json:"seatType"`   // seats.seat_type
    IsActive   bool      `json:"isActive"`   // seats.is_active
    CreatedAt  time.Time `json:"createdAt"`  // seats.created_at
    UpdatedAt  time.Time `json:"updatedAt"`  // seats.updated_at
}

// Label returns the customer facing seat name, e.g. "A1".
func (s Seat) Label() string { return SeatLabel(s.RowLabel, s.SeatNumber) }

// SeatLabel joins a row label and a seat number.
func SeatLabel(row string, number int) string { return row + strconv.Itoa(number) }
