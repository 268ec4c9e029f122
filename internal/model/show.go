package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Show statuses.
const (
    ShowScheduled = "scheduled"
    ShowOngoing   = "ongoing"
    ShowCompleted = "completed"
    ShowCancelled = "cancelled"
)

// Seat availability statuses.
const (
    SeatAvailable   = "available"
    SeatBooked      = "booked"
    SeatReserved    = "reserved"
    SeatMaintenance = "maintenance"
)

// PriceTable maps a seat type to its price for one show.  The standard
// entry is mandatory and is used for seat types without their own price.
type PriceTable map[string]decimal.Decimal

// Resolve returns the price for seatType.
func (p PriceTable) Resolve(seatType string) (decimal.Decimal, bool) {
    if v, ok := p[seatType]; ok {
        return v, true
    }
    v, ok := p[SeatStandard]
    return v, ok
}

// Show binds a movie to a screen of a theater for the half-open interval
// [StartTime, EndTime).  Times are UTC.
type Show struct {
    ID        uint64     `json:"id"`        // shows.id
    TheaterID uint64     `json:"theaterId"` // shows.theater_id
    ScreenID  uint64     `json:"screenId"`  // shows.screen_id
    MovieID   uint64     `json:"movieId"`   // shows.movie_id
    StartTime time.Time  `json:"startTime"` // shows.start_time
    EndTime   time.Time  `json:"endTime"`   // shows.end_time
    Language  string     `json:"language"`  // shows.language
    Format    string     `json:"format"`    // shows.format
    Prices    PriceTable `json:"prices"`    // shows.price_table (JSON)
    Status    string     `json:"status"`    // shows.status
    CreatedAt time.Time  `json:"createdAt"` // shows.created_at
    UpdatedAt time.Time  `json:"updatedAt"` // shows.updated_at
}

// Overlaps reports whether s collides with [start, end) on the same screen
// once both shows are padded by gap.  Cancelled shows never collide.
func (s Show) Overlaps(start, end time.Time, gap time.Duration) bool {
    if s.Status == ShowCancelled {
        return false
    }
    return s.StartTime.Before(end.Add(gap)) && s.EndTime.Add(gap).After(start)
}

// CanTransition reports whether a show may move from its current status
// to next.
func (s Show) CanTransition(next string) bool {
    switch s.Status {
    case ShowScheduled:
        return next == ShowOngoing || next == ShowCancelled || next == ShowScheduled
    case ShowOngoing:
        return next == ShowCompleted || next == ShowCancelled || next == ShowOngoing
    }
    return next == s.Status
}

// SeatAvailability is the per-show state of one seat, a row of
// `show_seats`.  Price is copied from the show's price table when the show
// is created.
type SeatAvailability struct {
    ShowID     uint64          `json:"showId"`
    SeatID     uint64          `json:"seatId"`
    RowLabel   string          `json:"rowLabel"`
    SeatNumber int             `json:"seatNumber"`
    SeatType   string          `json:"seatType"`
    Status     string          `json:"status"`
    Price      decimal.Decimal `json:"price"`
    BookingID  *uint64         `json:"bookingId,omitempty"`
}

// Label returns the seat's customer facing name.
func (a SeatAvailability) Label() string { return SeatLabel(a.RowLabel, a.SeatNumber) }
