package model

import "time"

// Screen types and statuses accepted in the `screens` table.
var (
    ScreenTypes    = []string{"standard", "imax", "3d", "4dx", "premium"}
    ScreenStatuses = []string{"active", "maintenance", "inactive"}
)

// Screen is an auditorium inside a theater.  (theater_id, screen_number)
// is unique and the number of seats created for a screen may never exceed
// TotalSeats.
type Screen struct {
    ID           uint64    `json:"id"`           // screens.id
    TheaterID    uint64    `json:"theaterId"`    // screens.theater_id
    Name         string    `json:"name"`         // screens.name
    ScreenNumber int       `json:"screenNumber"` // screens.screen_number
    ScreenType   string    `json:"screenType"`   // screens.screen_type
    Rows         int       `json:"rows"`         // screens.rows_count
    Columns      int       `json:"columns"`      // screens.columns_count
    TotalSeats   int       `json:"totalSeats"`   // screens.total_seats
    Status       string    `json:"status"`       // screens.status
    CreatedAt    time.Time `json:"createdAt"`    // screens.created_at
    UpdatedAt    time.Time `json:"updatedAt"`    // screens.updated_at
}
