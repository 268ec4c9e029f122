package model

import "time"

// Theater is a venue owned by a single theater owner for its whole
// lifetime.  It corresponds to a row in the `theaters` table and owns zero
// or more screens.  Only approved, active theaters are listed publicly.
type Theater struct {
    ID           uint64    `json:"id"`           // theaters.id
    OwnerID      uint64    `json:"ownerId"`      // theaters.owner_id
    Name         string    `json:"name"`         // theaters.name
    Address      string    `json:"address"`      // theaters.address
    City         string    `json:"city"`         // theaters.city
    ContactPhone string    `json:"contactPhone"` // theaters.contact_phone
    IsApproved   bool      `json:"isApproved"`   // theaters.is_approved
    IsActive     bool      `json:"isActive"`     // theaters.is_active
    CreatedAt    time.Time `json:"createdAt"`    // theaters.created_at
    UpdatedAt    time.Time `json:"updatedAt"`    // theaters.updated_at
}
