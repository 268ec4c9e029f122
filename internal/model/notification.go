package model

import "time"

// Notification types.
const (
    NotifyOwnerSignup = "owner_signup"
    NotifyBooking     = "booking"
    NotifyPayment     = "payment"
    NotifySystem      = "system"
)

// Notification is an admin inbox entry kept in MongoDB.  An owner_signup
// notification refers to the theater owner awaiting verification.
type Notification struct {
    ID        string    `json:"id" bson:"_id"`
    Type      string    `json:"type" bson:"type"`
    Message   string    `json:"message" bson:"message"`
    UserID    uint64    `json:"userId" bson:"user_id"`
    IsRead    bool      `json:"isRead" bson:"is_read"`
    CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// AuditEntry records a state transition for later inspection.
type AuditEntry struct {
    ID        string                 `json:"id" bson:"_id"`
    Action    string                 `json:"action" bson:"action"`
    ActorID   uint64                 `json:"actorId" bson:"actor_id"`
    EntityID  string                 `json:"entityId" bson:"entity_id"`
    Data      map[string]interface{} `json:"data" bson:"data"`
    Timestamp time.Time              `json:"timestamp" bson:"timestamp"`
}
