// Package service holds the business rules of the booking backend.  Each
// service depends on small store interfaces implemented by the repository
// package, so the rules can be exercised against in-memory stores.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/model"
	"github.com/shyam-539/GoTicket-server/internal/queue"
	"github.com/shyam-539/GoTicket-server/internal/repository"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uint64
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id uint64, name, phone, profilePic string) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	SetActive(ctx context.Context, id uint64, active bool) error
	SetVerified(ctx context.Context, id uint64, verified bool) error
	List(ctx context.Context, role string) ([]model.User, error)
	Delete(ctx context.Context, id uint64) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

type TheaterStore interface {
	Create(ctx context.Context, t *model.Theater) error
	GetByID(ctx context.Context, id uint64) (*model.Theater, error)
	List(ctx context.Context, f repository.TheaterFilter) ([]model.Theater, error)
	Update(ctx context.Context, t *model.Theater) error
	SetApproved(ctx context.Context, id uint64, approved bool) error
	Delete(ctx context.Context, id uint64) error
}

type ScreenStore interface {
	Create(ctx context.Context, sc *model.Screen) error
	GetByID(ctx context.Context, id uint64) (*model.Screen, error)
	ListByTheater(ctx context.Context, theaterID uint64) ([]model.Screen, error)
	Update(ctx context.Context, sc *model.Screen) error
	Delete(ctx context.Context, id uint64) error
}

type SeatStore interface {
	CreateBulk(ctx context.Context, screenID uint64, seats []model.Seat) error
	ListByScreen(ctx context.Context, screenID uint64) ([]model.Seat, error)
	GetByID(ctx context.Context, id uint64) (*model.Seat, error)
	Update(ctx context.Context, st *model.Seat) error
	BulkUpdate(ctx context.Context, screenID uint64, updates []repository.SeatUpdate) error
	Delete(ctx context.Context, id uint64) error
}

type MovieStore interface {
	Create(ctx context.Context, m *model.Movie) error
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	List(ctx context.Context, f repository.MovieFilter) ([]model.Movie, error)
	Update(ctx context.Context, m *model.Movie) error
	SetApproved(ctx context.Context, id uint64, approved bool) error
	Delete(ctx context.Context, id uint64) error
}

// ShowStore persists shows together with their seat availability.
// CreateWithSeats and Update must re-check overlaps under a lock on the
// screen.
type ShowStore interface {
	CreateWithSeats(ctx context.Context, s *model.Show, gap time.Duration) error
	GetByID(ctx context.Context, id uint64) (*model.Show, error)
	ListByTheater(ctx context.Context, theaterID uint64, upcomingOnly bool) ([]model.Show, error)
	Update(ctx context.Context, s *model.Show, ch repository.ShowChange) error
	Delete(ctx context.Context, id uint64) error
	ListSeats(ctx context.Context, showID uint64) ([]model.SeatAvailability, error)
	SetSeatStatus(ctx context.Context, showID, seatID uint64, status string) error
	SearchUpcoming(ctx context.Context, q repository.ShowSearchQuery) ([]repository.PublicShowRow, int64, error)
}

// BookingStore persists bookings.  Create must flip every seat from
// available to booked atomically or fail with a conflict.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, error)
	Cancel(ctx context.Context, id uint64) error
	SetOrder(ctx context.Context, id uint64, orderID string) error
	MarkPaid(ctx context.Context, id uint64, orderID, paymentID string, at time.Time) (bool, error)
	Refund(ctx context.Context, id uint64, amount decimal.Decimal, reason string, at time.Time) error
}

type AuditStore interface {
	Record(ctx context.Context, e model.AuditEntry) error
}

type AuditReader interface {
	ListByEntity(ctx context.Context, entityID string) ([]model.AuditEntry, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
}

type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// ownedTheater loads a theater the actor may manage.
func ownedTheater(ctx context.Context, theaters TheaterStore, actor Actor, id uint64) (*model.Theater, error) {
	t, err := theaters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && t.OwnerID != actor.ID {
		return nil, apperr.Forbiddenf("You do not own this theater")
	}
	return t, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// detached returns a context for fire-and-forget side effects that must
// outlive the request.
func detached(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
