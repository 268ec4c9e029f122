package service

import (
	"context"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/model"
	"github.com/shyam-539/GoTicket-server/internal/repository"
)

// AdminService backs the /api/admin routes.  Callers are admins; the
// router enforces it.
type AdminService struct {
	users    UserStore
	theaters TheaterStore
	notes    NotificationStore
	audit    AuditReader
}

func NewAdminService(users UserStore, theaters TheaterStore, notes NotificationStore, audit AuditReader) *AdminService {
	return &AdminService{users: users, theaters: theaters, notes: notes, audit: audit}
}

func (s *AdminService) ListUsers(ctx context.Context, role string) ([]model.User, error) {
	if role != "" && !model.ValidRole(role) {
		return nil, apperr.Invalidf("invalid role %q", role)
	}
	return s.users.List(ctx, role)
}

func (s *AdminService) DeleteUser(ctx context.Context, actor Actor, id uint64) error {
	if id == actor.ID {
		return apperr.Conflictf("admins cannot delete themselves")
	}
	return s.users.Delete(ctx, id)
}

// VerifyUser marks an account verified, which unlocks login for theater
// owners.
func (s *AdminService) VerifyUser(ctx context.Context, id uint64) (*model.User, error) {
	if err := s.users.SetVerified(ctx, id, true); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *AdminService) ListTheaters(ctx context.Context, city string) ([]model.Theater, error) {
	return s.theaters.List(ctx, repository.TheaterFilter{City: city})
}

func (s *AdminService) ApproveTheater(ctx context.Context, id uint64, approved bool) (*model.Theater, error) {
	if err := s.theaters.SetApproved(ctx, id, approved); err != nil {
		return nil, err
	}
	return s.theaters.GetByID(ctx, id)
}

func (s *AdminService) DeleteTheater(ctx context.Context, id uint64) error {
	return s.theaters.Delete(ctx, id)
}

// ListNotifications returns the admin inbox, newest first.  Without a
// document store the inbox is empty.
func (s *AdminService) ListNotifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	if s.notes == nil {
		return []model.Notification{}, nil
	}
	return s.notes.List(ctx, unreadOnly)
}

// MarkNotificationRead flags a notification read.  Reading an
// owner_signup notification verifies the owner it refers to.
func (s *AdminService) MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error) {
	if s.notes == nil {
		return nil, apperr.NotFoundf("notification not found")
	}
	n, err := s.notes.MarkRead(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Type == model.NotifyOwnerSignup && n.UserID != 0 {
		if err := s.users.SetVerified(ctx, n.UserID, true); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// BookingAudit returns the recorded transitions of a booking, oldest first.
func (s *AdminService) BookingAudit(ctx context.Context, bookingID uint64) ([]model.AuditEntry, error) {
	if s.audit == nil {
		return []model.AuditEntry{}, nil
	}
	return s.audit.ListByEntity(ctx, bookingEntity(bookingID))
}
