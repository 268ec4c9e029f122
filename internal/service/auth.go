package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/config"
	"github.com/shyam-539/GoTicket-server/internal/mailer"
	"github.com/shyam-539/GoTicket-server/internal/model"
	"github.com/shyam-539/GoTicket-server/internal/observability"
	"github.com/shyam-539/GoTicket-server/internal/utils"
)

const (
	msgBadCredentials = "Invalid email or password"
	generatedPassLen  = 12
)

type SignupInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Role     string `json:"role" validate:"omitempty,oneof=user theater_owner admin"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

// ProfileInput lists the self-service profile fields.  There is no role
// field: a role is fixed at signup.
type ProfileInput struct {
	Name       *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,max=20"`
	ProfilePic *string `json:"profilePic" validate:"omitempty,url,max=500"`
}

// Session is the result of a login or refresh.
type Session struct {
	Access  utils.AccessToken
	Refresh utils.RefreshToken
	User    *model.User
}

// AuthService implements signup, login and the refresh-token lifecycle.
type AuthService struct {
	users  UserStore
	tokens TokenStore
	notes  NotificationStore
	mail   mailer.Mailer
	cfg    config.Config
	log    observability.Logger
}

func NewAuthService(users UserStore, tokens TokenStore, notes NotificationStore, mail mailer.Mailer,
	cfg config.Config, log observability.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, notes: notes, mail: mail, cfg: cfg, log: log}
}

// Signup creates an account.  Customers are verified immediately; theater
// owners wait for an admin.  Admin accounts need the configured signup key.
func (s *AuthService) Signup(ctx context.Context, in SignupInput, adminKey string) (*model.User, error) {
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return nil, apperr.Invalidf("invalid role %q", role)
	}
	if role == model.RoleAdmin {
		if s.cfg.AdminSignupKey == "" ||
			subtle.ConstantTimeCompare([]byte(adminKey), []byte(s.cfg.AdminSignupKey)) != 1 {
			return nil, apperr.Forbiddenf("Admin signup is not allowed")
		}
	}
	if len(in.Password) < 8 {
		return nil, apperr.Invalidf("password must be at least 8 characters")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflictf("email already registered")
	}
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		IsVerified:   role != model.RoleTheaterOwner,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	if role == model.RoleTheaterOwner && s.notes != nil {
		n := &model.Notification{
			Type:    model.NotifyOwnerSignup,
			Message: fmt.Sprintf("Theater owner %s (%s) is awaiting verification", u.Name, u.Email),
			UserID:  u.ID,
		}
		if err := s.notes.Create(ctx, n); err != nil {
			s.log.WithError(err).WithField("user_id", u.ID).Warn("owner signup notification dropped")
		}
	}
	return u, nil
}

// Login checks credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, in.Email)
	if apperr.Is(err, apperr.NotFound) {
		return nil, apperr.Unauthorizedf(msgBadCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return nil, apperr.Unauthorizedf(msgBadCredentials)
	}
	if err := checkLoginAllowed(u); err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

func checkLoginAllowed(u *model.User) error {
	if !u.IsActive {
		return apperr.Forbiddenf("Account is deactivated")
	}
	if !u.IsVerified {
		return apperr.Forbiddenf("Account is awaiting admin verification")
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, u *model.User) (*Session, error) {
	at, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	rt, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(rt.Raw), rt.Exp); err != nil {
		return nil, err
	}
	return &Session{Access: at, Refresh: rt, User: u}, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// session is issued.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, apperr.Unauthorizedf("Refresh token missing")
	}
	hash := utils.HashRefreshRaw(raw)
	userID, err := s.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if apperr.Is(err, apperr.NotFound) {
		return nil, apperr.Unauthorizedf("Invalid or expired refresh token")
	}
	if err != nil {
		return nil, err
	}
	if err := checkLoginAllowed(u); err != nil {
		return nil, err
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

// Logout revokes the presented refresh token and, when the caller is
// authenticated, every other refresh token of that user.
func (s *AuthService) Logout(ctx context.Context, raw string, userID uint64) error {
	if raw != "" {
		if err := s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw)); err != nil {
			return err
		}
	}
	if userID != 0 {
		return s.tokens.RevokeAllForUser(ctx, userID)
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, actor Actor) (*model.User, error) {
	return s.users.GetByID(ctx, actor.ID)
}

// UpdateProfile changes name, phone and picture.  The role never changes.
func (s *AuthService) UpdateProfile(ctx context.Context, actor Actor, in ProfileInput) (*model.User, error) {
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	name, phone, pic := u.Name, u.Phone, u.ProfilePic
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		phone = strings.TrimSpace(*in.Phone)
	}
	if in.ProfilePic != nil {
		pic = strings.TrimSpace(*in.ProfilePic)
	}
	if err := s.users.UpdateProfile(ctx, u.ID, name, phone, pic); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, u.ID)
}

// ChangePassword replaces the password and ends every session.
func (s *AuthService) ChangePassword(ctx context.Context, actor Actor, in PasswordInput) error {
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, in.CurrentPassword) {
		return apperr.Unauthorizedf("Current password is incorrect")
	}
	hash, err := utils.HashPassword(in.NewPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	return s.tokens.RevokeAllForUser(ctx, u.ID)
}

// ForgotPassword mails a freshly generated password.  Unknown addresses
// are silently ignored so the response never reveals whether an account
// exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if apperr.Is(err, apperr.NotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	plain, err := utils.RandomPassword(generatedPassLen)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(plain, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllForUser(ctx, u.ID); err != nil {
		return err
	}
	body := fmt.Sprintf("Hi %s,\n\nyour new password is: %s\nPlease change it after logging in.\n", u.Name, plain)
	if s.mail != nil {
		if err := s.mail.Send(ctx, u.Email, "Your new GoTicket password", body); err != nil {
			s.log.WithError(err).WithField("user_id", u.ID).Error("password reset mail failed")
		}
	}
	return nil
}

// Deactivate disables the caller's account and ends every session.
func (s *AuthService) Deactivate(ctx context.Context, actor Actor) error {
	if err := s.users.SetActive(ctx, actor.ID, false); err != nil {
		return err
	}
	return s.tokens.RevokeAllForUser(ctx, actor.ID)
}

// CheckUser reports whether an account uses email.
func (s *AuthService) CheckUser(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, apperr.Invalidf("email is required")
	}
	return s.users.EmailExists(ctx, email)
}
