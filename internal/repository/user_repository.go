package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/shyam-539/GoTicket-server/internal/model"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,name,email,phone,password_hash,role,profile_pic,is_active,is_verified,created_at,updated_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role,
		&u.ProfilePic, &u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts u (with an already hashed password) and fills its ID.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, phone, password_hash, role, profile_pic, is_active, is_verified) VALUES (?,?,?,?,?,?,?,?)",
		u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.ProfilePic, u.IsActive, u.IsVerified)
	if err != nil {
		return translate(err, "email")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.WithStack(err)
	}
	u.ID = uint64(id)
	fresh, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = *fresh
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
	return u, translate(err, "user")
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
	return u, translate(err, "user")
}

// EmailExists reports whether an account uses email.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE email=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email))).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, translate(err, "user")
	}
	return true, nil
}

// UpdateProfile writes the self-service profile fields.  The role column
// is deliberately absent.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, phone, profilePic string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, phone=?, profile_pic=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		name, phone, profilePic, id)
	if err != nil {
		return translate(err, "user")
	}
	return expectOne(res, "user")
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", hash, id)
	if err != nil {
		return translate(err, "user")
	}
	return expectOne(res, "user")
}

func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", active, id)
	if err != nil {
		return translate(err, "user")
	}
	return expectOne(res, "user")
}

func (r *UserRepo) SetVerified(ctx context.Context, id uint64, verified bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_verified=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", verified, id)
	if err != nil {
		return translate(err, "user")
	}
	return expectOne(res, "user")
}

// List returns users ordered by id, optionally filtered by role.
func (r *UserRepo) List(ctx context.Context, role string) ([]model.User, error) {
	q := "SELECT " + userCols + " FROM users"
	var args []interface{}
	if role != "" {
		q += " WHERE role=?"
		args = append(args, role)
	}
	rows, err := r.DB.QueryContext(ctx, q+" ORDER BY id", args...)
	if err != nil {
		return nil, translate(err, "user")
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, translate(err, "user")
		}
		out = append(out, *u)
	}
	return out, translate(rows.Err(), "user")
}

func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return translate(err, "user")
	}
	return expectOne(res, "user")
}
