package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,image,password_hash,role,recent_searched_cities,created_at,updated_at"

// Create registers a local account with a bcrypt password hash and returns
// the stored user.  New users always start with RoleUser.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (*model.User, error) {
	email = normalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &model.User{
		ID:                   uuid.NewString(),
		Username:             strings.TrimSpace(username),
		Email:                email,
		PasswordHash:         hash,
		Role:                 model.RoleUser,
		RecentSearchedCities: []string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password_hash, role, recent_searched_cities, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)",
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, "[]", u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email))
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// PushRecentCity appends city to the user's recent searches, keeping the
// newest model.MaxRecentSearchedCities entries.  The read-modify-write runs
// under a row lock so concurrent searches by the same user do not drop
// entries.
func (r *UserRepo) PushRecentCity(ctx context.Context, userID, city string) ([]string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var raw []byte
	err = tx.QueryRowContext(ctx,
		"SELECT recent_searched_cities FROM users WHERE id=? FOR UPDATE", userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	cities, err := decodeStrings(raw)
	if err != nil {
		return nil, err
	}
	cities = model.PushRecentCity(cities, city)
	enc, err := encodeStrings(cities)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET recent_searched_cities=?, updated_at=? WHERE id=?",
		enc, time.Now().UTC(), userID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return cities, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u      model.User
		cities []byte
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Image, &u.PasswordHash, &u.Role, &cities, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.RecentSearchedCities, err = decodeStrings(cities); err != nil {
		return nil, err
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// decodeStrings reads a JSON array column.  NULL decodes to an empty slice.
func decodeStrings(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode json column: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
