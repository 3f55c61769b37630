package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TodoWebService/models"

	"golang.org/x/crypto/bcrypt"
)

// UserStore persists accounts in the users table.
type UserStore struct {
	db    *DB
	table string
	// cost is the bcrypt work factor.
	cost int
}

// NewUserStore returns a UserStore using bcrypt.DefaultCost.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db, table: db.Table("users"), cost: bcrypt.DefaultCost}
}

// WithCost returns a copy of s hashing with the given bcrypt cost. Tests use bcrypt.MinCost.
func (s *UserStore) WithCost(cost int) *UserStore {
	c := *s
	c.cost = cost
	return &c
}

// FindByEmail returns the user with exactly this email, or ErrNotFound.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT id, email, password, created_at FROM %s WHERE email = ? LIMIT 1", s.table)
	return scanUser(s.db.QueryRow(ctx, query, email))
}

// FindByID returns the user with the given id, or ErrNotFound.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf("SELECT id, email, password, created_at FROM %s WHERE id = ? LIMIT 1", s.table)
	return scanUser(s.db.QueryRow(ctx, query, id))
}

// Create hashes the password and inserts the user, returning its id.
// A taken email yields ErrDuplicateKey.
func (s *UserStore) Create(ctx context.Context, email, password string) (int64, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return 0, ErrInvalidParams
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("store/user: hash password: %w", err)
	}
	query := fmt.Sprintf("INSERT INTO %s (email, password, created_at) VALUES (?, ?, ?)", s.table)
	res, err := s.db.Exec(ctx, query, email, string(hash), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("store/user: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store/user: last insert id: %w", err)
	}
	return id, nil
}

// CheckPassword reports whether password matches the stored hash of u.
func CheckPassword(u *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

func scanUser(row *Row) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("store/user: %w", err)
	}
	return u, nil
}
