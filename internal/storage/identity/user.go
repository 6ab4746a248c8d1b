// Package identity provides user accounts, authentication and sessions.
//
// Tables are JSONL-backed. Passwords are stored as bcrypt hashes in a
// private storage row; public entities never carry the hash.
package identity

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/maruel/ksid"
	"golang.org/x/crypto/bcrypt"

	"github.com/maxpn01/collectioner/internal/jsonldb"
)

// User represents a system user (persistent fields only).
type User struct {
	ID       ksid.ID   `json:"id" jsonschema:"description=Unique user identifier"`
	Email    string    `json:"email" jsonschema:"description=User email address"`
	Name     string    `json:"name" jsonschema:"description=User display name"`
	IsAdmin  bool      `json:"is_admin,omitempty" jsonschema:"description=Whether the user has administrative rights"`
	Created  time.Time `json:"created" jsonschema:"description=Account creation timestamp"`
	Modified time.Time `json:"modified" jsonschema:"description=Last modification timestamp"`
}

// GetID returns the User's ID.
func (u *User) GetID() ksid.ID {
	return u.ID
}

// UserService handles user management and authentication.
type UserService struct {
	table   *jsonldb.Table[*userStorage]
	byEmail *jsonldb.UniqueIndex[string, *userStorage]
}

// NewUserService creates a new user service.
func NewUserService(tablePath string) (*UserService, error) {
	table, err := jsonldb.NewTable[*userStorage](tablePath)
	if err != nil {
		return nil, err
	}
	byEmail := jsonldb.NewUniqueIndex(table, func(u *userStorage) string { return u.Email })
	return &UserService{table: table, byEmail: byEmail}, nil
}

// Create creates a new user. The first user ever created becomes admin.
func (s *UserService) Create(email, password, name string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrEmailPwdRequired
	}
	if s.byEmail.Get(email) != nil {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	now := time.Now()
	stored := &userStorage{
		User: User{
			ID:       ksid.NewID(),
			Email:    email,
			Name:     name,
			IsAdmin:  s.table.Len() == 0,
			Created:  now,
			Modified: now,
		},
		PasswordHash: string(hash),
	}
	if err := s.table.Append(stored); err != nil {
		return nil, err
	}
	user := stored.User
	return &user, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(id ksid.ID) (*User, error) {
	if id.IsZero() {
		return nil, errUserIDRequired
	}
	stored := s.table.Get(id)
	if stored == nil {
		return nil, ErrUserNotFound
	}
	user := stored.User
	return &user, nil
}

// GetByEmail retrieves a user by email. O(1) via index.
func (s *UserService) GetByEmail(email string) (*User, error) {
	stored := s.byEmail.Get(email)
	if stored == nil {
		return nil, ErrUserNotFound
	}
	user := stored.User
	return &user, nil
}

// Authenticate verifies user credentials. O(1) lookup via index.
func (s *UserService) Authenticate(email, password string) (*User, error) {
	stored := s.byEmail.Get(email)
	if stored == nil {
		return nil, ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCreds
	}
	user := stored.User
	return &user, nil
}

// Modify atomically modifies a user.
func (s *UserService) Modify(id ksid.ID, fn func(user *User) error) (*User, error) {
	if id.IsZero() {
		return nil, errUserIDRequired
	}
	stored, err := s.table.Modify(id, func(row *userStorage) error {
		if err := fn(&row.User); err != nil {
			return err
		}
		row.Modified = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	user := stored.User
	return &user, nil
}

// Iter iterates over users with ID greater than startID. Pass 0 to iterate
// from the beginning.
func (s *UserService) Iter(startID ksid.ID) iter.Seq[*User] {
	return func(yield func(*User) bool) {
		for stored := range s.table.Iter(startID) {
			user := stored.User
			if !yield(&user) {
				return
			}
		}
	}
}

var (
	errUserIDRequired = errors.New("id is required")
	errEmailEmpty     = errors.New("email is required")
	// ErrEmailPwdRequired is returned when email or password is missing.
	ErrEmailPwdRequired = errors.New("email and password are required")
	// ErrUserExists is returned when the email is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCreds is returned when authentication fails.
	ErrInvalidCreds = errors.New("invalid credentials")
)

type userStorage struct {
	User
	PasswordHash string `json:"password_hash" jsonschema:"description=Bcrypt-hashed password"`
}

func (u *userStorage) Clone() *userStorage {
	c := *u
	return &c
}

// GetID returns the userStorage's ID.
func (u *userStorage) GetID() ksid.ID {
	return u.ID
}

// Validate checks that the userStorage is valid.
func (u *userStorage) Validate() error {
	if u.ID.IsZero() {
		return errUserIDRequired
	}
	if u.Email == "" {
		return errEmailEmpty
	}
	return nil
}
