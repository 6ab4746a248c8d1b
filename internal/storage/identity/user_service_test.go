package identity

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/maruel/ksid"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	s, err := NewUserService(filepath.Join(t.TempDir(), "users.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestUserService(t *testing.T) {
	t.Run("FirstUserBecomesAdmin", func(t *testing.T) {
		s := newUserService(t)
		first, err := s.Create("first@example.com", "hunter2", "First")
		if err != nil {
			t.Fatal(err)
		}
		if !first.IsAdmin {
			t.Error("first user is not admin")
		}
		second, err := s.Create("second@example.com", "hunter2", "Second")
		if err != nil {
			t.Fatal(err)
		}
		if second.IsAdmin {
			t.Error("second user is admin")
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		s := newUserService(t)
		if _, err := s.Create("a@example.com", "pw", "A"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Create("a@example.com", "pw", "A again"); !errors.Is(err, ErrUserExists) {
			t.Errorf("Create() = %v, want user exists", err)
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		s := newUserService(t)
		created, err := s.Create("auth@example.com", "correct horse", "Auth")
		if err != nil {
			t.Fatal(err)
		}
		got, err := s.Authenticate("auth@example.com", "correct horse")
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != created.ID {
			t.Errorf("Authenticate() = %+v", got)
		}
		if _, err := s.Authenticate("auth@example.com", "wrong"); !errors.Is(err, ErrInvalidCreds) {
			t.Errorf("wrong password = %v, want invalid credentials", err)
		}
		if _, err := s.Authenticate("nobody@example.com", "pw"); !errors.Is(err, ErrInvalidCreds) {
			t.Errorf("unknown email = %v, want invalid credentials", err)
		}
	})

	t.Run("MissingCredentials", func(t *testing.T) {
		s := newUserService(t)
		if _, err := s.Create("", "pw", "X"); !errors.Is(err, ErrEmailPwdRequired) {
			t.Errorf("Create() = %v, want email/password required", err)
		}
		if _, err := s.Create("x@example.com", "", "X"); !errors.Is(err, ErrEmailPwdRequired) {
			t.Errorf("Create() = %v, want email/password required", err)
		}
	})

	t.Run("GetByEmail", func(t *testing.T) {
		s := newUserService(t)
		created, err := s.Create("find@example.com", "pw", "Find")
		if err != nil {
			t.Fatal(err)
		}
		got, err := s.GetByEmail("find@example.com")
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != created.ID {
			t.Errorf("GetByEmail() = %+v", got)
		}
		if _, err := s.GetByEmail("absent@example.com"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("GetByEmail(absent) = %v, want not found", err)
		}
	})
}

func TestSessionService(t *testing.T) {
	newService := func(t *testing.T) *SessionService {
		t.Helper()
		s, err := NewSessionService(filepath.Join(t.TempDir(), "sessions.jsonl"))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	t.Run("LifecycleAndValidity", func(t *testing.T) {
		s := newService(t)
		userID := ksid.NewID()
		session, err := s.CreateWithID(ksid.NewID(), userID, "hash", "cli", "127.0.0.1", "CH", time.Now().Add(time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		if ok, err := s.IsValid(session.ID); err != nil || !ok {
			t.Errorf("IsValid() = %v, %v, want true", ok, err)
		}
		if err := s.Revoke(session.ID); err != nil {
			t.Fatal(err)
		}
		if ok, _ := s.IsValid(session.ID); ok {
			t.Error("revoked session still valid")
		}
	})

	t.Run("ExpiredIsInvalid", func(t *testing.T) {
		s := newService(t)
		session, err := s.CreateWithID(ksid.NewID(), ksid.NewID(), "hash", "", "", "", time.Now().Add(-time.Minute))
		if err != nil {
			t.Fatal(err)
		}
		if ok, _ := s.IsValid(session.ID); ok {
			t.Error("expired session still valid")
		}
	})

	t.Run("RevokeAllForUser", func(t *testing.T) {
		s := newService(t)
		userID := ksid.NewID()
		for range 3 {
			if _, err := s.CreateWithID(ksid.NewID(), userID, "hash", "", "", "", time.Now().Add(time.Hour)); err != nil {
				t.Fatal(err)
			}
		}
		if _, err := s.CreateWithID(ksid.NewID(), ksid.NewID(), "hash", "", "", "", time.Now().Add(time.Hour)); err != nil {
			t.Fatal(err)
		}
		count, err := s.RevokeAllForUser(userID)
		if err != nil {
			t.Fatal(err)
		}
		if count != 3 {
			t.Errorf("RevokeAllForUser() = %d, want 3", count)
		}
	})

	t.Run("CleanupExpired", func(t *testing.T) {
		s := newService(t)
		if _, err := s.CreateWithID(ksid.NewID(), ksid.NewID(), "hash", "", "", "", time.Now().Add(-48*time.Hour)); err != nil {
			t.Fatal(err)
		}
		live, err := s.CreateWithID(ksid.NewID(), ksid.NewID(), "hash", "", "", "", time.Now().Add(time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		count, err := s.CleanupExpired(24 * time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("CleanupExpired() = %d, want 1", count)
		}
		if _, err := s.Get(live.ID); err != nil {
			t.Errorf("live session removed: %v", err)
		}
	})
}
