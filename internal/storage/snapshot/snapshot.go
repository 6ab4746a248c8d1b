// Package snapshot keeps the data directory under local git version
// control, committing a snapshot after every mutating request. Pure Go via
// go-git, no git binary dependency.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Commit is one history entry.
type Commit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
}

// Manager owns the git repository wrapping the data directory.
type Manager struct {
	dir          string
	defaultName  string
	defaultEmail string
	repo         *gogit.Repository
	mu           sync.Mutex
}

// NewManager opens the repository at dir, initializing it on first run.
func NewManager(dir, defaultName, defaultEmail string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		// Not a repo yet — initialize.
		repo, err = gogit.PlainInit(dir, false)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize git repo: %w", err)
		}
		cfg, err := repo.Config()
		if err != nil {
			return nil, fmt.Errorf("failed to read git config: %w", err)
		}
		cfg.User.Name = defaultName
		cfg.User.Email = defaultEmail
		if err := repo.SetConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to write git config: %w", err)
		}
	}
	return &Manager{dir: dir, defaultName: defaultName, defaultEmail: defaultEmail, repo: repo}, nil
}

// CommitAll stages every change in the data directory and commits it with
// the given message, attributed to author. A clean worktree is a no-op.
// go-git takes no context, so the commit runs to completion even when the
// originating request is canceled.
func (m *Manager) CommitAll(_ context.Context, authorName, authorEmail, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := w.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	status, err := w.Status()
	if err != nil {
		return fmt.Errorf("failed to get worktree status: %w", err)
	}
	if status.IsClean() {
		return nil
	}

	name, email := authorName, authorEmail
	if name == "" {
		name = m.defaultName
	}
	if email == "" {
		email = m.defaultEmail
	}
	now := time.Now()
	_, err = w.Commit(msg, &gogit.CommitOptions{
		Author:    &object.Signature{Name: name, Email: email, When: now},
		Committer: &object.Signature{Name: m.defaultName, Email: m.defaultEmail, When: now},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// History returns the most recent commits, newest first, limited to n.
func (m *Manager) History(n int) ([]*Commit, error) {
	if n <= 0 || n > 1000 {
		n = 1000
	}
	iter, err := m.repo.Log(&gogit.LogOptions{})
	if err != nil {
		return nil, nil // No commits yet is not an error.
	}
	defer iter.Close()

	var commits []*Commit
	for range n {
		c, err := iter.Next()
		if err != nil {
			break
		}
		subject, _, _ := strings.Cut(c.Message, "\n")
		commits = append(commits, &Commit{
			Hash:    c.Hash.String(),
			Message: subject,
			Author:  c.Author.Name,
			Date:    c.Author.When,
		})
	}
	return commits, nil
}

// Count returns the total number of commits.
func (m *Manager) Count() (int, error) {
	iter, err := m.repo.Log(&gogit.LogOptions{})
	if err != nil {
		return 0, nil // No commits yet is not an error.
	}
	defer iter.Close()
	n := 0
	for {
		if _, err := iter.Next(); err != nil {
			break
		}
		n++
	}
	return n, nil
}
