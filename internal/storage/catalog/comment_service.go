package catalog

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/maruel/ksid"

	"github.com/maxpn01/collectioner/internal/storage/identity"
)

// CommentService manages item comments. Any authenticated user may comment
// on any item; deletion is restricted to the author or an admin.
type CommentService struct {
	db     *Database
	mirror *Mirror
}

// NewCommentService creates a comment service.
func NewCommentService(db *Database, mirror *Mirror) *CommentService {
	return &CommentService{db: db, mirror: mirror}
}

// Create adds a comment to an item.
func (s *CommentService) Create(ctx context.Context, requester *identity.User, itemID ksid.ID, text string) (*Comment, error) {
	if requester == nil {
		return nil, ErrNotAuthorized
	}
	if s.db.items.Get(itemID) == nil {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	comment := &Comment{
		ID:       ksid.NewID(),
		ItemID:   itemID,
		AuthorID: requester.ID,
		Text:     text,
		Created:  time.Now(),
	}
	if err := s.db.comments.Append(comment); err != nil {
		return nil, err
	}
	s.mirror.CommentUpserted(ctx, comment)
	return comment.Clone(), nil
}

// Get retrieves a comment by ID.
func (s *CommentService) Get(id ksid.ID) (*Comment, error) {
	comment := s.db.comments.Get(id)
	if comment == nil {
		return nil, fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	return comment, nil
}

// IterByItem iterates over an item's comments, oldest first.
func (s *CommentService) IterByItem(itemID ksid.ID) iter.Seq[*Comment] {
	return s.db.commentsByIt.Iter(itemID)
}

// Delete removes a comment. Only the author or an admin may delete.
func (s *CommentService) Delete(ctx context.Context, requester *identity.User, id ksid.ID) error {
	existing := s.db.comments.Get(id)
	if existing == nil {
		return fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	if err := authorize(requester, existing.AuthorID); err != nil {
		return err
	}
	if _, err := s.db.comments.Delete(id); err != nil {
		return err
	}
	s.mirror.CommentDeleted(ctx, id)
	return nil
}
