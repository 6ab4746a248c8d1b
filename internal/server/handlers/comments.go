// Comment endpoints.

package handlers

import (
	"context"

	"github.com/maxpn01/collectioner/internal/server/dto"
	"github.com/maxpn01/collectioner/internal/storage/identity"
)

// CreateComment adds a comment to an item. Any authenticated user may
// comment.
func (h *Handler) CreateComment(ctx context.Context, user *identity.User, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	itemID, err := parseID(req.ItemID)
	if err != nil {
		return nil, err
	}
	comment, err := h.svc.Comments.Create(ctx, user, itemID, req.Text)
	if err != nil {
		return nil, toAPIError(err)
	}
	resp := toCommentResponse(comment)
	return &resp, nil
}

// ListComments lists an item's comments, oldest first. Reads are public.
func (h *Handler) ListComments(_ context.Context, req *dto.ListCommentsRequest) (*dto.CommentListResponse, error) {
	itemID, err := parseID(req.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := h.svc.Items.Get(itemID); err != nil {
		return nil, toAPIError(err)
	}
	resp := &dto.CommentListResponse{Comments: []dto.CommentResponse{}}
	for c := range h.svc.Comments.IterByItem(itemID) {
		resp.Comments = append(resp.Comments, toCommentResponse(c))
	}
	return resp, nil
}

// DeleteComment removes a comment. Only the author or an admin may delete.
func (h *Handler) DeleteComment(ctx context.Context, user *identity.User, req *dto.DeleteCommentRequest) (*dto.EmptyResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Comments.Delete(ctx, user, id); err != nil {
		return nil, toAPIError(err)
	}
	return &dto.EmptyResponse{}, nil
}
