// Item endpoints.

package handlers

import (
	"context"
	"fmt"

	"github.com/maxpn01/collectioner/internal/server/dto"
	"github.com/maxpn01/collectioner/internal/storage/identity"
)

// CreateItem adds an item to a collection. The value payload must match the
// collection schema exactly.
func (h *Handler) CreateItem(ctx context.Context, user *identity.User, req *dto.CreateItemRequest) (*dto.ItemResponse, error) {
	collectionID, err := parseID(req.CollectionID)
	if err != nil {
		return nil, err
	}
	if max := h.cfg.Quotas.MaxItemsPerCollection; max > 0 {
		count := 0
		for range h.svc.Items.IterByCollection(collectionID) {
			count++
		}
		if count >= max {
			return nil, dto.BadRequest(fmt.Sprintf("item quota exceeded (max %d)", max))
		}
	}
	values, err := toValues(req.Values)
	if err != nil {
		return nil, err
	}
	view, err := h.svc.Items.Create(ctx, user, collectionID, req.Name, req.Tags, values)
	if err != nil {
		return nil, toAPIError(err)
	}
	resp := toItemResponse(view)
	return &resp, nil
}

// GetItem returns one item with its full value payload. Reads are public.
func (h *Handler) GetItem(_ context.Context, req *dto.GetItemRequest) (*dto.ItemResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	view, err := h.svc.Items.Get(id)
	if err != nil {
		return nil, toAPIError(err)
	}
	resp := toItemResponse(view)
	return &resp, nil
}

// ListItems lists a collection's items, oldest first, without values.
func (h *Handler) ListItems(_ context.Context, req *dto.ListItemsRequest) (*dto.ItemListResponse, error) {
	collectionID, err := parseID(req.CollectionID)
	if err != nil {
		return nil, err
	}
	if _, err := h.svc.Collections.Get(collectionID); err != nil {
		return nil, toAPIError(err)
	}
	resp := &dto.ItemListResponse{Items: []dto.ItemSummaryResponse{}}
	for item := range h.svc.Items.IterByCollection(collectionID) {
		resp.Items = append(resp.Items, dto.ItemSummaryResponse{
			ID:           item.ID.String(),
			CollectionID: item.CollectionID.String(),
			Name:         item.Name,
			Created:      item.Created,
		})
	}
	return resp, nil
}

// UpdateItem replaces an item's name, tags and whole value payload.
func (h *Handler) UpdateItem(ctx context.Context, user *identity.User, req *dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	values, err := toValues(req.Values)
	if err != nil {
		return nil, err
	}
	view, err := h.svc.Items.Update(ctx, user, id, req.Name, req.Tags, values)
	if err != nil {
		return nil, toAPIError(err)
	}
	resp := toItemResponse(view)
	return &resp, nil
}

// DeleteItem removes an item, its values and its comments.
func (h *Handler) DeleteItem(ctx context.Context, user *identity.User, req *dto.DeleteItemRequest) (*dto.EmptyResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Items.Delete(ctx, user, id); err != nil {
		return nil, toAPIError(err)
	}
	return &dto.EmptyResponse{}, nil
}
