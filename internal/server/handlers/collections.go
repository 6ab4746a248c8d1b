// Collection endpoints.

package handlers

import (
	"context"
	"fmt"

	"github.com/maxpn01/collectioner/internal/server/dto"
	"github.com/maxpn01/collectioner/internal/storage/catalog"
	"github.com/maxpn01/collectioner/internal/storage/identity"
)

// CreateCollection creates a collection owned by the requester, optionally
// with an initial schema.
func (h *Handler) CreateCollection(ctx context.Context, user *identity.User, req *dto.CreateCollectionRequest) (*dto.CollectionResponse, error) {
	if max := h.cfg.Quotas.MaxCollectionsPerUser; max > 0 {
		count := 0
		for range h.svc.Collections.IterByOwner(user.ID) {
			count++
		}
		if count >= max {
			return nil, dto.BadRequest(fmt.Sprintf("collection quota exceeded (max %d)", max))
		}
	}
	if max := h.cfg.Quotas.MaxFieldsPerCollection; max > 0 && len(req.Fields) > max {
		return nil, dto.BadRequest(fmt.Sprintf("field quota exceeded (max %d)", max))
	}
	fields, err := toFieldCreates(req.Fields)
	if err != nil {
		return nil, err
	}
	collection, err := h.svc.Collections.Create(ctx, user, req.Name, req.Topic, req.Description, fields)
	if err != nil {
		return nil, toAPIError(err)
	}
	resp := toCollectionResponse(collection, h.svc.Schema.FieldsFor(collection.ID))
	return &resp, nil
}

// GetCollection returns one collection with its schema. Reads are public.
func (h *Handler) GetCollection(_ context.Context, req *dto.GetCollectionRequest) (*dto.CollectionResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	collection, err := h.svc.Collections.Get(id)
	if err != nil {
		return nil, toAPIError(err)
	}
	resp := toCollectionResponse(collection, h.svc.Schema.FieldsFor(id))
	return &resp, nil
}

// ListCollections lists every collection, or one owner's when ?owner= is
// given.
func (h *Handler) ListCollections(_ context.Context, req *dto.ListCollectionsRequest) (*dto.CollectionListResponse, error) {
	resp := &dto.CollectionListResponse{Collections: []dto.CollectionResponse{}}
	appendOne := func(c *catalog.Collection) {
		resp.Collections = append(resp.Collections, toCollectionResponse(c, h.svc.Schema.FieldsFor(c.ID)))
	}
	if req.Owner != "" {
		ownerID, err := parseID(req.Owner)
		if err != nil {
			return nil, err
		}
		for c := range h.svc.Collections.IterByOwner(ownerID) {
			appendOne(c)
		}
		return resp, nil
	}
	for c := range h.svc.Collections.Iter(0) {
		appendOne(c)
	}
	return resp, nil
}

// UpdateCollection changes metadata and optionally replaces the schema in
// the same request.
func (h *Handler) UpdateCollection(ctx context.Context, user *identity.User, req *dto.UpdateCollectionRequest) (*dto.CollectionResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	change, err := toSchemaChange(req.Schema)
	if err != nil {
		return nil, err
	}
	if change != nil {
		if max := h.cfg.Quotas.MaxFieldsPerCollection; max > 0 {
			if len(h.svc.Schema.FieldsFor(id))+len(change.Creates) > max {
				return nil, dto.BadRequest(fmt.Sprintf("field quota exceeded (max %d)", max))
			}
		}
	}
	collection, err := h.svc.Collections.Update(ctx, user, id, req.Name, req.Topic, req.Description, change)
	if err != nil {
		return nil, toAPIError(err)
	}
	resp := toCollectionResponse(collection, h.svc.Schema.FieldsFor(id))
	return &resp, nil
}

// DeleteCollection removes a collection and everything in it.
func (h *Handler) DeleteCollection(ctx context.Context, user *identity.User, req *dto.DeleteCollectionRequest) (*dto.EmptyResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Collections.Delete(ctx, user, id); err != nil {
		return nil, toAPIError(err)
	}
	return &dto.EmptyResponse{}, nil
}
