// Search and tag endpoints.

package handlers

import (
	"context"

	"github.com/maxpn01/collectioner/internal/server/dto"
)

// Search runs one full-text query across the item, collection and comment
// indexes and returns the reconciled item list.
func (h *Handler) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	results, err := h.svc.Search.Query(ctx, req.Query)
	if err != nil {
		return nil, toAPIError(err)
	}
	resp := &dto.SearchResponse{Results: []dto.ItemSummaryResponse{}}
	for _, r := range results {
		resp.Results = append(resp.Results, toItemSummaryResponse(r))
	}
	return resp, nil
}

// Tags lists every distinct tag, or the top prefix matches when ?prefix= is
// given.
func (h *Handler) Tags(_ context.Context, req *dto.TagsRequest) (*dto.TagsResponse, error) {
	var tags []string
	if req.Prefix == "" {
		tags = h.svc.Tags.All()
	} else {
		tags = h.svc.Tags.StartingWith(req.Prefix)
	}
	if tags == nil {
		tags = []string{}
	}
	return &dto.TagsResponse{Tags: tags}, nil
}
