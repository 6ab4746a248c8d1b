// Health, history and API schema endpoints.

package handlers

import (
	"context"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/maxpn01/collectioner/internal/server/dto"
	"github.com/maxpn01/collectioner/internal/storage/identity"
)

// Health reports liveness, build version and the snapshot count.
func (h *Handler) Health(_ context.Context, _ *dto.EmptyRequest) (*dto.HealthResponse, error) {
	commits, err := h.svc.Snapshots.Count()
	if err != nil {
		return nil, toAPIError(err)
	}
	return &dto.HealthResponse{Status: "ok", Version: h.cfg.Version, Commits: commits}, nil
}

// History lists the most recent data snapshots, newest first. Admin only.
func (h *Handler) History(_ context.Context, _ *identity.User, req *dto.HistoryRequest) (*dto.HistoryResponse, error) {
	commits, err := h.svc.Snapshots.History(req.Limit)
	if err != nil {
		return nil, toAPIError(err)
	}
	resp := &dto.HistoryResponse{Commits: []dto.CommitResponse{}}
	for _, c := range commits {
		resp.Commits = append(resp.Commits, dto.CommitResponse{
			Hash:    c.Hash,
			Message: c.Message,
			Author:  c.Author,
			Date:    c.Date,
		})
	}
	return resp, nil
}

// schemaTypes lists every wire type exposed through the schema endpoint,
// keyed by the name clients see.
var schemaTypes = map[string]any{
	"RegisterRequest":         dto.RegisterRequest{},
	"LoginRequest":            dto.LoginRequest{},
	"AuthResponse":            dto.AuthResponse{},
	"UserResponse":            dto.UserResponse{},
	"CreateCollectionRequest": dto.CreateCollectionRequest{},
	"UpdateCollectionRequest": dto.UpdateCollectionRequest{},
	"CollectionResponse":      dto.CollectionResponse{},
	"CollectionListResponse":  dto.CollectionListResponse{},
	"CreateItemRequest":       dto.CreateItemRequest{},
	"UpdateItemRequest":       dto.UpdateItemRequest{},
	"ItemResponse":            dto.ItemResponse{},
	"ItemListResponse":        dto.ItemListResponse{},
	"CreateCommentRequest":    dto.CreateCommentRequest{},
	"CommentResponse":         dto.CommentResponse{},
	"CommentListResponse":     dto.CommentListResponse{},
	"SearchResponse":          dto.SearchResponse{},
	"TagsResponse":            dto.TagsResponse{},
	"HistoryResponse":         dto.HistoryResponse{},
	"HealthResponse":          dto.HealthResponse{},
	"ErrorResponse":           dto.ErrorResponse{},
}

// SchemaResponse maps wire type names to their JSON Schema.
type SchemaResponse struct {
	Schemas map[string]*jsonschema.Schema `json:"schemas"`
}

// Schema returns the JSON Schema of every API wire type, reflected from the
// dto structs so it never drifts from the implementation.
func (h *Handler) Schema(_ context.Context, _ *dto.EmptyRequest) (*SchemaResponse, error) {
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	out := make(map[string]*jsonschema.Schema, len(schemaTypes))
	for name, v := range schemaTypes {
		out[name] = r.ReflectFromType(reflect.TypeOf(v))
	}
	return &SchemaResponse{Schemas: out}, nil
}
