// Package server implements the HTTP server and routing logic.
package server

import (
	"net/http"

	"github.com/maxpn01/collectioner/internal/server/handlers"
	"github.com/maxpn01/collectioner/internal/server/ratelimit"
)

// NewRouter creates and configures the HTTP router. Every endpoint lives
// under /api.
//
// Reads of collections, items, comments, search and tags are public.
// Mutations require authentication; snapshot history is admin only.
func NewRouter(svc *handlers.Services, cfg *handlers.Config, limiters *ratelimit.Limiters) http.Handler {
	h := handlers.New(svc, cfg)
	mux := &http.ServeMux{}

	// Health and API metadata
	mux.Handle("GET /api/health", Wrap(h.Health, svc, cfg, limiters.Read))
	mux.Handle("GET /api/schema", Wrap(h.Schema, svc, cfg, limiters.Read))

	// Auth endpoints
	mux.Handle("POST /api/auth/register", Wrap(h.Register, svc, cfg, limiters.Auth))
	mux.Handle("POST /api/auth/login", Wrap(h.Login, svc, cfg, limiters.Auth))
	mux.Handle("GET /api/auth/me", WrapAuth(h.Me, svc, cfg, limiters))
	mux.Handle("POST /api/auth/logout", WrapAuth(h.Logout, svc, cfg, limiters))

	// Collection endpoints
	mux.Handle("GET /api/collections", Wrap(h.ListCollections, svc, cfg, limiters.Read))
	mux.Handle("POST /api/collections", WrapAuth(h.CreateCollection, svc, cfg, limiters))
	mux.Handle("GET /api/collections/{id}", Wrap(h.GetCollection, svc, cfg, limiters.Read))
	mux.Handle("PUT /api/collections/{id}", WrapAuth(h.UpdateCollection, svc, cfg, limiters))
	mux.Handle("DELETE /api/collections/{id}", WrapAuth(h.DeleteCollection, svc, cfg, limiters))

	// Item endpoints
	mux.Handle("GET /api/collections/{collectionID}/items", Wrap(h.ListItems, svc, cfg, limiters.Read))
	mux.Handle("POST /api/collections/{collectionID}/items", WrapAuth(h.CreateItem, svc, cfg, limiters))
	mux.Handle("GET /api/items/{id}", Wrap(h.GetItem, svc, cfg, limiters.Read))
	mux.Handle("PUT /api/items/{id}", WrapAuth(h.UpdateItem, svc, cfg, limiters))
	mux.Handle("DELETE /api/items/{id}", WrapAuth(h.DeleteItem, svc, cfg, limiters))

	// Comment endpoints
	mux.Handle("GET /api/items/{itemID}/comments", Wrap(h.ListComments, svc, cfg, limiters.Read))
	mux.Handle("POST /api/items/{itemID}/comments", WrapAuth(h.CreateComment, svc, cfg, limiters))
	mux.Handle("DELETE /api/comments/{id}", WrapAuth(h.DeleteComment, svc, cfg, limiters))

	// Search and tags
	mux.Handle("GET /api/search", Wrap(h.Search, svc, cfg, limiters.Read))
	mux.Handle("GET /api/tags", Wrap(h.Tags, svc, cfg, limiters.Read))

	// Snapshot history
	mux.Handle("GET /api/history", WrapAdmin(h.History, svc, cfg, limiters))

	return mux
}
