// Package handlers implements the HTTP API over the storage services.
package handlers

import (
	"time"

	"github.com/maxpn01/collectioner/internal/server/ipgeo"
	"github.com/maxpn01/collectioner/internal/storage"
	"github.com/maxpn01/collectioner/internal/storage/catalog"
	"github.com/maxpn01/collectioner/internal/storage/identity"
	"github.com/maxpn01/collectioner/internal/storage/snapshot"
)

// Services bundles every backend service the handlers need.
type Services struct {
	User        *identity.UserService
	Session     *identity.SessionService
	Collections *catalog.CollectionService
	Schema      *catalog.SchemaService
	Items       *catalog.ItemService
	Comments    *catalog.CommentService
	Tags        *catalog.TagService
	Search      *catalog.SearchService
	Snapshots   *snapshot.Manager
	Geo         *ipgeo.Checker
}

// Config holds the server settings handlers depend on.
type Config struct {
	JWTSecret  []byte
	SessionTTL time.Duration
	Quotas     storage.ServerQuotas
	Version    string
}

// Handler carries the services and config into the endpoint methods.
type Handler struct {
	svc *Services
	cfg *Config
}

// New creates the API handler.
func New(svc *Services, cfg *Config) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}
