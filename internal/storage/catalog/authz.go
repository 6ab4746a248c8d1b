package catalog

import (
	"github.com/maruel/ksid"

	"github.com/maxpn01/collectioner/internal/storage/identity"
)

// authorize grants a mutation when the requester owns the resource or is an
// admin. Everyone else gets [ErrNotAuthorized]; there are no partial grants.
func authorize(requester *identity.User, ownerID ksid.ID) error {
	if requester == nil {
		return ErrNotAuthorized
	}
	if requester.IsAdmin || requester.ID == ownerID {
		return nil
	}
	return ErrNotAuthorized
}
