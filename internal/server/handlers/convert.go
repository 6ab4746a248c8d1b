// Conversion between dto and storage types, plus error mapping.

package handlers

import (
	"errors"
	"time"

	"github.com/maruel/ksid"

	"github.com/maxpn01/collectioner/internal/server/dto"
	"github.com/maxpn01/collectioner/internal/storage/catalog"
	"github.com/maxpn01/collectioner/internal/storage/identity"
)

// parseID parses a string ID from a request, mapping failures to 400.
func parseID(s string) (ksid.ID, error) {
	id, err := ksid.Parse(s)
	if err != nil {
		return 0, dto.BadRequest("invalid id: " + s)
	}
	return id, nil
}

// toAPIError maps storage sentinel errors onto the API error taxonomy.
// Anything unrecognized becomes a 500.
func toAPIError(err error) error {
	if err == nil {
		return nil
	}
	var api *dto.APIError
	if errors.As(err, &api) {
		return err
	}
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return dto.NotFound("resource").Wrap(err)
	case errors.Is(err, catalog.ErrNotAuthorized):
		return dto.Forbidden("not the owner").Wrap(err)
	case errors.Is(err, catalog.ErrSchemaMismatch):
		return dto.BadRequest(err.Error()).Wrap(err)
	case errors.Is(err, catalog.ErrConflict), errors.Is(err, identity.ErrUserExists):
		return dto.Conflict(err.Error()).Wrap(err)
	case errors.Is(err, identity.ErrInvalidCreds):
		return dto.Unauthorized().Wrap(err)
	case errors.Is(err, identity.ErrUserNotFound), errors.Is(err, identity.ErrSessionNotFound):
		return dto.NotFound("user").Wrap(err)
	default:
		return dto.InternalWithError("operation failed", err)
	}
}

func toUserResponse(u *identity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:      u.ID.String(),
		Email:   u.Email,
		Name:    u.Name,
		IsAdmin: u.IsAdmin,
		Created: u.Created,
	}
}

func toFieldResponse(f *catalog.FieldDefinition) dto.FieldResponse {
	return dto.FieldResponse{ID: f.ID.String(), Name: f.Name, Type: string(f.Type)}
}

func toCollectionResponse(c *catalog.Collection, fields []*catalog.FieldDefinition) dto.CollectionResponse {
	out := dto.CollectionResponse{
		ID:          c.ID.String(),
		OwnerID:     c.OwnerID.String(),
		Name:        c.Name,
		Topic:       c.Topic,
		Description: c.Description,
		Fields:      []dto.FieldResponse{},
		Created:     c.Created,
		Modified:    c.Modified,
	}
	for _, f := range fields {
		out.Fields = append(out.Fields, toFieldResponse(f))
	}
	return out
}

func toItemResponse(view *catalog.ItemView) dto.ItemResponse {
	return dto.ItemResponse{
		ID:           view.Item.ID.String(),
		CollectionID: view.Item.CollectionID.String(),
		Name:         view.Item.Name,
		Tags:         view.Item.Tags,
		Values:       fromValues(view.Values),
		Created:      view.Item.Created,
		Modified:     view.Item.Modified,
	}
}

func toItemSummaryResponse(s catalog.ItemSummary) dto.ItemSummaryResponse {
	return dto.ItemSummaryResponse{
		ID:           s.ID.String(),
		CollectionID: s.CollectionID.String(),
		Name:         s.Name,
		Created:      s.Created,
	}
}

func toCommentResponse(c *catalog.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:       c.ID.String(),
		ItemID:   c.ItemID.String(),
		AuthorID: c.AuthorID.String(),
		Text:     c.Text,
		Created:  c.Created,
	}
}

// toFieldType validates a field type string from a request.
func toFieldType(s string) (catalog.FieldType, error) {
	t := catalog.FieldType(s)
	if !t.Valid() {
		return "", dto.BadRequest("unsupported field type: " + s)
	}
	return t, nil
}

// toSchemaChange converts a schema change payload.
func toSchemaChange(p *dto.SchemaChangePayload) (*catalog.SchemaChange, error) {
	if p == nil {
		return nil, nil
	}
	change := &catalog.SchemaChange{}
	for _, u := range p.Updates {
		id, err := parseID(u.ID)
		if err != nil {
			return nil, err
		}
		t, err := toFieldType(u.Type)
		if err != nil {
			return nil, err
		}
		change.Updates = append(change.Updates, catalog.FieldUpdate{ID: id, Name: u.Name, Type: t})
	}
	for _, c := range p.Creates {
		t, err := toFieldType(c.Type)
		if err != nil {
			return nil, err
		}
		change.Creates = append(change.Creates, catalog.FieldCreate{Name: c.Name, Type: t})
	}
	return change, nil
}

// toFieldCreates converts initial-schema payloads.
func toFieldCreates(payloads []dto.FieldCreatePayload) ([]catalog.FieldCreate, error) {
	var out []catalog.FieldCreate
	for _, p := range payloads {
		t, err := toFieldType(p.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, catalog.FieldCreate{Name: p.Name, Type: t})
	}
	return out, nil
}

// toValues converts a wire value payload, parsing the field-ID keys.
func toValues(p dto.ValuesPayload) (*catalog.FieldValues, error) {
	values := &catalog.FieldValues{}
	if len(p.Number) > 0 {
		values.Number = map[ksid.ID]float64{}
		for k, v := range p.Number {
			id, err := parseID(k)
			if err != nil {
				return nil, err
			}
			values.Number[id] = v
		}
	}
	if len(p.Text) > 0 {
		values.Text = map[ksid.ID]string{}
		for k, v := range p.Text {
			id, err := parseID(k)
			if err != nil {
				return nil, err
			}
			values.Text[id] = v
		}
	}
	if len(p.Multiline) > 0 {
		values.Multiline = map[ksid.ID]string{}
		for k, v := range p.Multiline {
			id, err := parseID(k)
			if err != nil {
				return nil, err
			}
			values.Multiline[id] = v
		}
	}
	if len(p.Checkbox) > 0 {
		values.Checkbox = map[ksid.ID]bool{}
		for k, v := range p.Checkbox {
			id, err := parseID(k)
			if err != nil {
				return nil, err
			}
			values.Checkbox[id] = v
		}
	}
	if len(p.Date) > 0 {
		values.Date = map[ksid.ID]time.Time{}
		for k, v := range p.Date {
			id, err := parseID(k)
			if err != nil {
				return nil, err
			}
			values.Date[id] = v
		}
	}
	return values, nil
}

// fromValues converts a stored value payload to the wire shape.
func fromValues(v *catalog.FieldValues) dto.ValuesPayload {
	out := dto.ValuesPayload{}
	if len(v.Number) > 0 {
		out.Number = map[string]float64{}
		for k, val := range v.Number {
			out.Number[k.String()] = val
		}
	}
	if len(v.Text) > 0 {
		out.Text = map[string]string{}
		for k, val := range v.Text {
			out.Text[k.String()] = val
		}
	}
	if len(v.Multiline) > 0 {
		out.Multiline = map[string]string{}
		for k, val := range v.Multiline {
			out.Multiline[k.String()] = val
		}
	}
	if len(v.Checkbox) > 0 {
		out.Checkbox = map[string]bool{}
		for k, val := range v.Checkbox {
			out.Checkbox[k.String()] = val
		}
	}
	if len(v.Date) > 0 {
		out.Date = map[string]time.Time{}
		for k, val := range v.Date {
			out.Date[k.String()] = val
		}
	}
	return out
}
