// API request types. Fields bind from the JSON body, `path:` tags, and
// `query:` tags. IDs travel as strings; handlers parse them.

package dto

import "time"

// EmptyRequest is used by endpoints that take no input.
type EmptyRequest struct{}

// Validate implements Validatable.
func (r *EmptyRequest) Validate() error { return nil }

// RegisterRequest creates a user account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate implements Validatable.
func (r *RegisterRequest) Validate() error {
	if r.Email == "" {
		return MissingField("email")
	}
	if r.Password == "" {
		return MissingField("password")
	}
	if len(r.Password) < 8 {
		return BadRequest("password must be at least 8 characters")
	}
	return nil
}

// LoginRequest authenticates a user.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validatable.
func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return MissingField("email")
	}
	if r.Password == "" {
		return MissingField("password")
	}
	return nil
}

// FieldCreatePayload declares a new schema field.
type FieldCreatePayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FieldUpdatePayload renames or re-types an existing schema field.
type FieldUpdatePayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// SchemaChangePayload is a whole-schema replacement.
type SchemaChangePayload struct {
	Updates []FieldUpdatePayload `json:"updates,omitempty"`
	Creates []FieldCreatePayload `json:"creates,omitempty"`
}

func (p *SchemaChangePayload) validate() error {
	for _, u := range p.Updates {
		if u.ID == "" {
			return MissingField("schema.updates.id")
		}
		if u.Name == "" {
			return MissingField("schema.updates.name")
		}
		if u.Type == "" {
			return MissingField("schema.updates.type")
		}
	}
	for _, c := range p.Creates {
		if c.Name == "" {
			return MissingField("schema.creates.name")
		}
		if c.Type == "" {
			return MissingField("schema.creates.type")
		}
	}
	return nil
}

// CreateCollectionRequest creates a collection with an optional initial
// schema.
type CreateCollectionRequest struct {
	Name        string               `json:"name"`
	Topic       string               `json:"topic,omitempty"`
	Description string               `json:"description,omitempty"`
	Fields      []FieldCreatePayload `json:"fields,omitempty"`
}

// Validate implements Validatable.
func (r *CreateCollectionRequest) Validate() error {
	if r.Name == "" {
		return MissingField("name")
	}
	for _, f := range r.Fields {
		if f.Name == "" {
			return MissingField("fields.name")
		}
		if f.Type == "" {
			return MissingField("fields.type")
		}
	}
	return nil
}

// GetCollectionRequest fetches one collection.
type GetCollectionRequest struct {
	ID string `path:"id"`
}

// Validate implements Validatable.
func (r *GetCollectionRequest) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	return nil
}

// ListCollectionsRequest lists collections, optionally scoped to an owner.
type ListCollectionsRequest struct {
	Owner string `query:"owner"`
}

// Validate implements Validatable.
func (r *ListCollectionsRequest) Validate() error { return nil }

// UpdateCollectionRequest changes metadata and optionally replaces the
// whole schema.
type UpdateCollectionRequest struct {
	ID          string               `path:"id"`
	Name        string               `json:"name"`
	Topic       string               `json:"topic,omitempty"`
	Description string               `json:"description,omitempty"`
	Schema      *SchemaChangePayload `json:"schema,omitempty"`
}

// Validate implements Validatable.
func (r *UpdateCollectionRequest) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	if r.Name == "" {
		return MissingField("name")
	}
	if r.Schema != nil {
		return r.Schema.validate()
	}
	return nil
}

// DeleteCollectionRequest removes a collection and everything in it.
type DeleteCollectionRequest struct {
	ID string `path:"id"`
}

// Validate implements Validatable.
func (r *DeleteCollectionRequest) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	return nil
}

// ValuesPayload carries the full typed value payload of one item, keyed by
// field ID within each type.
type ValuesPayload struct {
	Number    map[string]float64   `json:"number,omitempty"`
	Text      map[string]string    `json:"text,omitempty"`
	Multiline map[string]string    `json:"multiline_text,omitempty"`
	Checkbox  map[string]bool      `json:"checkbox,omitempty"`
	Date      map[string]time.Time `json:"date,omitempty"`
}

// CreateItemRequest adds an item to a collection.
type CreateItemRequest struct {
	CollectionID string        `path:"collectionID"`
	Name         string        `json:"name"`
	Tags         []string      `json:"tags,omitempty"`
	Values       ValuesPayload `json:"values"`
}

// Validate implements Validatable.
func (r *CreateItemRequest) Validate() error {
	if r.CollectionID == "" {
		return MissingField("collectionID")
	}
	if r.Name == "" {
		return MissingField("name")
	}
	return nil
}

// GetItemRequest fetches one item with its values.
type GetItemRequest struct {
	ID string `path:"id"`
}

// Validate implements Validatable.
func (r *GetItemRequest) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	return nil
}

// ListItemsRequest lists a collection's items.
type ListItemsRequest struct {
	CollectionID string `path:"collectionID"`
}

// Validate implements Validatable.
func (r *ListItemsRequest) Validate() error {
	if r.CollectionID == "" {
		return MissingField("collectionID")
	}
	return nil
}

// UpdateItemRequest replaces an item's name, tags and whole value payload.
type UpdateItemRequest struct {
	ID     string        `path:"id"`
	Name   string        `json:"name"`
	Tags   []string      `json:"tags,omitempty"`
	Values ValuesPayload `json:"values"`
}

// Validate implements Validatable.
func (r *UpdateItemRequest) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	if r.Name == "" {
		return MissingField("name")
	}
	return nil
}

// DeleteItemRequest removes an item.
type DeleteItemRequest struct {
	ID string `path:"id"`
}

// Validate implements Validatable.
func (r *DeleteItemRequest) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	return nil
}

// CreateCommentRequest adds a comment to an item.
type CreateCommentRequest struct {
	ItemID string `path:"itemID"`
	Text   string `json:"text"`
}

// Validate implements Validatable.
func (r *CreateCommentRequest) Validate() error {
	if r.ItemID == "" {
		return MissingField("itemID")
	}
	if r.Text == "" {
		return MissingField("text")
	}
	return nil
}

// ListCommentsRequest lists an item's comments.
type ListCommentsRequest struct {
	ItemID string `path:"itemID"`
}

// Validate implements Validatable.
func (r *ListCommentsRequest) Validate() error {
	if r.ItemID == "" {
		return MissingField("itemID")
	}
	return nil
}

// DeleteCommentRequest removes a comment.
type DeleteCommentRequest struct {
	ID string `path:"id"`
}

// Validate implements Validatable.
func (r *DeleteCommentRequest) Validate() error {
	if r.ID == "" {
		return MissingField("id")
	}
	return nil
}

// SearchRequest runs one full-text query across all indexes.
type SearchRequest struct {
	Query string `query:"q"`
}

// Validate implements Validatable.
func (r *SearchRequest) Validate() error {
	if r.Query == "" {
		return MissingField("q")
	}
	return nil
}

// TagsRequest lists tags, optionally filtered by prefix.
type TagsRequest struct {
	Prefix string `query:"prefix"`
}

// Validate implements Validatable.
func (r *TagsRequest) Validate() error { return nil }

// HistoryRequest fetches recent data snapshots.
type HistoryRequest struct {
	Limit int `query:"limit"`
}

// Validate implements Validatable.
func (r *HistoryRequest) Validate() error {
	if r.Limit < 0 {
		return BadRequest("limit must be non-negative")
	}
	return nil
}
