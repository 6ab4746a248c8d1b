// API response types. IDs are strings, timestamps RFC 3339 via time.Time.

package dto

import "time"

// EmptyResponse is returned by endpoints with nothing to report.
type EmptyResponse struct{}

// UserResponse describes a user account.
type UserResponse struct {
	ID      string    `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	IsAdmin bool      `json:"is_admin,omitempty"`
	Created time.Time `json:"created"`
}

// AuthResponse carries the bearer token after register/login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// LogoutResponse reports how many sessions were revoked.
type LogoutResponse struct {
	Revoked int `json:"revoked"`
}

// FieldResponse describes one schema field.
type FieldResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// CollectionResponse describes a collection and its schema.
type CollectionResponse struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Name        string          `json:"name"`
	Topic       string          `json:"topic,omitempty"`
	Description string          `json:"description,omitempty"`
	Fields      []FieldResponse `json:"fields"`
	Created     time.Time       `json:"created"`
	Modified    time.Time       `json:"modified"`
}

// CollectionListResponse is a list of collections.
type CollectionListResponse struct {
	Collections []CollectionResponse `json:"collections"`
}

// ItemResponse describes an item with its full value payload.
type ItemResponse struct {
	ID           string        `json:"id"`
	CollectionID string        `json:"collection_id"`
	Name         string        `json:"name"`
	Tags         []string      `json:"tags,omitempty"`
	Values       ValuesPayload `json:"values"`
	Created      time.Time     `json:"created"`
	Modified     time.Time     `json:"modified"`
}

// ItemListResponse is a list of items without their values.
type ItemListResponse struct {
	Items []ItemSummaryResponse `json:"items"`
}

// ItemSummaryResponse is a compact item reference.
type ItemSummaryResponse struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collection_id"`
	Name         string    `json:"name"`
	Created      time.Time `json:"created"`
}

// CommentResponse describes one comment.
type CommentResponse struct {
	ID       string    `json:"id"`
	ItemID   string    `json:"item_id"`
	AuthorID string    `json:"author_id"`
	Text     string    `json:"text"`
	Created  time.Time `json:"created"`
}

// CommentListResponse is a list of comments.
type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
}

// SearchResponse is the reconciled result of one query.
type SearchResponse struct {
	Results []ItemSummaryResponse `json:"results"`
}

// TagsResponse is a list of tags.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// CommitResponse describes one data snapshot.
type CommitResponse struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
}

// HistoryResponse lists recent data snapshots.
type HistoryResponse struct {
	Commits []CommitResponse `json:"commits"`
}

// HealthResponse reports server liveness and build info.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commits int    `json:"commits"`
}
