// Package store persists named flow snapshots.
//
// A [Document] wraps one snapshot with identity and timestamps. Backends:
//   - memory: in-memory storage for development/testing
//   - mongo: MongoDB-backed storage for server deployments
//
// Documents are whole-snapshot records; partial updates go through
// Save with a modified snapshot, since a render pass always consumes the
// full snapshot anyway.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/flow"
)

// Document is a stored snapshot with identity and timestamps.
type Document struct {
	ID        string        `json:"id" bson:"_id"`
	Name      string        `json:"name,omitempty" bson:"name,omitempty"`
	Snapshot  flow.Snapshot `json:"snapshot" bson:"snapshot"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

// Summary is a Document without its snapshot payload, for listings.
type Summary struct {
	ID             string    `json:"id" bson:"_id"`
	Name           string    `json:"name,omitempty" bson:"name,omitempty"`
	NodeCount      int       `json:"node_count" bson:"node_count"`
	ContainerCount int       `json:"container_count" bson:"container_count"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// Summarize returns the document's listing record.
func (d *Document) Summarize() Summary {
	return Summary{
		ID:             d.ID,
		Name:           d.Name,
		NodeCount:      d.Snapshot.NodeCount(),
		ContainerCount: d.Snapshot.ContainerCount(),
		UpdatedAt:      d.UpdatedAt,
	}
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save inserts or replaces a document. An empty ID gets a generated
	// one; CreatedAt and UpdatedAt are maintained by the store.
	Save(ctx context.Context, doc *Document) error

	// Get retrieves a document by ID. A missing document is reported
	// with the GRAPH_NOT_FOUND error code.
	Get(ctx context.Context, id string) (*Document, error)

	// List returns summaries of all documents, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a document. Missing documents are reported with
	// the GRAPH_NOT_FOUND error code.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NewID generates a document ID.
func NewID() string {
	return uuid.NewString()
}

// NotFound constructs the canonical missing-document error.
func NotFound(id string) error {
	return errors.New(errors.ErrCodeGraphNotFound, "graph %q not found", id)
}
