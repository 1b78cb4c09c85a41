// Package session provides per-viewer view state for stored graphs.
//
// A [Session] records how one viewer currently looks at a graph: which
// containers they collapsed or expanded and their styling toggles. The
// underlying snapshot in the store stays untouched; the view state is an
// overlay applied just before a render pass, so two viewers of the same
// graph can hold different collapse states.
//
// # Usage
//
// Create and store a session:
//
//	sess, err := session.New(graphID, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
// Apply it before rendering:
//
//	view := sess.View.Apply(doc.Snapshot)
//	result, err := runner.Execute(ctx, view, opts)
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"maps"
	"time"

	"github.com/flowscope/flowscope/pkg/flow"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// ViewState is the per-viewer overlay on a stored snapshot.
type ViewState struct {
	// Collapsed maps container IDs to collapse overrides. Containers
	// absent from the map keep the snapshot's own flag.
	Collapsed map[string]bool `json:"collapsed,omitempty"`

	// Styling toggles forwarded to the render pipeline.
	ShowPropertyLabels bool `json:"show_property_labels,omitempty"`
	EnableAnimations   bool `json:"enable_animations,omitempty"`
}

// Apply returns a copy of the snapshot with the collapse overrides applied.
// The input snapshot is never mutated.
func (v ViewState) Apply(s flow.Snapshot) flow.Snapshot {
	out := s.Clone()
	if len(v.Collapsed) == 0 {
		return out
	}
	for i := range out.Containers {
		if collapsed, ok := v.Collapsed[out.Containers[i].ID]; ok {
			out.Containers[i].Collapsed = collapsed
		}
	}
	return out
}

// Session stores one viewer's state for one graph.
type Session struct {
	ID        string    `json:"id"`
	GraphID   string    `json:"graph_id"`
	View      ViewState `json:"view"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Clone returns a deep copy of the session. The Collapsed map is copied too,
// so a Toggle on the clone never reaches the original.
func (s *Session) Clone() *Session {
	out := *s
	out.View.Collapsed = maps.Clone(s.View.Collapsed)
	return &out
}

// Toggle flips the effective collapse state of a container relative to the
// base snapshot and records it as an override. It reports the new state.
func (s *Session) Toggle(base flow.Snapshot, containerID string) (bool, bool) {
	c, ok := base.Container(containerID)
	if !ok {
		return false, false
	}
	current := c.Collapsed
	if override, ok := s.View.Collapsed[containerID]; ok {
		current = override
	}
	if s.View.Collapsed == nil {
		s.View.Collapsed = make(map[string]bool)
	}
	s.View.Collapsed[containerID] = !current
	return !current, true
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist.
	// Returns nil, ErrExpired if the session exists but has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a session for the given graph.
func New(graphID string, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:        id,
		GraphID:   graphID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}
