// Package store persists movie records for the serve command. The
// default backend writes JSON files under the user config directory; a
// MongoDB backend serves multi-instance deployments.
package store

import (
	"context"
	"time"

	"github.com/phylomovie/phylomovie/pkg/movie"
)

// Info is the listing metadata of a stored movie.
type Info struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	TreeCount int       `json:"tree_count" bson:"tree_count"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Store is the interface for movie persistence backends.
type Store interface {
	// Get retrieves a movie by ID. Returns an error with code
	// MOVIE_NOT_FOUND when no such movie exists.
	Get(ctx context.Context, id string) (*movie.Data, error)

	// Put stores a movie and returns its ID. The ID is the movie's
	// content hash, so storing the same movie twice is idempotent.
	Put(ctx context.Context, data *movie.Data) (string, error)

	// Delete removes a movie. Deleting a missing movie is not an error.
	Delete(ctx context.Context, id string) error

	// List returns metadata for all stored movies.
	List(ctx context.Context) ([]Info, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
