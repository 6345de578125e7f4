// Package store persists the PaintSnap entity hierarchy
// (User → Project → Area → Photo → Tag) with ownership-scoped access.
//
// Every read or mutation that takes an ownerID compares it against the
// owner id denormalized onto the row at creation time. A missing row is
// reported as NotFound, a row owned by someone else as Forbidden; callers
// can tell the two apart.
package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/blob"
)

// Store provides entity persistence on top of gorm plus the blob store
// holding photo and tag image bytes.
type Store struct {
	db    *gorm.DB
	blobs blob.Store
}

// New constructs a Store.
func New(db *gorm.DB, blobs blob.Store) *Store {
	return &Store{db: db, blobs: blobs}
}

// DB exposes the underlying connection for migrations and tests.
func (s *Store) DB() *gorm.DB { return s.db }

// notFoundOr maps gorm's record-not-found to the tagged NotFound variant
// and wraps anything else as internal.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return apperr.Internal("query "+what, err)
}
