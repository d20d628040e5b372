package favorites

import "errors"

// Sentinel errors for favorites operations.
var (
	// ErrInvalidInput indicates an item or id without the fields a favorite needs.
	ErrInvalidInput = errors.New("invalid favorite input")

	// ErrAlreadyFavorite indicates the id is already in the collection.
	ErrAlreadyFavorite = errors.New("already a favorite")

	// ErrStorageCorrupt indicates the persisted blob could not be decoded as a
	// list of favorites. The store recovers from it by resetting the blob; it
	// only ever shows up in logs.
	ErrStorageCorrupt = errors.New("favorites storage corrupt")
)
