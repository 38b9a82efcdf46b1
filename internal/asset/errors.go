package asset

import "errors"

// Domain errors for the asset package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, asset.ErrAssetExists) {
//	    // delete first, then re-add
//	}
var (
	// ErrAssetExists is returned when adding an asset whose id already
	// exists within its type's collection.
	ErrAssetExists = errors.New("asset: already exists")

	// ErrInvalidDelta is returned for socket payloads missing the type or
	// asset id. Callers drop these with a warning; they are never fatal.
	ErrInvalidDelta = errors.New("asset: invalid delta")
)
