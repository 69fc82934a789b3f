// Package errors defines all exported error sentinels for the semisort library.
//
// This is the single source of truth for error values. Both the top-level
// semisort package and internal packages import from here, ensuring
// errors.Is checks work across package boundaries.
package errors

import "errors"

// Input errors
var (
	ErrInvalidInputSize = errors.New("semisort: input too small to sample (num_samples computes to zero)")
	ErrInvalidConfig    = errors.New("semisort: invalid configuration")
)

// Grouping errors
var (
	ErrCapacityExceeded    = errors.New("semisort: bucket capacity exceeded")
	ErrMissingBucket       = errors.New("semisort: no bucket descriptor for hashed key")
	ErrRecordCountMismatch = errors.New("semisort: repacked record count does not match input length")
	ErrHashedKeyOutOfRange = errors.New("semisort: hashed key outside [1, hash range]")
	ErrNotGrouped          = errors.New("semisort: records with equal keys are not contiguous")
)

// Scratch errors
var (
	ErrScratchTooSmall = errors.New("semisort: scratch buffer too small")
	ErrScratchClosed   = errors.New("semisort: scratch is closed")
)

// Table errors (used by internal/bucket)
var (
	ErrTableFull        = errors.New("semisort: descriptor table is full")
	ErrDuplicateBucket  = errors.New("semisort: bucket id inserted twice")
	ErrInvalidBucketID  = errors.New("semisort: bucket id 0 is reserved for empty slots")
	ErrCapacityTooLarge = errors.New("semisort: bucket capacity exceeds 2^31-1")
)
