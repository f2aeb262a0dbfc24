// Package ftserrors defines the sentinel error taxonomy shared across the
// query-tree, validation, and tokenizer packages.
package ftserrors

import "errors"

// Sentinel errors. Call sites wrap these with context via fmt.Errorf("...: %w", err)
// and callers unwrap with errors.Is.
var (
	// ErrInvalidMatchMode is returned when a TermLeafNode's match mode is
	// incompatible with the inverted file's indexing type (e.g. WordHead
	// against an Ngram-only index).
	ErrInvalidMatchMode = errors.New("ftsearch: match mode incompatible with indexing type")

	// ErrInvalidTokenizerParameter is returned when a tokenizer description
	// string cannot be parsed.
	ErrInvalidTokenizerParameter = errors.New("ftsearch: invalid tokenizer parameter string")

	// ErrTooLongIndexKey is returned when a token exceeds the platform's
	// fixed maximum index key length.
	ErrTooLongIndexKey = errors.New("ftsearch: token exceeds maximum index key length")

	// ErrGetNormalizerFail is returned when a tokenizer's configured
	// normalizer/analyzer resource id has no registered provider.
	ErrGetNormalizerFail = errors.New("ftsearch: no normalizer registered for resource id")

	// ErrQueryValidateFail is returned when validation finds an arity or
	// coverage violation (window/NOT/AND-NOT arity, best-path coverage).
	ErrQueryValidateFail = errors.New("ftsearch: query validation failed")

	// ErrSpatialIndexNeeded is returned when a NEIGHBOR-IN predicate is
	// checked against a relation lacking a spatial index.
	ErrSpatialIndexNeeded = errors.New("ftsearch: spatial index required")

	// ErrCancelled is returned when the storage engine's cancel poll
	// returns true mid-evaluation.
	ErrCancelled = errors.New("ftsearch: evaluation cancelled")

	// ErrNotSupported is returned when a NOT node cannot be converted to a
	// form implementable against the current index.
	ErrNotSupported = errors.New("ftsearch: operation not supported by index")
)
