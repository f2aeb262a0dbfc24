package qnode

import "context"

// InvertedList is an opaque handle to one token's posting list. It yields
// (DocumentID, TF, LocationIterator) triples in ascending DocumentID
// order, exactly as an external InvertedFile collaborator exposes it.
type InvertedList interface {
	// Next advances to the next posting, returning false at end of list.
	Next(ctx context.Context) (DocumentID, uint32, bool, error)
	// LowerBound advances to the first posting with DocumentID >= g,
	// returning ok=false if none exists.
	LowerBound(ctx context.Context, g DocumentID) (DocumentID, uint32, bool, error)
	// Locations returns a LocationIterator over the current posting's
	// positions. HasPositions is false for a position-less list (see
	// spec.md §9 Open Questions on OrderedDistance.reevaluate).
	Locations() (it LocationIterator, hasPositions bool)
	// DocumentFrequency is the number of documents in this list.
	DocumentFrequency() uint32
}

// LocationIterator walks a LocationList in ascending order. Implementations
// are expected to be pooled via a per-node free list (spec.md §9) rather
// than allocated per call; Release returns the iterator to its pool.
type LocationIterator interface {
	// Next returns the next location, or ok=false at end.
	Next() (Location, bool)
	// Reset rewinds the iterator for reuse against a new posting.
	Reset()
	// Release returns the iterator to its owning free list.
	Release()
}

// DocumentLengthFile looks up a document's length in tokens, needed by
// length-normalized calculators (BM25) and by End/Location nodes.
type DocumentLengthFile interface {
	Length(ctx context.Context, d DocumentID) (uint32, error)
	AverageLength(ctx context.Context) (float64, error)
}

// LocationCoder decodes/encodes a token's on-disk location list form. It is
// an external collaborator keyed by token string; the engine never
// inspects its encoding, only the LocationIterator it produces.
type LocationCoder interface {
	Decode(raw []byte) (LocationIterator, error)
}

// LookupMode selects how InvertedFile.GetInvertedList resolves a key.
type LookupMode int

const (
	// Search requires an exact key match.
	Search LookupMode = iota
	// LowerBoundLookup resolves the first key >= the given key, used for
	// short-word range scans.
	LowerBoundLookup
)

// InvertedFile is the storage-engine collaborator consumed by validation
// and evaluation. The core treats it as an opaque provider; it does not
// prescribe on-disk compression, caching, or WAL (spec.md §1 Non-goals).
type InvertedFile interface {
	// GetInvertedList resolves key under mode, returning ok=false if the
	// key (or, under LowerBoundLookup, any key >= it) is absent.
	GetInvertedList(ctx context.Context, key string, mode LookupMode) (InvertedList, bool, error)
	// RangeKeys returns every index key in [from, to) in ascending order,
	// for the short-word expansion range scan (spec.md §4.1).
	RangeKeys(ctx context.Context, from, to string, limit int) ([]string, error)
	GetDocumentLengthFile() DocumentLengthFile
	GetDocumentFrequency(ctx context.Context, key string) (uint32, error)
	GetTotalDocumentFrequency(ctx context.Context) (uint32, error)
	GetMaxDocumentID(ctx context.Context) (DocumentID, error)
	GetMinDocumentID(ctx context.Context) (DocumentID, error)
	GetLastDocumentID(ctx context.Context) (DocumentID, error)
	GetIndexingType() IndexingType
	GetLocationCoder(key string) (LocationCoder, error)
	// IsCancel is polled at document boundaries; a true result unwinds
	// the current evaluation with ftserrors.ErrCancelled.
	IsCancel() bool
}

// ScoreCalculator produces per-document stage-1 scores and finalizes them
// once the true document frequency is known (spec.md §4.2.10, §6.2). A
// calculator instance is duplicated per node at validate time because it
// caches per-node prepared state (avg doc length, total DF).
type ScoreCalculator interface {
	Name() string
	// Prepare primes per-node state from the total collection size and
	// this node's (possibly estimated) document frequency.
	Prepare(totalDF, df uint32)
	// FirstStep computes the stage-1 score for one document from its TF.
	// ok is false if this calculator declines to score the document
	// (e.g. TF is zero).
	FirstStep(tf uint32, d DocumentID) (Score, bool)
	// SecondStep finalizes a stage-1 score once df is known exactly.
	SecondStep(df uint32, stage1 Score, totalDF uint32) Score
	SetDocumentLengthFile(DocumentLengthFile)
	SetAverageDocumentLength(float64)
	// Clone duplicates the calculator for exclusive per-node state.
	Clone() ScoreCalculator
}

// ScoreCombiner merges child scores at a ranking internal node.
type ScoreCombiner interface {
	Name() string
	Apply(scores []Score) Score
	IsAssociative() bool
	IsCommutative() bool
}

// ResultEntry is one row of a bulk Retrieve result.
type ResultEntry struct {
	Doc   DocumentID
	Score Score
	TF    uint32
}

// ResultSet is the bulk-retrieve output, in ascending DocumentID order.
type ResultSet []ResultEntry
