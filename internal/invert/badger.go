package invert

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/orneryd/nornicdb/internal/ftserrors"
	"github.com/orneryd/nornicdb/internal/qnode"
)

// BadgerInvertedFile is the on-disk InvertedFile collaborator, adapted
// from NornicDB's BadgerEngine key-prefix storage scheme to the
// token -> (docID -> TF, locations) posting-list domain this package
// owns.
type BadgerInvertedFile struct {
	db            *badger.DB
	tokenizer     qnode.IndexingType
	lengths       qnode.DocumentLengthFile
	mu            sync.RWMutex
	closed        bool
	cancelRequest atomic.Bool
}

// OpenBadgerDB opens the shared Badger handle both BadgerInvertedFile and
// doclen.BadgerLengthFile operate over (they use disjoint key prefixes, so
// one database serves both tables). Passing inMemory=true mirrors
// NewBadgerEngineInMemory's testing mode: all data lives in RAM and is
// lost on Close.
func OpenBadgerDB(dataDir string, inMemory bool) (*badger.DB, error) {
	opts := badger.DefaultOptions(dataDir).WithLogger(nil)
	if inMemory {
		opts = opts.WithInMemory(true)
	}
	opts = opts.
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithValueThreshold(1024).
		WithBlockCacheSize(32 << 20).
		WithIndexCacheSize(16 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening inverted file: %w", err)
	}
	return db, nil
}

// NewBadgerInvertedFile opens (or creates) a Badger-backed inverted file
// at dataDir, owning its own database handle.
func NewBadgerInvertedFile(dataDir string, inMemory bool, indexing qnode.IndexingType, lengths qnode.DocumentLengthFile) (*BadgerInvertedFile, error) {
	db, err := OpenBadgerDB(dataDir, inMemory)
	if err != nil {
		return nil, err
	}
	return NewBadgerInvertedFileFromDB(db, indexing, lengths), nil
}

// NewBadgerInvertedFileFromDB wraps an already-open database handle,
// letting callers share one Badger instance across the inverted file and
// the document-length table.
func NewBadgerInvertedFileFromDB(db *badger.DB, indexing qnode.IndexingType, lengths qnode.DocumentLengthFile) *BadgerInvertedFile {
	return &BadgerInvertedFile{db: db, tokenizer: indexing, lengths: lengths}
}

// SetLengths wires the document-length collaborator in after construction,
// for callers that build it from the same database handle as this file.
func (f *BadgerInvertedFile) SetLengths(lengths qnode.DocumentLengthFile) {
	f.lengths = lengths
}

func (f *BadgerInvertedFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.db.Close()
}

// RequestCancel sets the cancel flag IsCancel polls at document
// boundaries, mirroring the external cancel-poll contract of spec.md §5.
func (f *BadgerInvertedFile) RequestCancel() { f.cancelRequest.Store(true) }

func (f *BadgerInvertedFile) IsCancel() bool { return f.cancelRequest.Load() }

// IndexTerm writes a document's posting for one token, replacing any
// posting already stored for that token and document.
func (f *BadgerInvertedFile) IndexTerm(ctx context.Context, token string, doc qnode.DocumentID, locations []qnode.Location) error {
	tf := uint32(len(locations))
	return f.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(postingKey(token, uint32(doc)), encodePosting(tf, locations)); err != nil {
			return err
		}
		return f.bumpBounds(txn, doc)
	})
}

func (f *BadgerInvertedFile) bumpBounds(txn *badger.Txn, doc qnode.DocumentID) error {
	if err := maxMeta(txn, metaMaxDocID, uint32(doc)); err != nil {
		return err
	}
	if err := minMeta(txn, metaMinDocID, uint32(doc)); err != nil {
		return err
	}
	return setMeta(txn, metaLastDocID, uint32(doc))
}

func maxMeta(txn *badger.Txn, name string, v uint32) error {
	cur, ok, err := getMeta(txn, name)
	if err != nil {
		return err
	}
	if ok && cur >= v {
		return nil
	}
	return setMeta(txn, name, v)
}

func minMeta(txn *badger.Txn, name string, v uint32) error {
	cur, ok, err := getMeta(txn, name)
	if err != nil {
		return err
	}
	if ok && cur <= v {
		return nil
	}
	return setMeta(txn, name, v)
}

func setMeta(txn *badger.Txn, name string, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return txn.Set(metaKey(name), buf[:])
}

func getMeta(txn *badger.Txn, name string) (uint32, bool, error) {
	item, err := txn.Get(metaKey(name))
	if err == badger.ErrKeyNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var v uint32
	err = item.Value(func(val []byte) error {
		v = binary.BigEndian.Uint32(val)
		return nil
	})
	return v, true, err
}

func (f *BadgerInvertedFile) GetInvertedList(ctx context.Context, key string, mode qnode.LookupMode) (qnode.InvertedList, bool, error) {
	df, err := f.GetDocumentFrequency(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if mode == qnode.Search && df == 0 {
		return nil, false, nil
	}
	if mode == qnode.LowerBoundLookup && df == 0 {
		keys, err := f.RangeKeys(ctx, key, "", 1)
		if err != nil || len(keys) == 0 {
			return nil, false, err
		}
		key = keys[0]
	}
	return &badgerInvertedList{file: f, token: key}, true, nil
}

func (f *BadgerInvertedFile) RangeKeys(ctx context.Context, from, to string, limit int) ([]string, error) {
	var out []string
	err := f.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		seen := make(map[string]bool)
		fromKey := []byte{prefixPosting}
		fromKey = append(fromKey, []byte(from)...)
		for it.Seek(fromKey); it.Valid(); it.Next() {
			item := it.Item()
			k := item.Key()
			if len(k) == 0 || k[0] != prefixPosting {
				break
			}
			tok, ok := extractToken(k, to)
			if !ok {
				break
			}
			if !seen[tok] {
				seen[tok] = true
				out = append(out, tok)
				if limit > 0 && len(out) >= limit {
					break
				}
			}
		}
		return nil
	})
	return out, err
}

// extractToken pulls the token portion out of a posting key, returning
// ok=false once the token has advanced past the exclusive upper bound to.
func extractToken(key []byte, to string) (string, bool) {
	rest := key[1:]
	idx := -1
	for i, b := range rest {
		if b == 0x00 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", false
	}
	tok := string(rest[:idx])
	if to != "" && tok >= to {
		return "", false
	}
	return tok, true
}

func (f *BadgerInvertedFile) GetDocumentLengthFile() qnode.DocumentLengthFile { return f.lengths }

func (f *BadgerInvertedFile) GetDocumentFrequency(ctx context.Context, key string) (uint32, error) {
	var df uint32
	err := f.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := postingPrefix(key)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			df++
		}
		return nil
	})
	return df, err
}

func (f *BadgerInvertedFile) GetTotalDocumentFrequency(ctx context.Context) (uint32, error) {
	var total uint32
	err := f.db.View(func(txn *badger.Txn) error {
		v, ok, err := getMeta(txn, metaTotalDF)
		if err != nil {
			return err
		}
		if ok {
			total = v
		}
		return nil
	})
	return total, err
}

func (f *BadgerInvertedFile) GetMaxDocumentID(ctx context.Context) (qnode.DocumentID, error) {
	return f.boundMeta(metaMaxDocID)
}

func (f *BadgerInvertedFile) GetMinDocumentID(ctx context.Context) (qnode.DocumentID, error) {
	return f.boundMeta(metaMinDocID)
}

func (f *BadgerInvertedFile) GetLastDocumentID(ctx context.Context) (qnode.DocumentID, error) {
	return f.boundMeta(metaLastDocID)
}

func (f *BadgerInvertedFile) boundMeta(name string) (qnode.DocumentID, error) {
	var d qnode.DocumentID
	err := f.db.View(func(txn *badger.Txn) error {
		v, _, err := getMeta(txn, name)
		d = qnode.DocumentID(v)
		return err
	})
	return d, err
}

func (f *BadgerInvertedFile) GetIndexingType() qnode.IndexingType { return f.tokenizer }

func (f *BadgerInvertedFile) GetLocationCoder(key string) (qnode.LocationCoder, error) {
	return rawLocationCoder{}, nil
}

// rawLocationCoder decodes the delta-varint location encoding this
// package writes; external callers never need a different on-disk form
// (spec.md §6.1's "opaque to the core" contract).
type rawLocationCoder struct{}

func (rawLocationCoder) Decode(raw []byte) (qnode.LocationIterator, error) {
	_, locs, err := decodePosting(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding location list: %w", err)
	}
	return newSliceLocationIterator(locs), nil
}

var _ qnode.InvertedFile = (*BadgerInvertedFile)(nil)

// wrapCancelled wraps the cancellation sentinel at the evaluator boundary
// per spec.md §5's "distinguished Cancelled error" contract.
func wrapCancelled() error {
	return fmt.Errorf("inverted file cancelled: %w", ftserrors.ErrCancelled)
}
