// Package doclen implements DocumentLengthFile, the small auxiliary
// collaborator length-normalized calculators (BM25) and the End/Location
// node variants consult, adapted from the original full-text index's
// docLengths/avgDocLength bookkeeping (pkg/search/fulltext_index.go) into
// a standalone BadgerDB-backed table.
package doclen

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/orneryd/nornicdb/internal/qnode"
)

const prefixLength = byte(0x20)

func lengthKey(d qnode.DocumentID) []byte {
	var buf [5]byte
	buf[0] = prefixLength
	binary.BigEndian.PutUint32(buf[1:], uint32(d))
	return buf[:]
}

// BadgerLengthFile persists one u32 length per document. The running
// sum/count used to answer AverageLength is held in memory, not persisted.
type BadgerLengthFile struct {
	db       *badger.DB
	sum      int64
	count    int64
	mu       sync.Mutex
	sumKnown atomic.Bool
}

func NewBadgerLengthFile(db *badger.DB) *BadgerLengthFile {
	return &BadgerLengthFile{db: db}
}

func (f *BadgerLengthFile) Set(ctx context.Context, d qnode.DocumentID, length uint32) error {
	return f.db.Update(func(txn *badger.Txn) error {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], length)
		return txn.Set(lengthKey(d), buf[:])
	})
}

func (f *BadgerLengthFile) Length(ctx context.Context, d qnode.DocumentID) (uint32, error) {
	var length uint32
	err := f.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(lengthKey(d))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			length = binary.BigEndian.Uint32(val)
			return nil
		})
	})
	return length, err
}

// AverageLength scans the length table once and caches the running
// sum/count in memory; callers that mutate lengths after the first call
// should construct a fresh BadgerLengthFile or call Recompute.
func (f *BadgerLengthFile) AverageLength(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.sumKnown.Load() {
		if err := f.recomputeLocked(); err != nil {
			return 0, err
		}
	}
	if f.count == 0 {
		return 0, nil
	}
	return float64(f.sum) / float64(f.count), nil
}

func (f *BadgerLengthFile) Recompute(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recomputeLocked()
}

func (f *BadgerLengthFile) recomputeLocked() error {
	var sum, count int64
	err := f.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte{prefixLength}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				sum += int64(binary.BigEndian.Uint32(val))
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("recomputing average document length: %w", err)
	}
	f.sum, f.count = sum, count
	f.sumKnown.Store(true)
	return nil
}

var _ qnode.DocumentLengthFile = (*BadgerLengthFile)(nil)

// MemoryLengthFile is the map-backed counterpart used in unit tests.
type MemoryLengthFile struct {
	lengths map[qnode.DocumentID]uint32
}

func NewMemoryLengthFile() *MemoryLengthFile {
	return &MemoryLengthFile{lengths: make(map[qnode.DocumentID]uint32)}
}

func (f *MemoryLengthFile) Set(d qnode.DocumentID, length uint32) {
	f.lengths[d] = length
}

func (f *MemoryLengthFile) Length(ctx context.Context, d qnode.DocumentID) (uint32, error) {
	return f.lengths[d], nil
}

func (f *MemoryLengthFile) AverageLength(ctx context.Context) (float64, error) {
	if len(f.lengths) == 0 {
		return 0, nil
	}
	var sum uint64
	for _, l := range f.lengths {
		sum += uint64(l)
	}
	return float64(sum) / float64(len(f.lengths)), nil
}

var _ qnode.DocumentLengthFile = (*MemoryLengthFile)(nil)
