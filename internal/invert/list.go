package invert

import (
	"context"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/orneryd/nornicdb/internal/qnode"
)

// badgerInvertedList is a fresh per-call scan over one token's posting
// keyspace. LowerBound seeks directly; Next simply continues from the
// last position, matching the document-at-a-time access pattern every
// qnode evaluator uses.
type badgerInvertedList struct {
	file  *BadgerInvertedFile
	token string

	txn      *badger.Txn
	iter     *badger.Iterator
	lastTF   uint32
	lastLocs []qnode.Location
}

func (l *badgerInvertedList) ensureIter() {
	if l.txn != nil {
		return
	}
	l.txn = l.file.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	l.iter = l.txn.NewIterator(opts)
}

func (l *badgerInvertedList) Next(ctx context.Context) (qnode.DocumentID, uint32, bool, error) {
	if l.file.IsCancel() {
		return 0, 0, false, wrapCancelled()
	}
	l.ensureIter()
	if !l.iter.Valid() {
		prefix := postingPrefix(l.token)
		l.iter.Seek(prefix)
	} else {
		l.iter.Next()
	}
	return l.current()
}

func (l *badgerInvertedList) LowerBound(ctx context.Context, g qnode.DocumentID) (qnode.DocumentID, uint32, bool, error) {
	if l.file.IsCancel() {
		return 0, 0, false, wrapCancelled()
	}
	l.ensureIter()
	l.iter.Seek(postingKey(l.token, uint32(g)))
	return l.current()
}

func (l *badgerInvertedList) current() (qnode.DocumentID, uint32, bool, error) {
	prefix := postingPrefix(l.token)
	if !l.iter.ValidForPrefix(prefix) {
		return 0, 0, false, nil
	}
	item := l.iter.Item()
	doc := qnode.DocumentID(docIDFromPostingKey(item.KeyCopy(nil), len(l.token)))
	var tf uint32
	var locs []qnode.Location
	err := item.Value(func(val []byte) error {
		t, ls, err := decodePosting(val)
		tf, locs = t, ls
		return err
	})
	if err != nil {
		return 0, 0, false, err
	}
	l.lastTF, l.lastLocs = tf, locs
	return doc, tf, true, nil
}

func (l *badgerInvertedList) Locations() (qnode.LocationIterator, bool) {
	if len(l.lastLocs) == 0 {
		return nil, false
	}
	return newSliceLocationIterator(l.lastLocs), true
}

func (l *badgerInvertedList) DocumentFrequency() uint32 {
	df, _ := l.file.GetDocumentFrequency(context.Background(), l.token)
	return df
}

func (l *badgerInvertedList) Close() {
	if l.iter != nil {
		l.iter.Close()
	}
	if l.txn != nil {
		l.txn.Discard()
	}
}

var _ qnode.InvertedList = (*badgerInvertedList)(nil)

// sliceLocationIterator is the pooled free-list implementation of
// LocationIterator spec.md §5/§9 describe: callers Release() it back to
// a sync.Pool instead of letting it get garbage collected.
type sliceLocationIterator struct {
	locs []qnode.Location
	pos  int
}

var locationIteratorPool = sync.Pool{
	New: func() interface{} { return &sliceLocationIterator{} },
}

func newSliceLocationIterator(locs []qnode.Location) *sliceLocationIterator {
	it := locationIteratorPool.Get().(*sliceLocationIterator)
	it.locs = locs
	it.pos = 0
	return it
}

func (it *sliceLocationIterator) Next() (qnode.Location, bool) {
	if it.pos >= len(it.locs) {
		return 0, false
	}
	l := it.locs[it.pos]
	it.pos++
	return l, true
}

func (it *sliceLocationIterator) Reset() { it.pos = 0 }

func (it *sliceLocationIterator) Release() {
	it.locs = nil
	it.pos = 0
	locationIteratorPool.Put(it)
}

var _ qnode.LocationIterator = (*sliceLocationIterator)(nil)
