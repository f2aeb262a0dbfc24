package invert

import (
	"context"
	"sort"

	"github.com/orneryd/nornicdb/internal/qnode"
)

// MemoryInvertedFile is a map-backed InvertedFile used by unit tests in
// place of BadgerInvertedFile, mirroring the role NewBadgerEngineInMemory
// plays for the graph engine's own test suite: same contract, no real
// disk I/O.
type MemoryInvertedFile struct {
	postings map[string]map[qnode.DocumentID][]qnode.Location
	indexing qnode.IndexingType
	lengths  qnode.DocumentLengthFile
	cancel   bool
	maxDoc   qnode.DocumentID
	minDoc   qnode.DocumentID
	lastDoc  qnode.DocumentID
}

func NewMemoryInvertedFile(indexing qnode.IndexingType, lengths qnode.DocumentLengthFile) *MemoryInvertedFile {
	return &MemoryInvertedFile{
		postings: make(map[string]map[qnode.DocumentID][]qnode.Location),
		indexing: indexing,
		lengths:  lengths,
	}
}

func (f *MemoryInvertedFile) IndexTerm(token string, doc qnode.DocumentID, locations []qnode.Location) {
	if f.postings[token] == nil {
		f.postings[token] = make(map[qnode.DocumentID][]qnode.Location)
	}
	f.postings[token][doc] = locations
	if f.maxDoc == 0 || doc > f.maxDoc {
		f.maxDoc = doc
	}
	if f.minDoc == 0 || doc < f.minDoc {
		f.minDoc = doc
	}
	f.lastDoc = doc
}

func (f *MemoryInvertedFile) SetCancel(v bool) { f.cancel = v }
func (f *MemoryInvertedFile) IsCancel() bool    { return f.cancel }

func (f *MemoryInvertedFile) sortedDocs(token string) []qnode.DocumentID {
	m := f.postings[token]
	docs := make([]qnode.DocumentID, 0, len(m))
	for d := range m {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i] < docs[j] })
	return docs
}

func (f *MemoryInvertedFile) GetInvertedList(ctx context.Context, key string, mode qnode.LookupMode) (qnode.InvertedList, bool, error) {
	if _, ok := f.postings[key]; ok {
		return newMemoryList(f, key), true, nil
	}
	if mode == qnode.LowerBoundLookup {
		keys, err := f.RangeKeys(ctx, key, "", 1)
		if err != nil || len(keys) == 0 {
			return nil, false, err
		}
		return newMemoryList(f, keys[0]), true, nil
	}
	return nil, false, nil
}

func (f *MemoryInvertedFile) RangeKeys(ctx context.Context, from, to string, limit int) ([]string, error) {
	var keys []string
	for k := range f.postings {
		if k < from {
			continue
		}
		if to != "" && k >= to {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

func (f *MemoryInvertedFile) GetDocumentLengthFile() qnode.DocumentLengthFile { return f.lengths }

func (f *MemoryInvertedFile) GetDocumentFrequency(ctx context.Context, key string) (uint32, error) {
	return uint32(len(f.postings[key])), nil
}

func (f *MemoryInvertedFile) GetTotalDocumentFrequency(ctx context.Context) (uint32, error) {
	total := uint32(0)
	for _, m := range f.postings {
		total += uint32(len(m))
	}
	return total, nil
}

func (f *MemoryInvertedFile) GetMaxDocumentID(ctx context.Context) (qnode.DocumentID, error) {
	return f.maxDoc, nil
}

func (f *MemoryInvertedFile) GetMinDocumentID(ctx context.Context) (qnode.DocumentID, error) {
	return f.minDoc, nil
}

func (f *MemoryInvertedFile) GetLastDocumentID(ctx context.Context) (qnode.DocumentID, error) {
	return f.lastDoc, nil
}

func (f *MemoryInvertedFile) GetIndexingType() qnode.IndexingType { return f.indexing }

func (f *MemoryInvertedFile) GetLocationCoder(key string) (qnode.LocationCoder, error) {
	return rawLocationCoder{}, nil
}

var _ qnode.InvertedFile = (*MemoryInvertedFile)(nil)

type memoryList struct {
	file   *MemoryInvertedFile
	token  string
	docs   []qnode.DocumentID
	pos    int
	curLoc []qnode.Location
}

func newMemoryList(f *MemoryInvertedFile, token string) *memoryList {
	return &memoryList{file: f, token: token, docs: f.sortedDocs(token), pos: -1}
}

func (l *memoryList) Next(ctx context.Context) (qnode.DocumentID, uint32, bool, error) {
	if l.file.IsCancel() {
		return 0, 0, false, wrapCancelled()
	}
	l.pos++
	return l.current()
}

func (l *memoryList) LowerBound(ctx context.Context, g qnode.DocumentID) (qnode.DocumentID, uint32, bool, error) {
	if l.file.IsCancel() {
		return 0, 0, false, wrapCancelled()
	}
	idx := sort.Search(len(l.docs), func(i int) bool { return l.docs[i] >= g })
	l.pos = idx
	return l.current()
}

func (l *memoryList) current() (qnode.DocumentID, uint32, bool, error) {
	if l.pos < 0 || l.pos >= len(l.docs) {
		return 0, 0, false, nil
	}
	d := l.docs[l.pos]
	l.curLoc = l.file.postings[l.token][d]
	return d, uint32(len(l.curLoc)), true, nil
}

func (l *memoryList) Locations() (qnode.LocationIterator, bool) {
	if len(l.curLoc) == 0 {
		return nil, false
	}
	return newSliceLocationIterator(append([]qnode.Location(nil), l.curLoc...)), true
}

func (l *memoryList) DocumentFrequency() uint32 {
	return uint32(len(l.file.postings[l.token]))
}

var _ qnode.InvertedList = (*memoryList)(nil)
