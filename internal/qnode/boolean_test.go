package qnode_test

import (
	"context"
	"testing"

	"github.com/orneryd/nornicdb/internal/invert"
	"github.com/orneryd/nornicdb/internal/qnode"
)

func leafFor(t *testing.T, file *invert.MemoryInvertedFile, term string) *qnode.SimpleTokenLeafNode {
	t.Helper()
	list, ok, err := file.GetInvertedList(context.Background(), term, qnode.Search)
	if err != nil || !ok {
		t.Fatalf("GetInvertedList(%q) = (_, %v, %v)", term, ok, err)
	}
	return qnode.NewSimpleTokenLeaf(term, list)
}

func retrieveDocs(t *testing.T, n qnode.Node, mode qnode.Mode) []qnode.DocumentID {
	t.Helper()
	results, err := n.Retrieve(context.Background(), mode)
	if err != nil {
		t.Fatal(err)
	}
	docs := make([]qnode.DocumentID, len(results))
	for i, r := range results {
		docs[i] = r.Doc
	}
	return docs
}

func TestAndNode_Intersection(t *testing.T) {
	file := invert.NewMemoryInvertedFile(qnode.Ngram, nil)
	file.IndexTerm("cat", 1, []qnode.Location{1})
	file.IndexTerm("cat", 2, []qnode.Location{1})
	file.IndexTerm("dog", 2, []qnode.Location{1})
	file.IndexTerm("dog", 3, []qnode.Location{1})

	and := qnode.NewAnd(leafFor(t, file, "cat"), leafFor(t, file, "dog"))
	docs := retrieveDocs(t, and, qnode.Mode(0))
	if len(docs) != 1 || docs[0] != 2 {
		t.Errorf("docs = %v, want [2]", docs)
	}
}

func TestAndNode_CanonicalString(t *testing.T) {
	file := invert.NewMemoryInvertedFile(qnode.Ngram, nil)
	file.IndexTerm("cat", 1, []qnode.Location{1})
	and := qnode.NewAnd(leafFor(t, file, "cat"))
	want := "#and(#tok(cat))"
	if got := and.CanonicalString(); got != want {
		t.Errorf("CanonicalString() = %q, want %q", got, want)
	}
}

func TestOrNode_Union(t *testing.T) {
	file := invert.NewMemoryInvertedFile(qnode.Ngram, nil)
	file.IndexTerm("cat", 1, []qnode.Location{1})
	file.IndexTerm("dog", 2, []qnode.Location{1})
	file.IndexTerm("cat", 2, []qnode.Location{2})

	or := qnode.NewOr(leafFor(t, file, "cat"), leafFor(t, file, "dog"))
	docs := retrieveDocs(t, or, qnode.Mode(0))
	if len(docs) != 2 || docs[0] != 1 || docs[1] != 2 {
		t.Errorf("docs = %v, want [1 2]", docs)
	}
}

func TestNotNode_NeverSelfScans(t *testing.T) {
	file := invert.NewMemoryInvertedFile(qnode.Ngram, nil)
	file.IndexTerm("cat", 1, []qnode.Location{1})
	not := qnode.NewNot(leafFor(t, file, "cat"))

	d, ok, err := not.LowerBound(context.Background(), 5, qnode.Mode(0))
	if err != nil || !ok || d != 5 {
		t.Errorf("LowerBound(5) = (%d, %v, %v), want (5, true, nil)", d, ok, err)
	}

	matched, err := not.Evaluate(context.Background(), 1, qnode.Mode(0))
	if err != nil || matched {
		t.Errorf("Evaluate(1) = (%v, %v), want (false, nil)", matched, err)
	}
	matched, err = not.Evaluate(context.Background(), 2, qnode.Mode(0))
	if err != nil || !matched {
		t.Errorf("Evaluate(2) = (%v, %v), want (true, nil)", matched, err)
	}
}

func TestAndNotNode_ExcludesMatchingDocs(t *testing.T) {
	file := invert.NewMemoryInvertedFile(qnode.Ngram, nil)
	file.IndexTerm("cat", 1, []qnode.Location{1})
	file.IndexTerm("cat", 2, []qnode.Location{1})
	file.IndexTerm("dog", 2, []qnode.Location{1})

	andNot := qnode.NewAndNot(leafFor(t, file, "cat"), leafFor(t, file, "dog"))
	docs := retrieveDocs(t, andNot, qnode.Mode(0))
	if len(docs) != 1 || docs[0] != 1 {
		t.Errorf("docs = %v, want [1] (doc 2 excluded by dog)", docs)
	}
}

func TestAndNotNode_CanonicalString(t *testing.T) {
	file := invert.NewMemoryInvertedFile(qnode.Ngram, nil)
	file.IndexTerm("cat", 1, []qnode.Location{1})
	file.IndexTerm("dog", 1, []qnode.Location{1})
	andNot := qnode.NewAndNot(leafFor(t, file, "cat"), leafFor(t, file, "dog"))
	want := "#and-not(#tok(cat),#tok(dog))"
	if got := andNot.CanonicalString(); got != want {
		t.Errorf("CanonicalString() = %q, want %q", got, want)
	}
}
