package engine_test

import (
	"context"
	"testing"

	"github.com/orneryd/nornicdb/internal/engine"
	"github.com/orneryd/nornicdb/internal/ftsconfig"
	"github.com/orneryd/nornicdb/internal/qnode"
)

func setupEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cfg := ftsconfig.Default()
	cfg.DataDir = t.TempDir()
	cfg.Tokenizer = "ngram:2:2"
	eng, err := engine.Open(cfg)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestEngine_IndexAndQueryRoundTrip(t *testing.T) {
	eng := setupEngine(t)
	ctx := context.Background()

	if err := eng.Index(ctx, 1, "the quick fox"); err != nil {
		t.Fatalf("Index(1) = %v", err)
	}
	if err := eng.Index(ctx, 2, "a lazy dog"); err != nil {
		t.Fatalf("Index(2) = %v", err)
	}

	root := qnode.NewTermLeaf("fox", []string{"en"}, qnode.StringMode)
	plan, err := eng.Validate(ctx, root)
	if err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	results, err := eng.Retrieve(ctx, plan)
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if len(results) != 1 || results[0].Doc != 1 {
		t.Errorf("results = %+v, want a single match on doc 1", results)
	}
}

func TestEngine_IndexInvalidatesPlanCache(t *testing.T) {
	eng := setupEngine(t)
	ctx := context.Background()
	if err := eng.Index(ctx, 1, "the quick fox"); err != nil {
		t.Fatal(err)
	}

	root := qnode.NewTermLeaf("fox", []string{"en"}, qnode.StringMode)
	if _, err := eng.Validate(ctx, root); err != nil {
		t.Fatal(err)
	}

	if err := eng.Index(ctx, 2, "a lazy dog"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Validate(ctx, qnode.NewTermLeaf("fox", []string{"en"}, qnode.StringMode)); err != nil {
		t.Fatal(err)
	}
	stats := eng.Cache.Stats()
	if stats.Misses < 2 {
		t.Errorf("stats = %+v, want at least 2 misses (initial validate + re-validate after Index invalidated the cache)", stats)
	}
}

func TestEngine_ValidateCachesByCanonicalQueryString(t *testing.T) {
	eng := setupEngine(t)
	ctx := context.Background()
	if err := eng.Index(ctx, 1, "the quick fox"); err != nil {
		t.Fatal(err)
	}

	root := qnode.NewTermLeaf("fox", []string{"en"}, qnode.StringMode)
	first, err := eng.Validate(ctx, root)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.Validate(ctx, qnode.NewTermLeaf("fox", []string{"en"}, qnode.StringMode))
	if err != nil {
		t.Fatal(err)
	}
	stats := eng.Cache.Stats()
	if stats.Hits == 0 {
		t.Error("expected the second Validate call to hit the plan cache")
	}
	if first.CanonicalString() != second.CanonicalString() {
		t.Errorf("cached plan canonical string differs: %q vs %q", first.CanonicalString(), second.CanonicalString())
	}
}
