package querystring_test

import (
	"testing"

	"github.com/orneryd/nornicdb/internal/querystring"
)

func TestHash_Deterministic(t *testing.T) {
	a := querystring.Hash("#and(#term[a:*](cat),#term[a:*](dog))")
	b := querystring.Hash("#and(#term[a:*](cat),#term[a:*](dog))")
	if a != b {
		t.Errorf("Hash() not deterministic: %q != %q", a, b)
	}
}

func TestHash_DistinguishesInputs(t *testing.T) {
	a := querystring.Hash("#term[a:*](cat)")
	b := querystring.Hash("#term[a:*](dog)")
	if a == b {
		t.Error("expected distinct canonical strings to hash differently")
	}
}

func TestHash_FixedWidth(t *testing.T) {
	got := querystring.Hash("")
	if len(got) != 32 {
		t.Errorf("len(Hash(\"\")) = %d, want 32 (16 bytes hex-encoded)", len(got))
	}
}
