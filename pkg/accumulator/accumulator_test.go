package accumulator

import (
	"math/big"
	"testing"

	"github.com/vaporlabs/vapor-tokens/config"
	"github.com/vaporlabs/vapor-tokens/pkg/poseidon"
)

func TestNewTreeRootMatchesZeroHash(t *testing.T) {
	tr := New()
	if tr.Root.Cmp(ZeroHash(config.TreeHeight)) != 0 {
		t.Fatalf("fresh tree root = %s, want zero-hash at height %d", tr.Root, config.TreeHeight)
	}
	if tr.NextIndex != 0 {
		t.Fatalf("fresh tree next_index = %d, want 0", tr.NextIndex)
	}
}

func TestAppendAdvancesIndexAndRoot(t *testing.T) {
	tr := New()
	rootBefore := new(big.Int).Set(tr.Root)

	leaf := Leaf([32]byte{1, 2, 3}, 1000)
	if _, err := tr.Append(leaf); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if tr.NextIndex != 1 {
		t.Fatalf("next_index = %d, want 1", tr.NextIndex)
	}
	if tr.Root.Cmp(rootBefore) == 0 {
		t.Fatal("root did not change after append")
	}
	if !tr.IsKnownRoot(tr.Root) {
		t.Fatal("freshly produced root must be known")
	}
}

func TestAppendMatchesManualRootComputation(t *testing.T) {
	tr := New()
	leaf := Leaf([32]byte{9}, 42)
	if _, err := tr.Append(leaf); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Manually fold the single real leaf against zero hashes at every level.
	h := new(big.Int).Set(leaf)
	for i := 0; i < config.TreeHeight; i++ {
		h = poseidon.HashNodes(h, ZeroHash(i))
	}

	if tr.Root.Cmp(h) != 0 {
		t.Fatalf("root = %s, want %s", tr.Root, h)
	}
}

func TestIsKnownRootFalseForZero(t *testing.T) {
	tr := New()
	if tr.IsKnownRoot(big.NewInt(0)) {
		t.Fatal("all-zero root must never be considered known")
	}
}

func TestIsKnownRootWindowExpires(t *testing.T) {
	tr := New()
	leaf := Leaf([32]byte{1}, 1)
	if _, err := tr.Append(leaf); err != nil {
		t.Fatalf("Append: %v", err)
	}
	firstRoot := new(big.Int).Set(tr.Root)

	for i := 0; i < config.RootHistorySize-1; i++ {
		if _, err := tr.Append(Leaf([32]byte{byte(i + 2)}, uint64(i))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if !tr.IsKnownRoot(firstRoot) {
		t.Fatal("root should still be known within the R-sized window")
	}

	if _, err := tr.Append(Leaf([32]byte{200}, 200)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if tr.IsKnownRoot(firstRoot) {
		t.Fatal("root should have rolled out of the history window")
	}
}

func TestAppendFailsWhenFull(t *testing.T) {
	tr := New()
	tr.NextIndex = config.MaxLeaves
	if _, err := tr.Append(Leaf([32]byte{1}, 1)); err != ErrTreeFull {
		t.Fatalf("expected ErrTreeFull, got %v", err)
	}
}

func TestLeafIsDeterministicAndDistinct(t *testing.T) {
	a := Leaf([32]byte{1, 2, 3}, 100)
	b := Leaf([32]byte{1, 2, 3}, 100)
	if a.Cmp(b) != 0 {
		t.Fatal("leaf hash must be deterministic")
	}

	c := Leaf([32]byte{1, 2, 3}, 101)
	if a.Cmp(c) == 0 {
		t.Fatal("distinct amounts must produce distinct leaves")
	}

	d := Leaf([32]byte{4, 5, 6}, 100)
	if a.Cmp(d) == 0 {
		t.Fatal("distinct recipients must produce distinct leaves")
	}
}
