package localtree

import (
	"math/big"
	"testing"

	"github.com/vaporlabs/vapor-tokens/config"
	"github.com/vaporlabs/vapor-tokens/pkg/accumulator"
	"github.com/vaporlabs/vapor-tokens/pkg/poseidon"
)

func TestAppendWithProofMatchesRootImmediately(t *testing.T) {
	tr := New()
	leaf := accumulator.Leaf([32]byte{1, 2, 3}, 1000)

	proof, _, err := tr.AppendWithProof(leaf)
	if err != nil {
		t.Fatalf("AppendWithProof: %v", err)
	}

	if !VerifyProof(leaf, proof, 0, tr.Root) {
		t.Fatal("freshly produced proof does not verify against the tree's own root")
	}
}

func TestUpdateProofFromChangelogTracksSubsequentAppends(t *testing.T) {
	tr := New()

	leaf0 := accumulator.Leaf([32]byte{0}, 100)
	proof, clIdx, err := tr.AppendWithProof(leaf0)
	if err != nil {
		t.Fatalf("AppendWithProof: %v", err)
	}

	for i := 1; i < 20; i++ {
		leaf := accumulator.Leaf([32]byte{byte(i)}, uint64(i*100))
		if err := tr.Append(leaf); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
		clIdx, err = tr.UpdateProofFromChangelog(clIdx, 0, &proof)
		if err != nil {
			t.Fatalf("UpdateProofFromChangelog at step %d: %v", i, err)
		}
	}

	if !VerifyProof(leaf0, proof, 0, tr.Root) {
		t.Fatal("patched proof does not verify against the current root")
	}
}

func TestUpdateProofFromChangelogMatchesFullRebuild(t *testing.T) {
	leaves := make([]*big.Int, 30)
	for i := range leaves {
		leaves[i] = accumulator.Leaf([32]byte{byte(i + 1)}, uint64(i+1))
	}

	target := 10

	// Build via incremental changelog patching.
	patched := New()
	var proof [config.TreeHeight]*big.Int
	var clIdx int
	for i, leaf := range leaves {
		if i < target {
			if err := patched.Append(leaf); err != nil {
				t.Fatalf("Append: %v", err)
			}
			continue
		}
		if i == target {
			var err error
			proof, clIdx, err = patched.AppendWithProof(leaf)
			if err != nil {
				t.Fatalf("AppendWithProof: %v", err)
			}
			continue
		}
		if err := patched.Append(leaf); err != nil {
			t.Fatalf("Append: %v", err)
		}
		var err error
		clIdx, err = patched.UpdateProofFromChangelog(clIdx, uint64(target), &proof)
		if err != nil {
			t.Fatalf("UpdateProofFromChangelog: %v", err)
		}
	}

	// Build the ground-truth root and sibling proof independently, by
	// folding the full (sparse) level structure bottom-up from the final
	// leaf set, rather than reusing either tree's incremental bookkeeping.
	rebuiltRoot, rebuiltProof := bruteForceRootAndProof(leaves, uint64(target))

	if !VerifyProof(leaves[target], proof, uint64(target), patched.Root) {
		t.Fatal("changelog-patched proof does not verify")
	}
	if patched.Root.Cmp(rebuiltRoot) != 0 {
		t.Fatal("local tree root diverged from independently computed root")
	}
	for i := 0; i < config.TreeHeight; i++ {
		if proof[i].Cmp(rebuiltProof[i]) != 0 {
			t.Fatalf("level %d: patched proof = %s, brute-force proof = %s", i, proof[i], rebuiltProof[i])
		}
	}
}

// bruteForceRootAndProof folds leaves bottom-up level by level, using a
// sparse map per level (unset indices default to the zero-subtree hash),
// and returns the final root plus the sibling proof for leafIdx. This is an
// independent reimplementation used purely to cross-check the incremental
// append/changelog algorithm under test.
func bruteForceRootAndProof(leaves []*big.Int, leafIdx uint64) (*big.Int, [config.TreeHeight]*big.Int) {
	var proof [config.TreeHeight]*big.Int

	level := make(map[uint64]*big.Int, len(leaves))
	for i, l := range leaves {
		level[uint64(i)] = l
	}

	index := leafIdx
	for depth := 0; depth < config.TreeHeight; depth++ {
		siblingIndex := index ^ 1
		if v, ok := level[siblingIndex]; ok {
			proof[depth] = v
		} else {
			proof[depth] = accumulator.ZeroHash(depth)
		}

		next := make(map[uint64]*big.Int, len(level)/2+1)
		seen := make(map[uint64]bool)
		for idx := range level {
			parent := idx / 2
			if seen[parent] {
				continue
			}
			seen[parent] = true

			left, lok := level[parent*2]
			right, rok := level[parent*2+1]
			if !lok {
				left = accumulator.ZeroHash(depth)
			}
			if !rok {
				right = accumulator.ZeroHash(depth)
			}
			next[parent] = poseidon.HashNodes(left, right)
		}
		level = next
		index /= 2
	}

	return level[0], proof
}

func TestProofIndicesLittleEndianBits(t *testing.T) {
	indices := ProofIndices(5) // 5 = 0b101
	if indices[0] != 1 || indices[1] != 0 || indices[2] != 1 {
		t.Fatalf("unexpected direction bits for 5: %v", indices[:3])
	}
}
