// Package localtree implements the off-chain mirror of the Merkle
// accumulator (the C7 half of C3, spec §4.3 "Off-chain variant"): a tree
// that can be rebuilt from the replayed transfer-event log, plus a
// changelog that lets a stored inclusion proof for an old leaf be patched
// forward as new leaves arrive, instead of replaying the whole tree for
// every witness request.
package localtree

import (
	"fmt"
	"math/big"

	"github.com/vaporlabs/vapor-tokens/config"
	"github.com/vaporlabs/vapor-tokens/pkg/accumulator"
	"github.com/vaporlabs/vapor-tokens/pkg/poseidon"
)

// levelEntry records the node this append touched at one level of the tree:
// its index within that level, and the node's hash after the append.
type levelEntry struct {
	Index uint64
	Hash  *big.Int
}

// changelogEntry is the per-level record produced by a single append; it is
// exactly the information needed to tell whether a later append touched the
// sibling of some earlier leaf's stored proof.
type changelogEntry struct {
	Levels [config.TreeHeight]levelEntry
}

// Tree is the off-chain mirror: same frontier/root invariants as
// pkg/accumulator.Tree, plus the changelog needed to patch proofs forward.
type Tree struct {
	NextIndex uint64
	Subtrees  [config.TreeHeight]*big.Int
	Root      *big.Int

	changelog []changelogEntry
}

// New returns an empty tree with the same zero-initialized state as a fresh
// on-chain accumulator.
func New() *Tree {
	t := &Tree{
		Root: accumulator.ZeroHash(config.TreeHeight),
	}
	for i := 0; i < config.TreeHeight; i++ {
		t.Subtrees[i] = accumulator.ZeroHash(i)
	}
	return t
}

// ErrTreeFull mirrors pkg/accumulator.ErrTreeFull for the off-chain side.
var ErrTreeFull = fmt.Errorf("localtree: tree full")

// Append inserts leaf without recording a usable proof; used while replaying
// history before the index of interest.
func (t *Tree) Append(leaf *big.Int) error {
	_, _, err := t.appendInternal(leaf)
	return err
}

// AppendWithProof inserts leaf and returns the sibling vector for its own
// inclusion proof (bottom level first) along with the changelog index to
// pass to UpdateProofFromChangelog when this leaf's proof later goes stale.
func (t *Tree) AppendWithProof(leaf *big.Int) (proof [config.TreeHeight]*big.Int, changelogIndex int, err error) {
	return t.appendInternal(leaf)
}

func (t *Tree) appendInternal(leaf *big.Int) (proof [config.TreeHeight]*big.Int, changelogIndex int, err error) {
	if t.NextIndex >= config.MaxLeaves {
		return proof, 0, ErrTreeFull
	}

	var entry changelogEntry

	currentIndex := t.NextIndex
	currentHash := new(big.Int).Set(leaf)

	for i := 0; i < config.TreeHeight; i++ {
		entry.Levels[i] = levelEntry{Index: currentIndex, Hash: new(big.Int).Set(currentHash)}

		var left, right *big.Int
		if currentIndex%2 == 0 {
			left = currentHash
			right = accumulator.ZeroHash(i)
			t.Subtrees[i] = new(big.Int).Set(currentHash)
			proof[i] = right
		} else {
			left = t.Subtrees[i]
			right = currentHash
			proof[i] = left
		}
		currentHash = poseidon.HashNodes(left, right)
		currentIndex /= 2
	}

	t.Root = currentHash
	t.NextIndex++
	t.changelog = append(t.changelog, entry)

	return proof, len(t.changelog) - 1, nil
}

// UpdateProofFromChangelog patches proof (the stored inclusion proof for the
// leaf at leafIdx) forward through every changelog entry recorded since
// prevChangelogIndex, and returns the changelog index the caller should use
// next time. At each level, a later append only invalidates proof[level]
// when it touched the sibling node at that level — i.e. when its node index
// equals leafIdx's sibling index at that level.
func (t *Tree) UpdateProofFromChangelog(prevChangelogIndex int, leafIdx uint64, proof *[config.TreeHeight]*big.Int) (newChangelogIndex int, err error) {
	if prevChangelogIndex < 0 || prevChangelogIndex >= len(t.changelog) {
		return 0, fmt.Errorf("localtree: invalid changelog index %d (have %d entries)", prevChangelogIndex, len(t.changelog))
	}

	for ci := prevChangelogIndex + 1; ci < len(t.changelog); ci++ {
		entry := t.changelog[ci]
		index := leafIdx
		for level := 0; level < config.TreeHeight; level++ {
			siblingIndex := index ^ 1
			if entry.Levels[level].Index == siblingIndex {
				proof[level] = new(big.Int).Set(entry.Levels[level].Hash)
			}
			index /= 2
		}
	}

	return len(t.changelog) - 1, nil
}

// ProofIndices returns the little-endian bit decomposition of leafIdx across
// the tree's height, the "direction" array a Merkle-proof gadget consumes:
// bit i is 1 when leafIdx's ancestor at level i is a right child (so the
// proof's level-i sibling is the left child) and 0 when it is a left child.
func ProofIndices(leafIdx uint64) [config.TreeHeight]uint8 {
	var out [config.TreeHeight]uint8
	for i := 0; i < config.TreeHeight; i++ {
		out[i] = uint8((leafIdx >> uint(i)) & 1)
	}
	return out
}

// VerifyProof recomputes the root from leaf, its sibling proof, and the
// index's directions, returning true iff it matches root. Used both as a
// sanity check after AppendWithProof/UpdateProofFromChangelog and by the
// witness builder before handing a proof to the prover.
func VerifyProof(leaf *big.Int, proof [config.TreeHeight]*big.Int, leafIdx uint64, root *big.Int) bool {
	h := new(big.Int).Set(leaf)
	index := leafIdx
	for i := 0; i < config.TreeHeight; i++ {
		if index%2 == 0 {
			h = poseidon.HashNodes(h, proof[i])
		} else {
			h = poseidon.HashNodes(proof[i], h)
		}
		index /= 2
	}
	return h.Cmp(root) == 0
}
