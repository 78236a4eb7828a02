// Package accumulator implements the on-chain append-only Poseidon Merkle
// accumulator (component C3, spec §4.3): a fixed-height tree maintained as a
// rightmost-path frontier plus a bounded ring of recent roots, the same
// layout as anchor's zero-copy MerkleTreeAccount in the host program this
// system targets.
package accumulator

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/vaporlabs/vapor-tokens/config"
	"github.com/vaporlabs/vapor-tokens/pkg/field"
	"github.com/vaporlabs/vapor-tokens/pkg/poseidon"
)

// Leaf computes the transfer-leaf hash L = Poseidon(pack(to)[0],
// pack(to)[1], be_bytes(amount)), the single leaf-hash formula shared by the
// transfer hook (appending) and the wallet's event replay (reconstructing).
func Leaf(to [32]byte, amount uint64) *big.Int {
	lo, hi := field.Pack2(to)

	var amountBytes [32]byte
	binary.BigEndian.PutUint64(amountBytes[24:], amount)
	amountField := new(big.Int).SetBytes(amountBytes[:])

	return poseidon.Hash3(lo, hi, amountField)
}

// zeroHashes[i] is the hash of an all-zero subtree of depth i, precomputed
// once at package init since every tree on this curve shares the same
// zero-leaf value (the big-integer zero).
var zeroHashes [config.TreeHeight + 1]*big.Int

func init() {
	zh := poseidon.PrecomputeZeroHashes(config.TreeHeight, big.NewInt(0))
	copy(zeroHashes[:], zh)
}

// Tree mirrors MerkleTreeAccount: the frontier subtrees, the current root,
// and a ring buffer of the last RootHistorySize roots.
type Tree struct {
	NextIndex  uint64
	Subtrees   [config.TreeHeight]*big.Int
	Root       *big.Int
	RootIndex  uint64
	RootHistory [config.RootHistorySize]*big.Int
}

// New returns a freshly initialized, empty tree: root = zeroHashes[height],
// subtrees seeded with the zero hash at each level, root_history[0] set.
func New() *Tree {
	t := &Tree{
		Root: new(big.Int).Set(zeroHashes[config.TreeHeight]),
	}
	for i := 0; i < config.TreeHeight; i++ {
		t.Subtrees[i] = new(big.Int).Set(zeroHashes[i])
	}
	t.RootHistory[0] = new(big.Int).Set(t.Root)
	return t
}

// ErrTreeFull is returned by Append once 2^height leaves have been appended.
var ErrTreeFull = fmt.Errorf("accumulator: tree full")

// Append inserts leaf at NextIndex, recomputes the frontier and root, and
// returns the sibling path used (bottom level first), mirroring the
// on-chain append instruction exactly.
func (t *Tree) Append(leaf *big.Int) ([config.TreeHeight]*big.Int, error) {
	var proof [config.TreeHeight]*big.Int

	if t.NextIndex >= config.MaxLeaves {
		return proof, ErrTreeFull
	}

	currentIndex := t.NextIndex
	currentHash := new(big.Int).Set(leaf)

	for i := 0; i < config.TreeHeight; i++ {
		var left, right *big.Int
		if currentIndex%2 == 0 {
			left = currentHash
			right = zeroHashes[i]
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
	t.RootIndex = (t.RootIndex + 1) % config.RootHistorySize
	t.RootHistory[t.RootIndex] = new(big.Int).Set(currentHash)

	return proof, nil
}

// IsKnownRoot reports whether root appears anywhere in the recent-root ring,
// scanning backward from the current root_index for up to one full
// revolution. The all-zero root is never considered known.
func (t *Tree) IsKnownRoot(root *big.Int) bool {
	if root.Sign() == 0 {
		return false
	}

	i := t.RootIndex
	for {
		if t.RootHistory[i] != nil && t.RootHistory[i].Cmp(root) == 0 {
			return true
		}
		if i == 0 {
			i = config.RootHistorySize - 1
		} else {
			i--
		}
		if i == t.RootIndex {
			break
		}
	}

	return false
}

// ZeroHash returns the precomputed empty-subtree hash at depth i
// (0 <= i <= TreeHeight), exposed so off-chain tree mirrors (pkg/localtree)
// and the condense circuit's witness builder share the identical constants.
func ZeroHash(i int) *big.Int {
	return new(big.Int).Set(zeroHashes[i])
}
