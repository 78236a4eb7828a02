// Package poseidon gathers the off-chain Poseidon2 hashing helpers shared by
// the accumulator, the vapor-address derivation, and the witness builder.
// The in-circuit equivalents live next to the circuit that uses them
// (circuits/condense) since gnark gadgets need an api.API, but every helper
// here is built to produce bit-for-bit the same digest as its gadget
// counterpart so that proofs verify against roots computed by this package.
package poseidon

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// HashNodes hashes two child values into their parent, the Merkle tree's
// internal node function: parent = Poseidon2(left, right).
func HashNodes(left, right *big.Int) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()

	var lFr, rFr fr.Element
	lFr.SetBigInt(left)
	rFr.SetBigInt(right)

	lBytes := lFr.Bytes()
	rBytes := rFr.Bytes()
	h.Write(lBytes[:])
	h.Write(rBytes[:])

	return new(big.Int).SetBytes(h.Sum(nil))
}

// Hash2 is an alias for HashNodes, named for hashing two arbitrary field
// elements rather than Merkle children. Nothing in this module calls it.
func Hash2(a, b *big.Int) *big.Int {
	return HashNodes(a, b)
}

// Hash3 hashes three field elements in order: Poseidon2(a, b, c). Used by
// vapor-address generation, which derives the curve point's x-coordinate
// from the packed recipient and a random field element (spec §3).
func Hash3(a, b, c *big.Int) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()

	for _, v := range []*big.Int{a, b, c} {
		var e fr.Element
		e.SetBigInt(v)
		eb := e.Bytes()
		h.Write(eb[:])
	}

	return new(big.Int).SetBytes(h.Sum(nil))
}

// PrecomputeZeroHashes returns the hash of an all-zero subtree at every
// depth from 0 (a single zero leaf) to depth (the full tree), used both to
// seed a fresh on-chain accumulator's subtrees and to build the off-chain
// mirror's empty-subtree fast path.
func PrecomputeZeroHashes(depth int, zeroLeaf *big.Int) []*big.Int {
	zh := make([]*big.Int, depth+1)
	zh[0] = new(big.Int).Set(zeroLeaf)
	for i := 1; i <= depth; i++ {
		zh[i] = HashNodes(zh[i-1], zh[i-1])
	}
	return zh
}
