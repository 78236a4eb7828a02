package condense

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"

	"github.com/vaporlabs/vapor-tokens/config"
)

// merkleProof proves that LeafValue is included at the position encoded by
// Directions in the tree rooted at RootHash. Unlike a variable-depth proof
// gadget, this tree has a fixed height and every level is always hashed — a
// zero sibling at a shallow level is a legitimate empty-subtree hash, not an
// end-of-path marker.
type merkleProof struct {
	RootHash   frontend.Variable
	LeafValue  frontend.Variable
	ProofPath  [config.TreeHeight]frontend.Variable
	Directions [config.TreeHeight]frontend.Variable // 0 = leaf is left child, 1 = leaf is right child
}

// verify reconstructs the root from LeafValue and ProofPath following
// Directions, and asserts it matches RootHash. Mirrors
// pkg/localtree.VerifyProof's direction convention exactly, so a proof
// built by pkg/localtree plugs directly into this gadget.
func (m *merkleProof) verify(api frontend.API) error {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return err
	}
	hasher := hash.NewMerkleDamgardHasher(api, p, 0)

	current := m.LeafValue
	for i := 0; i < config.TreeHeight; i++ {
		sibling := m.ProofPath[i]
		direction := m.Directions[i]

		left := api.Select(direction, sibling, current)
		right := api.Select(direction, current, sibling)

		hasher.Reset()
		hasher.Write(left, right)
		current = hasher.Sum()
	}

	api.AssertIsEqual(current, m.RootHash)
	return nil
}
