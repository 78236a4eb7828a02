// Package witness assembles the public and private inputs for a condense
// proof (component C6, spec §4.6) and serializes them to the prover's TOML
// dialect.
package witness

import (
	"math/big"

	"github.com/pelletier/go-toml/v2"

	"github.com/vaporlabs/vapor-tokens/config"
	"github.com/vaporlabs/vapor-tokens/pkg/field"
)

// CondenserWitness mirrors the Rust CondenserWitness<HEIGHT>: the full set
// of public and private inputs the prover consumes to produce a condense
// proof. Field elements are stringified as decimal integers (TOML has no
// native 254-bit integer type); byte arrays are arrays of decimal strings
// so the prover's own parser never needs to guess a numeric width.
type CondenserWitness struct {
	Recipient          [2]string    `toml:"recipient"`
	Amount             string       `toml:"amount"`
	MerkleRoot         string       `toml:"merkle_root"`
	VaporAddr          [32]string   `toml:"vapor_addr"`
	MerkleProof        [config.TreeHeight]string `toml:"merkle_proof"`
	MerkleProofIndices [config.TreeHeight]string `toml:"merkle_proof_indices"`
	Secret             string       `toml:"secret"`
}

// Build packs recipient into its two field chunks and assembles the witness
// struct from already-computed amount/root/proof/secret values.
func Build(
	recipient [32]byte,
	amount uint64,
	root *big.Int,
	vaporAddr [32]byte,
	proof [config.TreeHeight]*big.Int,
	indices [config.TreeHeight]uint8,
	secret *big.Int,
) CondenserWitness {
	lo, hi := field.Pack2(recipient)

	var w CondenserWitness
	w.Recipient = [2]string{lo.String(), hi.String()}
	w.Amount = new(big.Int).SetUint64(amount).String()
	w.MerkleRoot = new(big.Int).Set(root).String()
	for i, b := range vaporAddr {
		w.VaporAddr[i] = new(big.Int).SetUint64(uint64(b)).String()
	}
	for i, p := range proof {
		w.MerkleProof[i] = new(big.Int).Set(p).String()
	}
	for i, idx := range indices {
		w.MerkleProofIndices[i] = new(big.Int).SetUint64(uint64(idx)).String()
	}
	w.Secret = new(big.Int).Set(secret).String()

	return w
}

// ToTOML renders the witness via go-toml/v2, the same TOML encoder used by
// the rest of the off-chain tooling.
func (w CondenserWitness) ToTOML() ([]byte, error) {
	return toml.Marshal(w)
}
