package prover

import (
	"bytes"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"

	"github.com/cockroachdb/errors"

	chaincondense "github.com/vaporlabs/vapor-tokens/chain/condense"
	"github.com/vaporlabs/vapor-tokens/circuits/condense"
)

// CondenseVerifier adapts a Groth16Verifier to chain/condense's Verifier
// interface (spec §9's on-chain abstraction, verify(proof_bytes,
// public_inputs) -> Result), closing the gap between the condense
// instruction's deserialized PublicWitness and the gnark-native serialized
// witness bytes the proof-system SDK actually verifies against.
type CondenseVerifier struct {
	Inner *Groth16Verifier
}

var _ chaincondense.Verifier = (*CondenseVerifier)(nil)

// Verify rebuilds the condense circuit's public-only witness from the
// already-deserialized PublicWitness fields and forwards proofBytes plus the
// re-serialized witness to the underlying groth16 verifier.
func (v *CondenseVerifier) Verify(proofBytes []byte, public chaincondense.PublicWitness) error {
	assignment := &condense.Circuit{
		RecipientLo: public.RecipientLo,
		RecipientHi: public.RecipientHi,
		Amount:      public.Amount,
		Root:        public.Root,
		Secret:      0,
	}
	for i := range assignment.MerkleProof {
		assignment.MerkleProof[i] = 0
		assignment.MerkleDirection[i] = 0
	}
	assignment.VaporAddrLo = 0
	assignment.VaporAddrHi = 0

	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return errors.Wrap(err, "prover: build public witness")
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return errors.Wrap(err, "prover: serialize public witness")
	}

	return v.Inner.Verify(proofBytes, buf.Bytes())
}
