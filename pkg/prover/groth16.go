package prover

import (
	"bytes"
	"context"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	gnarkwitness "github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"

	"github.com/cockroachdb/errors"

	"github.com/vaporlabs/vapor-tokens/pkg/setup"
	"github.com/vaporlabs/vapor-tokens/pkg/witness"
)

// Groth16InProcessProver runs the condense circuit's proving key directly
// in-process, bypassing the subprocess boundary entirely. It exists for
// tests and for any deployment that embeds the prover rather than shelling
// out to it; SubprocessProver remains the one that matches the external
// prover's documented interface.
type Groth16InProcessProver struct {
	CircuitSkeleton frontend.Circuit
	ProvingKey      groth16.ProvingKey
	WitnessToCircuit func(witness.CondenserWitness) (frontend.Circuit, error)
}

var _ Prover = (*Groth16InProcessProver)(nil)

// Prove compiles the witness into a circuit assignment, builds a full
// witness, and produces a groth16 proof plus its public-witness bytes.
func (p *Groth16InProcessProver) Prove(ctx context.Context, w witness.CondenserWitness) ([]byte, []byte, error) {
	assignment, err := p.WitnessToCircuit(w)
	if err != nil {
		return nil, nil, errors.Wrap(err, "prover: build circuit assignment")
	}

	ccs, err := setup.CompileCircuit(p.CircuitSkeleton)
	if err != nil {
		return nil, nil, errors.Wrap(err, "prover: compile circuit")
	}

	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, errors.Wrap(err, "prover: build witness")
	}

	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, nil, errors.Wrap(err, "prover: extract public witness")
	}

	proof, err := groth16.Prove(ccs, p.ProvingKey, fullWitness)
	if err != nil {
		return nil, nil, errors.Wrap(err, "prover: groth16 prove")
	}

	var proofBuf, witnessBuf bytes.Buffer
	if _, err := proof.WriteTo(&proofBuf); err != nil {
		return nil, nil, errors.Wrap(err, "prover: serialize proof")
	}
	if _, err := publicWitness.WriteTo(&witnessBuf); err != nil {
		return nil, nil, errors.Wrap(err, "prover: serialize public witness")
	}

	return proofBuf.Bytes(), witnessBuf.Bytes(), nil
}

// Groth16Verifier verifies proofs against a fixed, compiled-in verifying
// key, matching spec §9's "on-chain verifier's verifying key is a
// compile-time constant artifact."
type Groth16Verifier struct {
	VerifyingKey groth16.VerifyingKey
}

var _ Verifier = (*Groth16Verifier)(nil)

// Verify decodes proofBytes/publicWitnessBytes and checks the proof.
func (v *Groth16Verifier) Verify(proofBytes, publicWitnessBytes []byte) error {
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return errors.Wrap(err, "prover: decode proof")
	}

	publicWitness, err := gnarkwitness.New(ecc.BN254.ScalarField())
	if err != nil {
		return errors.Wrap(err, "prover: allocate public witness")
	}
	if _, err := publicWitness.ReadFrom(bytes.NewReader(publicWitnessBytes)); err != nil {
		return errors.Wrap(err, "prover: decode public witness")
	}

	if err := groth16.Verify(proof, v.VerifyingKey, publicWitness); err != nil {
		return errors.Wrap(err, "prover: groth16 verify")
	}
	return nil
}
