package prover

import (
	"bytes"
	"math/big"
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	chaincondense "github.com/vaporlabs/vapor-tokens/chain/condense"
	"github.com/vaporlabs/vapor-tokens/circuits/condense"
	"github.com/vaporlabs/vapor-tokens/config"
	"github.com/vaporlabs/vapor-tokens/pkg/accumulator"
	"github.com/vaporlabs/vapor-tokens/pkg/edwards"
	"github.com/vaporlabs/vapor-tokens/pkg/field"
	"github.com/vaporlabs/vapor-tokens/pkg/localtree"
	"github.com/vaporlabs/vapor-tokens/pkg/setup"
)

// buildProvenCondense compiles the real condense circuit, runs a full
// groth16 setup/prove cycle for one valid transfer, and returns the
// verifying key, the serialized proof, and the matching PublicWitness the
// on-chain side would have deserialized from public_witness_bytes.
func buildProvenCondense(t *testing.T, amount uint64) (groth16.VerifyingKey, []byte, chaincondense.PublicWitness) {
	t.Helper()

	var recipient [32]byte
	for i := range recipient {
		recipient[i] = byte(i + 1)
	}

	addr, secret, err := edwards.Generate(recipient, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatalf("edwards.Generate: %v", err)
	}

	tree := localtree.New()
	leaf := accumulator.Leaf(addr, amount)
	proofPath, _, err := tree.AppendWithProof(leaf)
	if err != nil {
		t.Fatalf("AppendWithProof: %v", err)
	}

	lo, hi := field.Pack2(recipient)
	addrLo, addrHi := field.Pack2(addr)
	directions := localtree.ProofIndices(0)

	assignment := &condense.Circuit{
		RecipientLo: lo,
		RecipientHi: hi,
		Amount:      new(big.Int).SetUint64(amount),
		Root:        tree.Root,
		Secret:      secret,
		VaporAddrLo: addrLo,
		VaporAddrHi: addrHi,
	}
	for i := 0; i < config.TreeHeight; i++ {
		assignment.MerkleProof[i] = proofPath[i]
		assignment.MerkleDirection[i] = new(big.Int).SetUint64(uint64(directions[i]))
	}

	ccs, err := setup.CompileCircuit(&condense.Circuit{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("build witness: %v", err)
	}
	proof, err := groth16.Prove(ccs, pk, fullWitness)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	var proofBuf bytes.Buffer
	if _, err := proof.WriteTo(&proofBuf); err != nil {
		t.Fatalf("serialize proof: %v", err)
	}

	public := chaincondense.PublicWitness{
		RecipientLo: lo,
		RecipientHi: hi,
		Amount:      new(big.Int).SetUint64(amount),
		Root:        tree.Root,
	}
	return vk, proofBuf.Bytes(), public
}

func TestCondenseVerifierAcceptsValidProof(t *testing.T) {
	vk, proofBytes, public := buildProvenCondense(t, 1000)

	verifier := &CondenseVerifier{Inner: &Groth16Verifier{VerifyingKey: vk}}
	if err := verifier.Verify(proofBytes, public); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestCondenseVerifierRejectsTamperedPublicInput(t *testing.T) {
	vk, proofBytes, public := buildProvenCondense(t, 1000)

	tampered := public
	tampered.Amount = new(big.Int).SetUint64(999)

	verifier := &CondenseVerifier{Inner: &Groth16Verifier{VerifyingKey: vk}}
	if err := verifier.Verify(proofBytes, tampered); err == nil {
		t.Fatal("expected verification to fail against a tampered amount")
	}
}
