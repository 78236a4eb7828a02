// Package condense simulates the condense instruction (component C5, spec
// §4.5): the on-chain verification that mints real tokens to a true
// recipient against a proof of a prior vapor-address transfer.
package condense

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/rs/zerolog/log"

	"github.com/vaporlabs/vapor-tokens/pkg/accumulator"
	"github.com/vaporlabs/vapor-tokens/pkg/field"
)

// Error kinds from spec §7, returned as typed sentinels rather than wrapped
// errors: the host runtime only inspects the error code, exactly as
// anchor_lang's #[error_code] enums do in the source this was distilled
// from.
var (
	ErrInvalidProof           = errors.New("condense: invalid proof")
	ErrRecipientMismatch      = errors.New("condense: recipient mismatch")
	ErrMerkleRootNotInHistory = errors.New("condense: merkle root not in recent history")
	ErrBadAmount              = errors.New("condense: amount does not exceed prior withdrawn total")
)

// PublicWitness is the deserialized fixed four-field public-witness layout
// (spec §3, §6): packed recipient (two chunks), amount, root.
type PublicWitness struct {
	RecipientLo *big.Int
	RecipientHi *big.Int
	Amount      *big.Int
	Root        *big.Int
}

// publicWitnessFieldSize is the encoded width of each of the four public
// witness field elements: packed recipient lo/hi, amount, root, each a
// 32-byte big-endian integer (spec §3, §6).
const publicWitnessFieldSize = 32

// DecodePublicWitness parses the condense instruction's public_witness_bytes
// argument (spec §4.5 step 1) into its four field elements. Any length other
// than 4*32 bytes is malformed.
func DecodePublicWitness(raw []byte) (PublicWitness, error) {
	if len(raw) != 4*publicWitnessFieldSize {
		return PublicWitness{}, ErrInvalidProof
	}
	field := func(i int) *big.Int {
		start := i * publicWitnessFieldSize
		return new(big.Int).SetBytes(raw[start : start+publicWitnessFieldSize])
	}
	return PublicWitness{
		RecipientLo: field(0),
		RecipientHi: field(1),
		Amount:      field(2),
		Root:        field(3),
	}, nil
}

// Verifier abstracts the proof-system SDK (spec §9's "proof-system
// abstraction" design note): verify(proof_bytes, public_inputs) -> Result.
type Verifier interface {
	Verify(proofBytes []byte, public PublicWitness) error
}

// Mint abstracts the CPI into the token program's MintTo, signed by the
// mint-authority PDA.
type Mint interface {
	MintTo(recipientATA [32]byte, amount uint64) error
}

// WithdrawnCounter is the per-(mint, recipient) monotone withdrawal counter
// PDA state (spec §3).
type WithdrawnCounter struct {
	TotalWithdrawn uint64
}

// Condense runs the full condense instruction exactly as exposed on chain
// (spec §4.5, §6): condense(recipient, proof_bytes, public_witness_bytes).
// It deserializes public_witness_bytes (step 1 — malformed input fails with
// ErrInvalidProof) and then delegates to Execute for the rest of the steps.
func Condense(
	verifier Verifier,
	tree *accumulator.Tree,
	counter *WithdrawnCounter,
	mint Mint,
	recipient [32]byte,
	recipientATA [32]byte,
	proofBytes []byte,
	publicWitnessBytes []byte,
) error {
	public, err := DecodePublicWitness(publicWitnessBytes)
	if err != nil {
		return err
	}
	return Execute(verifier, tree, counter, mint, recipient, recipientATA, proofBytes, public)
}

// Execute runs the condense instruction body. tree is the mint's
// accumulator (read-only here); counter is the caller-loaded-or-created
// withdrawn[mint, recipient] account, mutated in place on success.
func Execute(
	verifier Verifier,
	tree *accumulator.Tree,
	counter *WithdrawnCounter,
	mint Mint,
	recipient [32]byte,
	recipientATA [32]byte,
	proofBytes []byte,
	public PublicWitness,
) error {
	recipientFromProof, err := field.Unpack32(public.RecipientLo, public.RecipientHi)
	if err != nil {
		return ErrInvalidProof
	}
	if recipientFromProof != recipient {
		return ErrRecipientMismatch
	}

	if err := verifier.Verify(proofBytes, public); err != nil {
		return ErrInvalidProof
	}

	if !tree.IsKnownRoot(public.Root) {
		return ErrMerkleRootNotInHistory
	}

	amount := public.Amount.Uint64()
	if amount <= counter.TotalWithdrawn {
		return ErrBadAmount
	}
	delta := amount - counter.TotalWithdrawn

	counter.TotalWithdrawn = amount

	if err := mint.MintTo(recipientATA, delta); err != nil {
		return err
	}

	log.With().Str("component", "condense").Logger().Info().
		Hex("recipient", recipient[:]).Uint64("amount", amount).Uint64("minted", delta).
		Msg("condense accepted")

	return nil
}

// AmountBigEndian32 encodes amount as the 32-byte big-endian field used by
// public witness field [2] (spec §3, §4.6): the u64 occupies the low 8
// bytes.
func AmountBigEndian32(amount uint64) [32]byte {
	var out [32]byte
	binary.BigEndian.PutUint64(out[24:], amount)
	return out
}
