// Package config holds the fixed parameters shared by every component of the
// vapor-token system. These values bind the on-chain accumulator layout, the
// condense circuit's public-input layout, and the off-chain witness builder
// together; changing any of them requires recompiling the circuit and
// re-running the trusted setup.
package config

const (
	// ElementSize is the byte width of each little-endian chunk used when
	// packing a 32-byte value into BN254 scalar-field elements (§4.1).
	ElementSize = 31

	// TreeHeight is the fixed height of the Poseidon Merkle accumulator
	// (§3: "height: fixed (26)").
	TreeHeight = 26

	// MaxLeaves is the maximum number of transfers a single mint's
	// accumulator can hold: 2^TreeHeight.
	MaxLeaves = 1 << TreeHeight

	// RootHistorySize (R) is the size of the recent-root ring buffer that
	// condense proofs may reference (§3, §4.3).
	RootHistorySize = 100
)
