package edwards

import (
	"math/rand"
	"testing"
)

func TestGenerateProducesPointOnCurveInSubgroup(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	var recipient [32]byte
	for i := range recipient {
		recipient[i] = byte(i + 1)
	}

	addr, secret, err := Generate(recipient, rng)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if secret == nil || secret.Sign() == 0 {
		t.Fatalf("expected non-nil, non-zero secret, got %v", secret)
	}

	point, err := Decompress(addr)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if point.X == nil || point.Y == nil {
		t.Fatal("decompressed point has nil coordinates")
	}

	var p affinePoint
	p.x.Set(elementFromBigInt(point.X))
	p.y.Set(elementFromBigInt(point.Y))
	if !isIdentity(scalarMult(p, groupOrder)) {
		t.Fatal("generated point is not in the prime-order subgroup")
	}
}

func TestGenerateIsDeterministicForFixedRandomness(t *testing.T) {
	var recipient [32]byte
	for i := range recipient {
		recipient[i] = byte(2 * i)
	}

	addr1, secret1, err := Generate(recipient, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	addr2, secret2, err := Generate(recipient, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if addr1 != addr2 {
		t.Fatal("same seed produced different vapor addresses")
	}
	if secret1.Cmp(secret2) != 0 {
		t.Fatal("same seed produced different secrets")
	}
}

func TestGenerateDifferentRecipientsDifferentAddresses(t *testing.T) {
	var r1, r2 [32]byte
	for i := range r1 {
		r1[i] = byte(i)
		r2[i] = byte(255 - i)
	}

	addr1, _, err := Generate(r1, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	addr2, _, err := Generate(r2, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if addr1 == addr2 {
		t.Fatal("distinct recipients produced the same vapor address")
	}
}

func TestDecompressRejectsGarbage(t *testing.T) {
	var addr Address
	for i := range addr {
		addr[i] = 0xAB
	}
	if _, err := Decompress(addr); err == nil {
		t.Fatal("expected error decompressing an arbitrary non-curve encoding")
	}
}

func TestCompressDecompressRoundTrips(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	var recipient [32]byte
	for i := range recipient {
		recipient[i] = byte(i * 3)
	}

	addr, _, err := Generate(recipient, rng)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	point, err := Decompress(addr)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}

	var p affinePoint
	p.x.Set(elementFromBigInt(point.X))
	p.y.Set(elementFromBigInt(point.Y))

	if compress(p) != addr {
		t.Fatal("compress(decompress(addr)) != addr")
	}
}

func TestIdentityCheckRejectsNonIdentityPoint(t *testing.T) {
	var recipient [32]byte
	recipient[0] = 1

	addr, _, err := Generate(recipient, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	point, err := Decompress(addr)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}

	var p affinePoint
	p.x.Set(elementFromBigInt(point.X))
	p.y.Set(elementFromBigInt(point.Y))

	if isIdentity(p) {
		t.Fatal("a freshly generated address should not decompress to the identity")
	}
	if !isIdentity(identity()) {
		t.Fatal("identity() should report itself as the identity")
	}
}
