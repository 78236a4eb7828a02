// Package edwards generates vapor addresses: points on ed25519 (component
// C2, spec §4.2). The x coordinate is derived deterministically from the
// recipient and a random secret, then bit-identically reinterpreted as an
// element of ed25519's base field — safe because that field's modulus
// (2^255-19) exceeds BN254's scalar field, so the reinterpretation never
// wraps. The resulting point is compressed with the same encoding real
// ed25519 public keys use, so a vapor address is indistinguishable from any
// other account key on the host chain; nobody knows a discrete log for these
// points relative to any standard signature generator, because they are
// never derived via scalar multiplication of a base point at all.
package edwards

import (
	"crypto/rand"
	"fmt"
	"math/big"

	edwardsfield "filippo.io/edwards25519/field"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vaporlabs/vapor-tokens/pkg/field"
	"github.com/vaporlabs/vapor-tokens/pkg/poseidon"
)

// maxAttempts bounds the retry loop so a curve-parameter misconfiguration
// (which would make every attempt fail) is reported as an error instead of
// spinning forever. With correct parameters roughly one attempt in sixteen
// succeeds: about half of the x values admit a square root for y, and about
// one point in eight lies in the prime-order subgroup.
const maxAttempts = 10_000

// groupOrder (L) is ed25519's prime subgroup order, 2^252 +
// 27742317777372353535851937790883648493.
var groupOrder, _ = new(big.Int).SetString(
	"7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)

// aElement, dElement are the twisted-Edwards curve coefficients for
// ed25519 (a = -1, d = -121665/121666 mod p).
var (
	oneElement = elementFromInt64(1)
	aElement   = elementFromInt64(-1)
	dElement   = func() *edwardsfield.Element {
		num := elementFromInt64(-121665)
		den := elementFromInt64(121666)
		var inv edwardsfield.Element
		inv.Invert(den)
		var d edwardsfield.Element
		d.Multiply(num, &inv)
		return &d
	}()
)

// Address is the 32-byte standard ed25519 compressed encoding of a vapor
// address: y little-endian, with the sign of x folded into the top bit.
type Address [32]byte

// Point is an affine point on ed25519, exposed only for validating and
// inspecting a generated or decompressed address; ordinary callers only
// need the compressed Address.
type Point struct {
	X, Y *big.Int
}

// affinePoint is the internal representation used for curve arithmetic.
type affinePoint struct {
	x, y edwardsfield.Element
}

func identity() affinePoint {
	var p affinePoint
	p.x.Zero()
	p.y.One()
	return p
}

// addPoints implements the unified (complete) twisted-Edwards addition law
// for a = -1, valid for doubling (p1 == p2) as well as distinct points.
func addPoints(p1, p2 affinePoint) affinePoint {
	var x1y2, y1x2, y1y2, x1x2 edwardsfield.Element
	x1y2.Multiply(&p1.x, &p2.y)
	y1x2.Multiply(&p1.y, &p2.x)
	y1y2.Multiply(&p1.y, &p2.y)
	x1x2.Multiply(&p1.x, &p2.x)

	var xNum, yNum edwardsfield.Element
	xNum.Add(&x1y2, &y1x2)
	yNum.Add(&y1y2, &x1x2) // a = -1, so y1y2 - a*x1x2 = y1y2 + x1x2

	var dxxyy edwardsfield.Element
	dxxyy.Multiply(dElement, &x1x2)
	dxxyy.Multiply(&dxxyy, &y1y2)

	var xDen, yDen, negDxxyy edwardsfield.Element
	xDen.Add(oneElement, &dxxyy)
	negDxxyy.Negate(&dxxyy)
	yDen.Add(oneElement, &negDxxyy)

	var xDenInv, yDenInv edwardsfield.Element
	xDenInv.Invert(&xDen)
	yDenInv.Invert(&yDen)

	var out affinePoint
	out.x.Multiply(&xNum, &xDenInv)
	out.y.Multiply(&yNum, &yDenInv)
	return out
}

// scalarMult computes k*p by double-and-add over the literal integer k, not
// reduced mod any subgroup order. This is required for the subgroup check
// below: multiplying by L as a value reduced mod L would degenerate to
// multiplying by zero.
func scalarMult(p affinePoint, k *big.Int) affinePoint {
	result := identity()
	base := p
	for i := 0; i < k.BitLen(); i++ {
		if k.Bit(i) == 1 {
			result = addPoints(result, base)
		}
		base = addPoints(base, base)
	}
	return result
}

// isIdentity reports whether p is the point at infinity (0, 1). Multiplying
// any point by the literal subgroup order L yields the identity if and only
// if the point lies in the prime-order subgroup: 8*p is always in that
// subgroup regardless of p, so cofactor clearing cannot substitute for this
// check.
func isIdentity(p affinePoint) bool {
	id := identity()
	return p.x.Equal(&id.x) == 1 && p.y.Equal(&id.y) == 1
}

// Generate implements C2's generate(recipient, rng) -> (vapor_addr, secret).
// recipient is the real recipient's 32-byte account key; rng supplies the
// randomness for both the field sample `s` and the sign of `y`.
func Generate(recipient [32]byte, rng randReader) (Address, *big.Int, error) {
	r0, r1 := field.Pack2(recipient)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		s, err := rand.Int(rng, fr.Modulus())
		if err != nil {
			return Address{}, nil, fmt.Errorf("edwards: sample secret: %w", err)
		}

		xBig := poseidon.Hash3(r0, r1, s)
		x := elementFromBigInt(xBig)

		y, ok := solveYFromX(x)
		if !ok {
			continue
		}
		if signBit(rng) {
			y.Negate(y)
		}

		var point affinePoint
		point.x.Set(x)
		point.y.Set(y)

		// Prime-order subgroup check (the true check, not cofactor
		// clearing): multiplying by the literal subgroup order must
		// yield the identity.
		if !isIdentity(scalarMult(point, groupOrder)) {
			continue
		}

		return compress(point), s, nil
	}

	return Address{}, nil, fmt.Errorf("edwards: generate: exceeded %d attempts, curve parameters likely misconfigured", maxAttempts)
}

// solveYFromX computes y² = (1 + x²)/(1 - d·x²) and returns a square root,
// or false if no square root exists.
func solveYFromX(x *edwardsfield.Element) (*edwardsfield.Element, bool) {
	var xSq, num, dxsq, den edwardsfield.Element
	xSq.Square(x)
	num.Add(oneElement, &xSq)
	dxsq.Multiply(dElement, &xSq)
	den.Subtract(oneElement, &dxsq)
	return sqrtRatio(&num, &den)
}

// solveXFromY computes x² = (y²-1)/(1 + d·y²) and returns a square root, or
// false if no square root exists. Used by Decompress, the opposite solve
// direction from generation.
func solveXFromY(y *edwardsfield.Element) (*edwardsfield.Element, bool) {
	var ySq, num, dysq, den edwardsfield.Element
	ySq.Square(y)
	num.Subtract(&ySq, oneElement)
	dysq.Multiply(dElement, &ySq)
	den.Add(oneElement, &dysq)
	return sqrtRatio(&num, &den)
}

func sqrtRatio(num, den *edwardsfield.Element) (*edwardsfield.Element, bool) {
	r, wasSquare := new(edwardsfield.Element).SqrtRatio(num, den)
	if wasSquare == 0 {
		return nil, false
	}
	return r, true
}

// compress returns the standard ed25519 compressed encoding: y little-endian
// with the sign of x folded into the top bit of the last byte.
func compress(p affinePoint) Address {
	var out Address
	copy(out[:], p.y.Bytes())
	if p.x.IsNegative() == 1 {
		out[31] |= 0x80
	}
	return out
}

// Decompress reconstructs the point from its compressed encoding, returning
// an error if the encoding does not correspond to a point on the curve.
func Decompress(addr Address) (Point, error) {
	sign := addr[31]&0x80 != 0

	yb := make([]byte, 32)
	copy(yb, addr[:])
	yb[31] &^= 0x80

	var y edwardsfield.Element
	if _, err := y.SetBytes(yb); err != nil {
		return Point{}, fmt.Errorf("edwards: decompress: invalid y encoding: %w", err)
	}

	x, ok := solveXFromY(&y)
	if !ok {
		return Point{}, fmt.Errorf("edwards: decompress: y does not correspond to a curve point")
	}
	if (x.IsNegative() == 1) != sign {
		x.Negate(x)
	}

	return Point{X: elementToBigInt(x), Y: elementToBigInt(&y)}, nil
}

// elementFromInt64 builds a field element from a small signed integer
// constant (curve coefficients only; not constant-time, not for secrets).
func elementFromInt64(v int64) *edwardsfield.Element {
	neg := v < 0
	u := new(big.Int).SetInt64(v)
	if neg {
		u.Neg(u)
	}
	e := elementFromBigInt(u)
	if neg {
		e.Negate(e)
	}
	return e
}

// elementFromBigInt reinterprets v's big-integer form bit-identically as an
// ed25519 base-field element: safe because v is always an element of
// BN254's scalar field here, whose modulus is strictly smaller than
// ed25519's (spec §4.2 step 2).
func elementFromBigInt(v *big.Int) *edwardsfield.Element {
	be := v.Bytes()
	le := make([]byte, 32)
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	e := new(edwardsfield.Element)
	if _, err := e.SetBytes(le); err != nil {
		panic(fmt.Sprintf("edwards: elementFromBigInt: %v", err))
	}
	return e
}

// elementToBigInt is elementFromBigInt's inverse.
func elementToBigInt(e *edwardsfield.Element) *big.Int {
	le := e.Bytes()
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	return new(big.Int).SetBytes(be)
}

// randReader is satisfied by crypto/rand.Reader and by deterministic test
// readers (e.g. math/rand wrapped via a Reader adapter).
type randReader interface {
	Read(p []byte) (n int, err error)
}

// signBit draws a single uniformly random bit from rng.
func signBit(rng randReader) bool {
	var b [1]byte
	_, _ = rng.Read(b[:])
	return b[0]&1 == 1
}
