package field

import (
	"fmt"
	"math/big"

	"github.com/vaporlabs/vapor-tokens/config"
)

// Pack splits data into config.ElementSize-byte little-endian chunks and
// returns each chunk as the *big.Int it encodes. The final chunk is
// zero-padded. 31 bytes is strictly smaller than the BN254 scalar field
// modulus, so every chunk value already fits a field element without
// reduction.
func Pack(data []byte) []*big.Int {
	n := (len(data) + config.ElementSize - 1) / config.ElementSize
	if n == 0 {
		n = 1
	}

	elements := make([]*big.Int, n)

	// Re-use a single buffer to avoid per-iteration allocations. big.Int's
	// SetBytes makes its own copy so it's safe to reuse the buffer after.
	buf := make([]byte, config.ElementSize)

	for i := 0; i < n; i++ {
		for j := range buf {
			buf[j] = 0
		}

		start := i * config.ElementSize
		if start < len(data) {
			end := start + config.ElementSize
			if end > len(data) {
				end = len(data)
			}
			copy(buf, data[start:end])
		}

		elements[i] = leBytesToInt(buf)
	}

	return elements
}

// Unpack is the inverse of Pack: each field element is serialized back to
// config.ElementSize little-endian bytes, concatenated, and the result
// truncated to length. Unpack(Pack(b), len(b)) reconstructs b exactly.
func Unpack(elements []*big.Int, length int) ([]byte, error) {
	result := make([]byte, 0, len(elements)*config.ElementSize)

	tmp := make([]byte, config.ElementSize) // reusable buffer

	for _, value := range elements {
		for i := range tmp {
			tmp[i] = 0
		}
		intToLEBytesInto(tmp, value)
		result = append(result, tmp...)
	}

	if length > len(result) {
		return nil, fmt.Errorf("field: unpack: requested length %d exceeds %d packed bytes", length, len(result))
	}

	return result[:length], nil
}

// Pack2 packs a 32-byte value into exactly two field elements, the layout
// used for recipient/destination addresses everywhere in the system.
func Pack2(data [32]byte) (lo, hi *big.Int) {
	elements := Pack(data[:])
	if len(elements) != 2 {
		panic(fmt.Sprintf("field: Pack2: expected 2 chunks for 32 bytes, got %d", len(elements)))
	}
	return elements[0], elements[1]
}

// Unpack32 is the Pack2 inverse, reconstructing the original 32-byte value.
func Unpack32(lo, hi *big.Int) ([32]byte, error) {
	b, err := Unpack([]*big.Int{lo, hi}, 32)
	if err != nil {
		return [32]byte{}, err
	}
	var out [32]byte
	copy(out[:], b)
	return out, nil
}

// leBytesToInt interprets buf as a little-endian integer.
func leBytesToInt(buf []byte) *big.Int {
	be := make([]byte, len(buf))
	for i, b := range buf {
		be[len(buf)-1-i] = b
	}
	return new(big.Int).SetBytes(be)
}

// intToLEBytesInto writes v into dst (len(dst) == config.ElementSize) as a
// little-endian integer. Values beyond ElementSize bytes are truncated to
// their low-order bytes, matching the fixed-width chunk format.
func intToLEBytesInto(dst []byte, v *big.Int) {
	be := v.Bytes()
	if len(be) > len(dst) {
		be = be[len(be)-len(dst):]
	}
	for i, b := range be {
		dst[len(be)-1-i] = b
	}
}
