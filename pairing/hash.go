package pairing

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"golang.org/x/crypto/sha3"
)

// g1Cofactor is BN254 G1's cofactor. BN curves are built so that
// #E(Fp) == r exactly, so G1 is already prime order and this is 1 — the
// multiply-by-cofactor step below is kept as an explicit, documented
// no-op rather than silently dropped, since other BN254 parameterizations
// (and G2, which this package does not hash into) are not cofactor-1.
var g1Cofactor = big.NewInt(1)

// HashToG1 deterministically maps msg to a point in G1: a SHAKE-256 XOF
// produces a candidate x-coordinate, incremented until x^3+3 is a
// quadratic residue in Fp, then the resulting point is cofactor-cleared.
// This is the construction spec'd in §6 (and implemented by the Python
// reference this package's DAC layer is ported from) rather than
// gnark-crypto's own SSWU-based bn254.HashToG1, which uses a different
// (also valid, but non-matching) hash-to-curve suite.
func HashToG1(msg []byte) (bn254.G1Affine, error) {
	h := sha3.NewShake256()
	if _, err := h.Write(msg); err != nil {
		return bn254.G1Affine{}, fmt.Errorf("pairing: hash to g1: %w", err)
	}
	buf := make([]byte, fp.Bytes)
	if _, err := h.Read(buf); err != nil {
		return bn254.G1Affine{}, fmt.Errorf("pairing: hash to g1: %w", err)
	}

	var x fp.Element
	x.SetBytes(buf)

	var three fp.Element
	three.SetUint64(3)

	var one fp.Element
	one.SetOne()

	for {
		var rhs fp.Element
		rhs.Square(&x)
		rhs.Mul(&rhs, &x)
		rhs.Add(&rhs, &three)

		var y fp.Element
		if y.Sqrt(&rhs) != nil {
			point := bn254.G1Affine{X: x, Y: y}
			if !point.IsOnCurve() {
				return bn254.G1Affine{}, fmt.Errorf("pairing: hash to g1: square root produced an off-curve point")
			}
			var cleared bn254.G1Affine
			cleared.ScalarMultiplication(&point, g1Cofactor)
			return cleared, nil
		}
		x.Add(&x, &one)
	}
}

// HashToG2Insecure is the MS-B test-only stand-in from §4.1/§9: it samples
// a random scalar and multiplies it by the G2 generator. It is explicitly
// NOT a hash — it takes no input, and two calls return unrelated,
// independently random points — and exists only so MS-B has *some* way to turn a
// message into a G2 point in tests. A real deployment needs a genuine
// hash-to-G2 (e.g. an SSWU suite over the twist); this package does not
// provide one, mirroring the Python reference's own admission that its
// dual "HashMessage" is not a hash.
func HashToG2Insecure() (bn254.G2Affine, error) {
	s, err := RandomZp()
	if err != nil {
		return bn254.G2Affine{}, fmt.Errorf("pairing: insecure hash to g2: %w", err)
	}
	_, phat := Generators()
	return ScalarMulG2(phat, s), nil
}
