// Package pairing adapts github.com/consensys/gnark-crypto's BN254
// implementation to the small surface the mercurial signature schemes and
// the DAC layer need: scalar sampling and inversion, scalar multiplication
// and negation in G1/G2, and the product-of-pairings check both
// mercurial/msa and mercurial/msb verification equations reduce to.
//
// Curve parameters (generators, group order) are read from bn254.Generators
// rather than hardcoded, so the adapter tracks whatever BN254 parameters
// gnark-crypto ships.
package pairing

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Generators returns the fixed BN254 generators P (G1) and Phat (G2).
func Generators() (p bn254.G1Affine, phat bn254.G2Affine) {
	_, _, p, phat = bn254.Generators()
	return p, phat
}

// RandomZp samples a uniform nonzero scalar mod r. A sampled zero is
// resampled (spec §7.3): zero has probability ~1/r and is never returned.
func RandomZp() (fr.Element, error) {
	for {
		var x fr.Element
		if _, err := x.SetRandom(); err != nil {
			return fr.Element{}, fmt.Errorf("pairing: sample scalar: %w", err)
		}
		if !x.IsZero() {
			return x, nil
		}
	}
}

// ErrZeroScalar is returned by InvZp when asked to invert zero, which has
// no inverse mod r.
var ErrZeroScalar = errors.New("pairing: scalar is zero, not invertible")

// InvZp returns x^-1 mod r. gnark-crypto's Inverse silently maps zero to
// zero; InvZp rejects that input instead so a zero scalar is never allowed
// to propagate into a signature as if it were a valid inverse.
func InvZp(x fr.Element) (fr.Element, error) {
	if x.IsZero() {
		return fr.Element{}, ErrZeroScalar
	}
	var inv fr.Element
	inv.Inverse(&x)
	return inv, nil
}

// ScalarMulG1 returns s*p in G1.
func ScalarMulG1(p bn254.G1Affine, s fr.Element) bn254.G1Affine {
	var out bn254.G1Affine
	out.ScalarMultiplication(&p, s.BigInt(new(big.Int)))
	return out
}

// ScalarMulG2 returns s*p in G2.
func ScalarMulG2(p bn254.G2Affine, s fr.Element) bn254.G2Affine {
	var out bn254.G2Affine
	out.ScalarMultiplication(&p, s.BigInt(new(big.Int)))
	return out
}

// AddG1 returns a+b in G1.
func AddG1(a, b bn254.G1Affine) bn254.G1Affine {
	var out bn254.G1Affine
	out.Add(&a, &b)
	return out
}

// AddG2 returns a+b in G2.
func AddG2(a, b bn254.G2Affine) bn254.G2Affine {
	var out bn254.G2Affine
	out.Add(&a, &b)
	return out
}

// NegG1 returns -p in G1.
func NegG1(p bn254.G1Affine) bn254.G1Affine {
	var out bn254.G1Affine
	out.Neg(&p)
	return out
}

// NegG2 returns -p in G2.
func NegG2(p bn254.G2Affine) bn254.G2Affine {
	var out bn254.G2Affine
	out.Neg(&p)
	return out
}

// PairingCheck reports whether the product of e(g1[i], g2[i]) over all i
// equals the identity in GT. Both mercurial signature schemes' two
// verification equations are expressed as a single PairingCheck call by
// negating one side's G1 (or G2) term, exactly as the teacher's BLS and
// ZSS04 verifiers fold "lhs == rhs" into "lhs * rhs^-1 == 1".
func PairingCheck(g1 []bn254.G1Affine, g2 []bn254.G2Affine) (bool, error) {
	if len(g1) != len(g2) {
		return false, fmt.Errorf("pairing: mismatched slice lengths %d/%d", len(g1), len(g2))
	}
	ok, err := bn254.PairingCheck(g1, g2)
	if err != nil {
		return false, fmt.Errorf("pairing: check failed: %w", err)
	}
	return ok, nil
}
