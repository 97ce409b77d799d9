// Package msb implements the dual mercurial signature scheme (MS-B):
// structurally identical to mercurial/msa with the roles of G1 and G2
// swapped. Public keys are vectors of G1 points, messages and the Z/Y
// signature components live in G2, and Ŷ lives in G1.
//
// The dual exists because a mercurial signature's public key and the
// message it signs must live in opposite pairing groups (§4.3): the DAC
// layer in package dac signs one party's public key with another
// scheme, so a chain of delegations is forced to alternate between msa
// and msb at every link.
package msb

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mmsyan/mercurial-dac/pairing"
)

// PublicKey is an MS-B public key: ell points in G1, pk_i = x_i * P.
type PublicKey []bn254.G1Affine

// SecretKey is an MS-B secret key: ell scalars mod r.
type SecretKey []fr.Element

// Message is an MS-B message: ell points in G2, all required non-identity.
type Message []bn254.G2Affine

// Signature is an MS-B signature triple (Z, Y in G2, Yhat in G1).
type Signature struct {
	Z    bn254.G2Affine
	Y    bn254.G2Affine
	Yhat bn254.G1Affine
}

// RandomZp samples a uniform nonzero scalar mod r. Identical to
// msa.RandomZp — both schemes delegate to the same pairing-level sampler
// per SPEC_FULL.md §4's note that these scalar-only operations are
// scheme-agnostic.
func RandomZp() (fr.Element, error) {
	return pairing.RandomZp()
}

// InsecureHashMessage maps nothing in particular to a G2 point: it
// samples a fresh random scalar and multiplies the G2 generator by it.
// This is the §4.1/§9 stand-in the Python reference itself documents as
// "not a hash" — two calls return unrelated, independently random points
// even on identical input, which is why this function takes no message
// argument at all and is named distinctly from msa.HashMessage rather
// than shadowing it. A production deployment needs a genuine
// deterministic hash-to-G2; this package does not provide one.
func InsecureHashMessage() (bn254.G2Affine, error) {
	return pairing.HashToG2Insecure()
}

// KeyGen samples a fresh MS-B key pair of length ell.
func KeyGen(ell int) (PublicKey, SecretKey, error) {
	if ell <= 0 {
		return nil, nil, fmt.Errorf("msb: KeyGen: ell must be positive, got %d", ell)
	}
	p, _ := pairing.Generators()
	pk := make(PublicKey, ell)
	sk := make(SecretKey, ell)
	for i := 0; i < ell; i++ {
		x, err := pairing.RandomZp()
		if err != nil {
			return nil, nil, fmt.Errorf("msb: KeyGen: %w", err)
		}
		sk[i] = x
		pk[i] = pairing.ScalarMulG1(p, x)
	}
	return pk, sk, nil
}

// Sign produces a fresh signature of M under sk. Fails if len(sk) != len(M).
func Sign(sk SecretKey, m Message) (*Signature, error) {
	if len(sk) != len(m) {
		return nil, fmt.Errorf("msb: Sign: key length %d does not match message length %d", len(sk), len(m))
	}
	if len(sk) == 0 {
		return nil, fmt.Errorf("msb: Sign: empty key/message")
	}

	p, phat := pairing.Generators()

	y, err := pairing.RandomZp()
	if err != nil {
		return nil, fmt.Errorf("msb: Sign: %w", err)
	}

	s := pairing.ScalarMulG2(m[0], sk[0])
	for i := 1; i < len(sk); i++ {
		s = pairing.AddG2(s, pairing.ScalarMulG2(m[i], sk[i]))
	}

	yInv, err := pairing.InvZp(y)
	if err != nil {
		return nil, fmt.Errorf("msb: Sign: %w", err)
	}

	return &Signature{
		Z:    pairing.ScalarMulG2(s, y),
		Y:    pairing.ScalarMulG2(phat, yInv),
		Yhat: pairing.ScalarMulG1(p, yInv),
	}, nil
}

// Verify checks sig against pk and M. It accepts iff
//
//	∏ e(M_i, pk_i) == e(Z, Yhat)   AND   e(Y, P) == e(Phat, Yhat)
func Verify(pk PublicKey, m Message, sig *Signature) (bool, error) {
	if len(pk) != len(m) {
		return false, fmt.Errorf("msb: Verify: key length %d does not match message length %d", len(pk), len(m))
	}
	if len(pk) == 0 {
		return false, fmt.Errorf("msb: Verify: empty key/message")
	}
	if sig == nil {
		return false, fmt.Errorf("msb: Verify: nil signature")
	}
	p, phat := pairing.Generators()

	// ∏ e(M_i, pk_i) * e(-Yhat, Z) == 1
	g1Terms := append(append([]bn254.G1Affine{}, pk...), pairing.NegG1(sig.Yhat))
	g2Terms := append(append([]bn254.G2Affine{}, m...), sig.Z)
	eq1, err := pairing.PairingCheck(g1Terms, g2Terms)
	if err != nil {
		return false, fmt.Errorf("msb: Verify: %w", err)
	}

	// e(P, Y) * e(-Yhat, Phat) == 1
	eq2, err := pairing.PairingCheck(
		[]bn254.G1Affine{p, pairing.NegG1(sig.Yhat)},
		[]bn254.G2Affine{sig.Y, phat},
	)
	if err != nil {
		return false, fmt.Errorf("msb: Verify: %w", err)
	}

	return eq1 && eq2, nil
}

// ConvertSK rescales sk by rho componentwise.
func ConvertSK(sk SecretKey, rho fr.Element) SecretKey {
	out := make(SecretKey, len(sk))
	for i, x := range sk {
		var scaled fr.Element
		scaled.Mul(&x, &rho)
		out[i] = scaled
	}
	return out
}

// ConvertPK rescales pk by rho componentwise.
func ConvertPK(pk PublicKey, rho fr.Element) PublicKey {
	out := make(PublicKey, len(pk))
	for i, x := range pk {
		out[i] = pairing.ScalarMulG1(x, rho)
	}
	return out
}

// ConvertSig carries a signature from pk to ConvertPK(pk, rho), leaving M
// unchanged. pk and m are accepted for interface symmetry with ChangeRep
// (see SPEC_FULL.md §9) but are not otherwise used.
func ConvertSig(pk PublicKey, m Message, sig *Signature, rho fr.Element) (*Signature, error) {
	_, _ = pk, m
	if sig == nil {
		return nil, fmt.Errorf("msb: ConvertSig: nil signature")
	}
	psi, err := pairing.RandomZp()
	if err != nil {
		return nil, fmt.Errorf("msb: ConvertSig: %w", err)
	}
	psiInv, err := pairing.InvZp(psi)
	if err != nil {
		return nil, fmt.Errorf("msb: ConvertSig: %w", err)
	}
	var psiRho fr.Element
	psiRho.Mul(&psi, &rho)
	return &Signature{
		Z:    pairing.ScalarMulG2(sig.Z, psiRho),
		Y:    pairing.ScalarMulG2(sig.Y, psiInv),
		Yhat: pairing.ScalarMulG1(sig.Yhat, psiInv),
	}, nil
}

// ChangeRep rescales the signed message by mu, returning a fresh message
// M' = mu*M and a signature sigma' valid under the same pk over M'.
func ChangeRep(pk PublicKey, m Message, sig *Signature, mu fr.Element) (Message, *Signature, error) {
	_ = pk
	if sig == nil {
		return nil, nil, fmt.Errorf("msb: ChangeRep: nil signature")
	}
	psi, err := pairing.RandomZp()
	if err != nil {
		return nil, nil, fmt.Errorf("msb: ChangeRep: %w", err)
	}
	psiInv, err := pairing.InvZp(psi)
	if err != nil {
		return nil, nil, fmt.Errorf("msb: ChangeRep: %w", err)
	}

	mPrime := make(Message, len(m))
	for i, mi := range m {
		mPrime[i] = pairing.ScalarMulG2(mi, mu)
	}

	var psiMu fr.Element
	psiMu.Mul(&psi, &mu)

	sigPrime := &Signature{
		Z:    pairing.ScalarMulG2(sig.Z, psiMu),
		Y:    pairing.ScalarMulG2(sig.Y, psiInv),
		Yhat: pairing.ScalarMulG1(sig.Yhat, psiInv),
	}
	return mPrime, sigPrime, nil
}
