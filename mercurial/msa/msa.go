// Package msa implements the primary mercurial signature scheme (MS-A).
//
// Public keys are vectors of G2 points, messages and the Z/Y signature
// components are vectors/elements of G1, and the third signature
// component Ŷ lives in G2. A mercurial signature stays valid under three
// independent randomizations — ConvertSK/ConvertPK (rescale the key by a
// public ρ), ConvertSig (carry a signature along the same ρ without the
// key), and ChangeRep (rescale the signed message by μ) — which is what
// lets package dac build an unlinkable delegation chain on top of this
// package and its dual, mercurial/msb.
//
// 参考: Crites & Lysyanskaya, "Delegatable Anonymous Credentials from
// Mercurial Signatures", CT-RSA 2019.
package msa

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mmsyan/mercurial-dac/pairing"
)

// PublicKey is an MS-A public key: ell points in G2, pk_i = x_i * Phat.
type PublicKey []bn254.G2Affine

// SecretKey is an MS-A secret key: ell scalars mod r.
type SecretKey []fr.Element

// Message is an MS-A message: ell points in G1, all required non-identity.
type Message []bn254.G1Affine

// Signature is an MS-A signature triple (Z, Y in G1, Yhat in G2).
type Signature struct {
	Z    bn254.G1Affine
	Y    bn254.G1Affine
	Yhat bn254.G2Affine
}

// RandomZp samples a uniform nonzero scalar mod r.
func RandomZp() (fr.Element, error) {
	return pairing.RandomZp()
}

// HashMessage deterministically maps bytes to a G1 point, usable as one
// component of a Message vector. It delegates to pairing.HashToG1, the
// real SHAKE-256-based hash — unlike mercurial/msb's dual hash, this one
// is a genuine hash: deterministic and collision-resistant.
func HashMessage(msg []byte) (bn254.G1Affine, error) {
	return pairing.HashToG1(msg)
}

// KeyGen samples a fresh MS-A key pair of length ell.
func KeyGen(ell int) (PublicKey, SecretKey, error) {
	if ell <= 0 {
		return nil, nil, fmt.Errorf("msa: KeyGen: ell must be positive, got %d", ell)
	}
	_, phat := pairing.Generators()
	pk := make(PublicKey, ell)
	sk := make(SecretKey, ell)
	for i := 0; i < ell; i++ {
		x, err := pairing.RandomZp()
		if err != nil {
			return nil, nil, fmt.Errorf("msa: KeyGen: %w", err)
		}
		sk[i] = x
		pk[i] = pairing.ScalarMulG2(phat, x)
	}
	return pk, sk, nil
}

// Sign produces a fresh signature of M under sk. Fails if len(sk) != len(M).
func Sign(sk SecretKey, m Message) (*Signature, error) {
	if len(sk) != len(m) {
		return nil, fmt.Errorf("msa: Sign: key length %d does not match message length %d", len(sk), len(m))
	}
	if len(sk) == 0 {
		return nil, fmt.Errorf("msa: Sign: empty key/message")
	}

	p, phat := pairing.Generators()

	y, err := pairing.RandomZp()
	if err != nil {
		return nil, fmt.Errorf("msa: Sign: %w", err)
	}

	s := pairing.ScalarMulG1(m[0], sk[0])
	for i := 1; i < len(sk); i++ {
		s = pairing.AddG1(s, pairing.ScalarMulG1(m[i], sk[i]))
	}

	yInv, err := pairing.InvZp(y)
	if err != nil {
		return nil, fmt.Errorf("msa: Sign: %w", err)
	}

	return &Signature{
		Z:    pairing.ScalarMulG1(s, y),
		Y:    pairing.ScalarMulG1(p, yInv),
		Yhat: pairing.ScalarMulG2(phat, yInv),
	}, nil
}

// Verify checks sig against pk and M. It accepts iff
//
//	∏ e(pk_i, M_i) == e(Yhat, Z)   AND   e(Phat, Y) == e(Yhat, P)
//
// Both equations are folded into a single pairing.PairingCheck call each,
// by negating one side's G1 term — see pairing.PairingCheck's doc comment.
func Verify(pk PublicKey, m Message, sig *Signature) (bool, error) {
	if len(pk) != len(m) {
		return false, fmt.Errorf("msa: Verify: key length %d does not match message length %d", len(pk), len(m))
	}
	if len(pk) == 0 {
		return false, fmt.Errorf("msa: Verify: empty key/message")
	}
	if sig == nil {
		return false, fmt.Errorf("msa: Verify: nil signature")
	}
	p, phat := pairing.Generators()

	// ∏ e(pk_i, M_i) * e(Yhat, -Z) == 1
	g1Terms := append(append([]bn254.G1Affine{}, m...), pairing.NegG1(sig.Z))
	g2Terms := append(append([]bn254.G2Affine{}, pk...), sig.Yhat)
	eq1, err := pairing.PairingCheck(g1Terms, g2Terms)
	if err != nil {
		return false, fmt.Errorf("msa: Verify: %w", err)
	}

	// e(Phat, Y) * e(Yhat, -P) == 1
	eq2, err := pairing.PairingCheck(
		[]bn254.G1Affine{sig.Y, pairing.NegG1(p)},
		[]bn254.G2Affine{phat, sig.Yhat},
	)
	if err != nil {
		return false, fmt.Errorf("msa: Verify: %w", err)
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
		out[i] = pairing.ScalarMulG2(x, rho)
	}
	return out
}

// ConvertSig carries a signature from pk to ConvertPK(pk, rho), leaving M
// unchanged. pk and m are accepted for interface symmetry with ChangeRep
// (see SPEC_FULL.md §9) but are not otherwise used.
func ConvertSig(pk PublicKey, m Message, sig *Signature, rho fr.Element) (*Signature, error) {
	_, _ = pk, m
	if sig == nil {
		return nil, fmt.Errorf("msa: ConvertSig: nil signature")
	}
	psi, err := pairing.RandomZp()
	if err != nil {
		return nil, fmt.Errorf("msa: ConvertSig: %w", err)
	}
	psiInv, err := pairing.InvZp(psi)
	if err != nil {
		return nil, fmt.Errorf("msa: ConvertSig: %w", err)
	}
	var psiRho fr.Element
	psiRho.Mul(&psi, &rho)
	return &Signature{
		Z:    pairing.ScalarMulG1(sig.Z, psiRho),
		Y:    pairing.ScalarMulG1(sig.Y, psiInv),
		Yhat: pairing.ScalarMulG2(sig.Yhat, psiInv),
	}, nil
}

// ChangeRep rescales the signed message by mu, returning a fresh message
// M' = mu*M and a signature sigma' valid under the same pk over M'.
func ChangeRep(pk PublicKey, m Message, sig *Signature, mu fr.Element) (Message, *Signature, error) {
	_ = pk
	if sig == nil {
		return nil, nil, fmt.Errorf("msa: ChangeRep: nil signature")
	}
	psi, err := pairing.RandomZp()
	if err != nil {
		return nil, nil, fmt.Errorf("msa: ChangeRep: %w", err)
	}
	psiInv, err := pairing.InvZp(psi)
	if err != nil {
		return nil, nil, fmt.Errorf("msa: ChangeRep: %w", err)
	}

	mPrime := make(Message, len(m))
	for i, mi := range m {
		mPrime[i] = pairing.ScalarMulG1(mi, mu)
	}

	var psiMu fr.Element
	psiMu.Mul(&psi, &mu)

	sigPrime := &Signature{
		Z:    pairing.ScalarMulG1(sig.Z, psiMu),
		Y:    pairing.ScalarMulG1(sig.Y, psiInv),
		Yhat: pairing.ScalarMulG2(sig.Yhat, psiInv),
	}
	return mPrime, sigPrime, nil
}
